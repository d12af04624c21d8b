package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// findQueries is indexed by Column so that column names are never built
// from caller input.
var findQueries = map[Column]string{
	ColumnID: `SELECT id, email, password_hash, banned, created_at FROM users
		 WHERE id = $1
		 `,
	ColumnEmail: `SELECT id, email, password_hash, banned, created_at FROM users
		 WHERE email = $1
		 `,
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindBy(ctx context.Context, column Column, value any) (*models.User, error) {
	query, ok := findQueries[column]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported lookup column %d", common.ErrStore, column)
	}

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, value).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Banned, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	return user, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, user *models.User) (int64, error) {
	query :=
		`INSERT INTO users (email, password_hash)
         VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, common.ErrAlreadyExists
		}
		return 0, fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	return user.ID, nil
}

func (r *PostgresRepository) SetBanned(ctx context.Context, id int64, banned bool) error {
	query :=
		`UPDATE users SET banned = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, banned, id)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStore, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStore, err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
