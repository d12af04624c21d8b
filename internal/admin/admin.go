// Package admin implements the administrative commands that mutate
// credential records out of band: banning, unbanning and creating users.
package admin

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/shared"
)

// ErrUsage is returned for unknown commands or bad arguments.
var ErrUsage = errors.New("usage: gophauth-admin [-d dsn] ban <id> | unban <id> | create-user <email>")

// Database is what the commands need from *sql.DB.
type Database interface {
	dbx.DBTX
	dbx.TxBeginner
}

type App struct {
	db          Database
	repomanager repomanager.RepositoryManager
	hasher      password.Hasher
	out         io.Writer
}

func NewApp(db Database, m repomanager.RepositoryManager, hasher password.Hasher, out io.Writer) *App {
	return &App{db: db, repomanager: m, hasher: hasher, out: out}
}

// Run dispatches one command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}

	switch args[0] {
	case "ban", "unban":
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("%w: invalid user id %q", ErrUsage, args[1])
		}
		return a.SetBanned(ctx, id, args[0] == "ban")
	case "create-user":
		return a.CreateUser(ctx, args[1])
	default:
		return ErrUsage
	}
}

// SetBanned updates the flag and reads the record back in one
// transaction, then reports the stored state.
func (a *App) SetBanned(ctx context.Context, id int64, banned bool) error {
	var user *models.User

	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.repomanager.Users(tx)
		if err := repo.SetBanned(ctx, id, banned); err != nil {
			return err
		}

		var err error
		user, err = repo.FindBy(ctx, users.ColumnID, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("user %d: %w", id, common.ErrorNotFound)
		}
		return err
	}

	fmt.Fprintf(a.out, "user %d (%s) banned=%t\n", user.ID, user.Email, user.Banned)
	return nil
}

// CreateUser prompts twice for a password and inserts the account.
func (a *App) CreateUser(ctx context.Context, email string) error {
	pw, err := GetPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer shared.WipeBytes(pw)

	confirm, err := GetPassword(a.out, "Repeat password: ")
	if err != nil {
		return err
	}
	defer shared.WipeBytes(confirm)

	if !bytes.Equal(pw, confirm) {
		return errors.New("passwords do not match")
	}

	if err := (services.Credentials{Email: email, Password: string(pw)}).Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	hash, err := a.hasher.Hash(string(pw))
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return fmt.Errorf("%w: %w", common.ErrorValidation, err)
		}
		return err
	}

	var id int64
	err = dbx.WithTx(ctx, a.db, &sql.TxOptions{}, func(ctx context.Context, tx dbx.DBTX) error {
		id, err = a.repomanager.Users(tx).Insert(ctx, &models.User{Email: email, PasswordHash: hash})
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "created user %d (%s)\n", id, email)
	return nil
}
