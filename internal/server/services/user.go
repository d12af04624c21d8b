// Package services contains server-side business logic shared by the HTTP
// and gRPC transports. UserService handles registration, login and the
// administrative ban flag.
package services

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/strategy"
)

// Credentials is the {email, password} payload of register and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the payload shape. It does not look at the store.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(6, 128)),
	)
}

type UserService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	hasher      password.Hasher
	executor    *strategy.Executor
	log         logging.Logger
}

// NewUserService wires a UserService to the users repository bound to db.
// db may be nil for managers that do not need a connection.
func NewUserService(db dbx.DBTX, m repomanager.RepositoryManager, tokens *auth.TokenService, hasher password.Hasher, log logging.Logger) *UserService {
	if log == nil {
		log = logging.Nop{}
	}
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		executor:    strategy.NewExecutor(m.Users(db), hasher, log),
		log:         log.With("module", "services"),
	}
}

// Executor exposes the strategy executor so transports can build a gate
// over the same store.
func (s *UserService) Executor() *strategy.Executor {
	return s.executor
}

// Register stores a new account and returns a token for it. A taken email
// is common.ErrAlreadyExists. An invalid payload, including a password the
// configured hasher cannot accept, wraps common.ErrorValidation. Anything
// else is common.ErrorInternal.
func (s *UserService) Register(ctx context.Context, email, plaintext string) (string, error) {
	creds := Credentials{Email: email, Password: plaintext}
	if err := creds.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return "", fmt.Errorf("%w: %w", common.ErrorValidation, err)
		}
		s.log.Error(ctx, "hash password", "error", err)
		return "", common.ErrorInternal
	}

	user := &models.User{Email: email, PasswordHash: hash}

	id, err := s.repomanager.Users(s.db).Insert(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return "", common.ErrAlreadyExists
		}
		s.log.Error(ctx, "insert user", "error", err)
		return "", common.ErrorInternal
	}

	s.log.Info(ctx, "user registered", "user_id", id)

	return s.issue(ctx, id, email)
}

// Login runs the local strategy and issues a token on success. Rejections
// become common.ErrorUnauthorized; failures become common.ErrorInternal.
func (s *UserService) Login(ctx context.Context, email, plaintext string) (string, error) {
	out := s.executor.Verify(ctx, strategy.Local, strategy.Credentials{Email: email, Password: plaintext})

	switch out.Kind {
	case strategy.Authenticated:
		return s.issue(ctx, out.User.ID, out.User.Email)
	case strategy.Rejected:
		s.log.Info(ctx, "login rejected", "reason", out.Reason)
		return "", common.ErrorUnauthorized
	default:
		return "", common.ErrorInternal
	}
}

// SetBanned flips the ban flag of an account. The change applies to the
// next bearer verification of any token already issued for it.
func (s *UserService) SetBanned(ctx context.Context, userID int64, banned bool) error {
	err := s.repomanager.Users(s.db).SetBanned(ctx, userID, banned)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.log.Error(ctx, "set banned", "user_id", userID, "error", err)
		return common.ErrorInternal
	}

	s.log.Info(ctx, "ban flag updated", "user_id", userID, "banned", banned)
	return nil
}

func (s *UserService) issue(ctx context.Context, id int64, email string) (string, error) {
	token, err := s.tokens.IssueDefault(auth.NewClaims(id, email))
	if err != nil {
		s.log.Error(ctx, "issue token", "error", err)
		return "", common.ErrorInternal
	}
	return token, nil
}
