// Package strategy turns presented credentials into an authentication
// outcome. Two strategies exist: Local checks an email and password,
// Bearer re-checks the account behind an already verified token.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// Name selects a strategy.
type Name int

const (
	Local Name = iota + 1
	Bearer
)

func (n Name) String() string {
	switch n {
	case Local:
		return "local"
	case Bearer:
		return "bearer"
	default:
		return fmt.Sprintf("strategy(%d)", int(n))
	}
}

// Kind is the tag of an Outcome.
type Kind int

const (
	Authenticated Kind = iota + 1
	Rejected
	Failed
)

func (k Kind) String() string {
	switch k {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	ReasonNoMatch = "no-match"
	ReasonBanned  = "banned"
)

// Credentials carries the input of either strategy. Local reads Email and
// Password, Bearer reads Claims.
type Credentials struct {
	Email    string
	Password string
	Claims   *auth.Claims
}

// Outcome is the result of a verification. User is set only when Kind is
// Authenticated and never carries a password hash. Reason is set when Kind
// is Rejected. Err holds the cause of a rejection or failure.
type Outcome struct {
	Kind   Kind
	User   *models.User
	Reason string
	Err    error
}

// Error maps the outcome onto the common error taxonomy. It returns nil
// for Authenticated.
func (o Outcome) Error() error {
	switch o.Kind {
	case Authenticated:
		return nil
	case Rejected:
		if o.Reason == ReasonBanned {
			return common.ErrBanned
		}
		if o.Err != nil {
			return fmt.Errorf("%w: %w", common.ErrNoMatch, o.Err)
		}
		return common.ErrNoMatch
	default:
		if o.Err != nil {
			return o.Err
		}
		return common.ErrorInternal
	}
}

func authenticated(u *models.User) Outcome {
	return Outcome{Kind: Authenticated, User: u.Sanitized()}
}

func rejected(reason string, cause error) Outcome {
	return Outcome{Kind: Rejected, Reason: reason, Err: cause}
}

func failed(cause error) Outcome {
	return Outcome{Kind: Failed, Err: cause}
}

// Executor runs strategies against the credential store. It holds no
// mutable state and is safe for concurrent use.
type Executor struct {
	users  users.Repository
	hasher password.Hasher
	log    logging.Logger
}

func NewExecutor(repo users.Repository, hasher password.Hasher, log logging.Logger) *Executor {
	if log == nil {
		log = logging.Nop{}
	}
	return &Executor{users: repo, hasher: hasher, log: log.With("module", "strategy")}
}

// Verify runs the named strategy. Store and hash failures come back as
// Failed and are never retried here.
func (e *Executor) Verify(ctx context.Context, name Name, creds Credentials) Outcome {
	var out Outcome
	switch name {
	case Local:
		out = e.local(ctx, creds.Email, creds.Password)
	case Bearer:
		out = e.bearer(ctx, creds.Claims)
	default:
		out = failed(fmt.Errorf("%w: %s", common.ErrUnknownStrategy, name))
	}

	if out.Kind == Failed {
		e.log.Error(ctx, "credential verification failed", "strategy", name.String(), "error", out.Err)
	} else {
		e.log.Debug(ctx, "credential verification", "strategy", name.String(), "outcome", out.Kind.String(), "reason", out.Reason)
	}
	return out
}

func (e *Executor) local(ctx context.Context, email, plaintext string) Outcome {
	user, err := e.users.FindBy(ctx, users.ColumnEmail, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return rejected(ReasonNoMatch, err)
		}
		return failed(err)
	}

	ok, err := e.hasher.Compare(plaintext, user.PasswordHash)
	if err != nil {
		return failed(fmt.Errorf("compare password: %w", err))
	}
	if !ok {
		return rejected(ReasonNoMatch, common.ErrMismatch)
	}

	return authenticated(user)
}

func (e *Executor) bearer(ctx context.Context, claims *auth.Claims) Outcome {
	if claims == nil {
		return failed(fmt.Errorf("%w: bearer strategy without claims", common.ErrTokenMalformed))
	}

	user, err := e.users.FindBy(ctx, users.ColumnID, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return rejected(ReasonNoMatch, err)
		}
		return failed(err)
	}

	if user.Banned {
		return rejected(ReasonBanned, common.ErrBanned)
	}

	return authenticated(user)
}
