// Package gate admits or denies protected requests. The token is checked
// cryptographically first; only a token that passes reaches the store,
// where the bearer strategy re-checks the account.
package gate

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/strategy"
)

// TokenVerifier is the part of auth.TokenService the gate needs.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// CredentialVerifier is the part of strategy.Executor the gate needs.
type CredentialVerifier interface {
	Verify(ctx context.Context, name strategy.Name, creds strategy.Credentials) strategy.Outcome
}

type Gate struct {
	tokens   TokenVerifier
	verifier CredentialVerifier
}

func New(tokens TokenVerifier, verifier CredentialVerifier) *Gate {
	return &Gate{tokens: tokens, verifier: verifier}
}

// Authorize verifies token and then runs the bearer strategy on its
// claims. A token failure short-circuits to a Failed outcome carrying the
// token error; the store is not consulted. Claims are returned whenever
// the token itself verified.
func (g *Gate) Authorize(ctx context.Context, token string) (strategy.Outcome, *auth.Claims) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return strategy.Outcome{Kind: strategy.Failed, Err: err}, nil
	}

	return g.verifier.Verify(ctx, strategy.Bearer, strategy.Credentials{Claims: claims}), claims
}
