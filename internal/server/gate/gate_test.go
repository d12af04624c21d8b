package gate

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type countingVerifier struct {
	calls int
	next  CredentialVerifier
}

func (c *countingVerifier) Verify(ctx context.Context, name strategy.Name, creds strategy.Credentials) strategy.Outcome {
	c.calls++
	return c.next.Verify(ctx, name, creds)
}

func setup(t *testing.T) (*Gate, *auth.TokenService, *users.MemoryRepository, *countingVerifier, int64) {
	t.Helper()

	repo := users.NewMemoryRepository()
	hasher := password.NewBcrypt(bcrypt.MinCost)
	hash, err := hasher.Hash("secret")
	require.NoError(t, err)

	id, err := repo.Insert(context.Background(), &models.User{Email: "a@b.com", PasswordHash: hash})
	require.NoError(t, err)

	tokens := auth.NewTokenService([]byte("gate-secret"), time.Hour)
	counter := &countingVerifier{next: strategy.NewExecutor(repo, hasher, nil)}

	return New(tokens, counter), tokens, repo, counter, id
}

func TestAuthorize_Admits(t *testing.T) {
	t.Parallel()

	g, tokens, _, counter, id := setup(t)
	tok, err := tokens.IssueDefault(auth.NewClaims(id, "a@b.com"))
	require.NoError(t, err)

	out, claims := g.Authorize(context.Background(), tok)

	require.Equal(t, strategy.Authenticated, out.Kind)
	assert.Equal(t, id, out.User.ID)
	assert.Empty(t, out.User.PasswordHash)
	require.NotNil(t, claims)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, 1, counter.calls)
}

func TestAuthorize_BannedAfterIssue(t *testing.T) {
	t.Parallel()

	g, tokens, repo, _, id := setup(t)
	tok, err := tokens.IssueDefault(auth.NewClaims(id, "a@b.com"))
	require.NoError(t, err)

	out, _ := g.Authorize(context.Background(), tok)
	require.Equal(t, strategy.Authenticated, out.Kind)

	require.NoError(t, repo.SetBanned(context.Background(), id, true))

	// The token on its own still verifies.
	_, err = tokens.Verify(tok)
	require.NoError(t, err)

	out, claims := g.Authorize(context.Background(), tok)
	assert.Equal(t, strategy.Rejected, out.Kind)
	assert.Equal(t, strategy.ReasonBanned, out.Reason)
	assert.NotNil(t, claims)

	require.NoError(t, repo.SetBanned(context.Background(), id, false))
	out, _ = g.Authorize(context.Background(), tok)
	assert.Equal(t, strategy.Authenticated, out.Kind)
}

func TestAuthorize_UnknownSubject(t *testing.T) {
	t.Parallel()

	g, tokens, _, _, _ := setup(t)
	tok, err := tokens.IssueDefault(auth.NewClaims(999, "ghost@b.com"))
	require.NoError(t, err)

	out, _ := g.Authorize(context.Background(), tok)
	assert.Equal(t, strategy.Rejected, out.Kind)
	assert.Equal(t, strategy.ReasonNoMatch, out.Reason)
}

func TestAuthorize_TokenFailuresSkipStore(t *testing.T) {
	t.Parallel()

	g, tokens, _, counter, id := setup(t)

	expired, err := tokens.Issue(auth.NewClaims(id, "a@b.com"), -time.Minute)
	require.NoError(t, err)

	foreign, err := auth.NewTokenService([]byte("other"), time.Hour).IssueDefault(auth.NewClaims(id, "a@b.com"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty", token: "", want: common.ErrMissingToken},
		{name: "malformed", token: "not-a-token", want: common.ErrTokenMalformed},
		{name: "expired", token: expired, want: common.ErrTokenExpired},
		{name: "wrong key", token: foreign, want: common.ErrInvalidSignature},
	}

	for _, tt := range tests {
		out, claims := g.Authorize(context.Background(), tt.token)
		assert.Equal(t, strategy.Failed, out.Kind, tt.name)
		assert.ErrorIs(t, out.Err, tt.want, tt.name)
		assert.True(t, common.IsTokenError(out.Err), tt.name)
		assert.Nil(t, claims, tt.name)
	}

	assert.Zero(t, counter.calls)
}
