package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	mu      sync.Mutex
	records map[int64]models.User
	findErr error
	finds   int
}

func newFakeUsers(records ...models.User) *fakeUsers {
	f := &fakeUsers{records: make(map[int64]models.User)}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeUsers) FindBy(ctx context.Context, column users.Column, value any) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++

	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, r := range f.records {
		if (column == users.ColumnID && r.ID == value) || (column == users.ColumnEmail && r.Email == value) {
			u := r
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) Insert(ctx context.Context, u *models.User) (int64, error) {
	return 0, errors.New("not used")
}

func (f *fakeUsers) SetBanned(ctx context.Context, id int64, banned bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.Banned = banned
	f.records[id] = r
	return nil
}

type brokenHasher struct{}

func (brokenHasher) Hash(string) (string, error)          { return "", errors.New("boom") }
func (brokenHasher) Compare(string, string) (bool, error) { return false, password.ErrUnknownHash }

func mustHash(t *testing.T, plaintext string) string {
	t.Helper()
	h, err := password.NewBcrypt(bcrypt.MinCost).Hash(plaintext)
	require.NoError(t, err)
	return h
}

func TestLocal(t *testing.T) {
	t.Parallel()

	hash := mustHash(t, "secret")
	storeErr := fmt.Errorf("%w: connection refused", common.ErrStore)

	tests := []struct {
		name       string
		repo       *fakeUsers
		hasher     password.Hasher
		email      string
		password   string
		wantKind   Kind
		wantReason string
		wantErr    error
	}{
		{
			name:     "match",
			repo:     newFakeUsers(models.User{ID: 7, Email: "a@b.com", PasswordHash: hash}),
			email:    "a@b.com",
			password: "secret",
			wantKind: Authenticated,
		},
		{
			name:     "banned account still passes local",
			repo:     newFakeUsers(models.User{ID: 7, Email: "a@b.com", PasswordHash: hash, Banned: true}),
			email:    "a@b.com",
			password: "secret",
			wantKind: Authenticated,
		},
		{
			name:       "wrong password",
			repo:       newFakeUsers(models.User{ID: 7, Email: "a@b.com", PasswordHash: hash}),
			email:      "a@b.com",
			password:   "nope",
			wantKind:   Rejected,
			wantReason: ReasonNoMatch,
			wantErr:    common.ErrMismatch,
		},
		{
			name:       "unknown email",
			repo:       newFakeUsers(models.User{ID: 7, Email: "a@b.com", PasswordHash: hash}),
			email:      "x@b.com",
			password:   "secret",
			wantKind:   Rejected,
			wantReason: ReasonNoMatch,
			wantErr:    common.ErrorNotFound,
		},
		{
			name:       "email is case sensitive",
			repo:       newFakeUsers(models.User{ID: 7, Email: "a@b.com", PasswordHash: hash}),
			email:      "A@B.com",
			password:   "secret",
			wantKind:   Rejected,
			wantReason: ReasonNoMatch,
		},
		{
			name:     "store error",
			repo:     &fakeUsers{findErr: storeErr},
			email:    "a@b.com",
			password: "secret",
			wantKind: Failed,
			wantErr:  common.ErrStore,
		},
		{
			name:     "corrupt hash",
			repo:     newFakeUsers(models.User{ID: 7, Email: "a@b.com", PasswordHash: "garbage"}),
			hasher:   brokenHasher{},
			email:    "a@b.com",
			password: "secret",
			wantKind: Failed,
			wantErr:  password.ErrUnknownHash,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hasher := tt.hasher
			if hasher == nil {
				hasher = password.NewBcrypt(bcrypt.MinCost)
			}
			e := NewExecutor(tt.repo, hasher, nil)

			out := e.Verify(context.Background(), Local, Credentials{Email: tt.email, Password: tt.password})

			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantReason, out.Reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, out.Err, tt.wantErr)
			}
			if out.Kind == Authenticated {
				require.NotNil(t, out.User)
				assert.Equal(t, int64(7), out.User.ID)
				assert.Empty(t, out.User.PasswordHash)
			} else {
				assert.Nil(t, out.User)
			}
		})
	}
}

func TestLocal_UnknownEmailIgnoresPassword(t *testing.T) {
	t.Parallel()

	e := NewExecutor(newFakeUsers(), password.NewBcrypt(bcrypt.MinCost), nil)
	for _, pw := range []string{"", "secret", "x", "a very long password indeed"} {
		out := e.Verify(context.Background(), Local, Credentials{Email: "ghost@b.com", Password: pw})
		assert.Equal(t, Rejected, out.Kind)
		assert.Equal(t, ReasonNoMatch, out.Reason)
	}
}

func TestBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		repo       *fakeUsers
		claims     *auth.Claims
		wantKind   Kind
		wantReason string
		wantErr    error
	}{
		{
			name:     "active account",
			repo:     newFakeUsers(models.User{ID: 7, Email: "a@b.com", PasswordHash: "h"}),
			claims:   &auth.Claims{UserID: 7, Email: "a@b.com", Role: auth.RoleUser},
			wantKind: Authenticated,
		},
		{
			name:       "banned account",
			repo:       newFakeUsers(models.User{ID: 7, Email: "a@b.com", Banned: true}),
			claims:     &auth.Claims{UserID: 7},
			wantKind:   Rejected,
			wantReason: ReasonBanned,
			wantErr:    common.ErrBanned,
		},
		{
			name:       "deleted account",
			repo:       newFakeUsers(),
			claims:     &auth.Claims{UserID: 7},
			wantKind:   Rejected,
			wantReason: ReasonNoMatch,
			wantErr:    common.ErrorNotFound,
		},
		{
			name:     "store error",
			repo:     &fakeUsers{findErr: fmt.Errorf("%w: timeout", common.ErrStore)},
			claims:   &auth.Claims{UserID: 7},
			wantKind: Failed,
			wantErr:  common.ErrStore,
		},
		{
			name:     "missing claims",
			repo:     newFakeUsers(),
			wantKind: Failed,
			wantErr:  common.ErrTokenMalformed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewExecutor(tt.repo, password.NewBcrypt(bcrypt.MinCost), nil)
			out := e.Verify(context.Background(), Bearer, Credentials{Claims: tt.claims})

			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantReason, out.Reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, out.Err, tt.wantErr)
			}
			if out.User != nil {
				assert.Empty(t, out.User.PasswordHash)
			}
		})
	}
}

func TestVerify_UnknownStrategy(t *testing.T) {
	t.Parallel()

	repo := newFakeUsers()
	e := NewExecutor(repo, password.NewBcrypt(bcrypt.MinCost), nil)

	out := e.Verify(context.Background(), Name(42), Credentials{})
	assert.Equal(t, Failed, out.Kind)
	assert.ErrorIs(t, out.Err, common.ErrUnknownStrategy)
	assert.Zero(t, repo.finds)
}

func TestOutcome_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk on fire")

	tests := []struct {
		name string
		out  Outcome
		want error
	}{
		{name: "authenticated", out: Outcome{Kind: Authenticated}, want: nil},
		{name: "no match", out: rejected(ReasonNoMatch, common.ErrMismatch), want: common.ErrNoMatch},
		{name: "banned", out: rejected(ReasonBanned, common.ErrBanned), want: common.ErrBanned},
		{name: "failed", out: failed(cause), want: cause},
		{name: "failed without cause", out: Outcome{Kind: Failed}, want: common.ErrorInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.out.Error()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.ErrorIs(t, rejected(ReasonNoMatch, common.ErrMismatch).Error(), common.ErrMismatch)
}

func TestScenario_BanTakesEffectOnNextBearerCheck(t *testing.T) {
	t.Parallel()

	repo := newFakeUsers(models.User{ID: 7, Email: "a@b.com", PasswordHash: mustHash(t, "secret")})
	e := NewExecutor(repo, password.NewBcrypt(bcrypt.MinCost), nil)
	tokens := auth.NewTokenService([]byte("scenario-secret"), time.Hour)
	ctx := context.Background()

	login := e.Verify(ctx, Local, Credentials{Email: "a@b.com", Password: "secret"})
	require.Equal(t, Authenticated, login.Kind)
	require.Equal(t, int64(7), login.User.ID)

	tok, err := tokens.IssueDefault(auth.NewClaims(login.User.ID, login.User.Email))
	require.NoError(t, err)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)

	first := e.Verify(ctx, Bearer, Credentials{Claims: claims})
	require.Equal(t, Authenticated, first.Kind)
	assert.Equal(t, int64(7), first.User.ID)

	require.NoError(t, repo.SetBanned(ctx, 7, true))

	claims, err = tokens.Verify(tok)
	require.NoError(t, err)

	second := e.Verify(ctx, Bearer, Credentials{Claims: claims})
	assert.Equal(t, Rejected, second.Kind)
	assert.Equal(t, ReasonBanned, second.Reason)
	assert.ErrorIs(t, second.Error(), common.ErrBanned)
}

func TestName_String(t *testing.T) {
	assert.Equal(t, "local", Local.String())
	assert.Equal(t, "bearer", Bearer.String())
	assert.Equal(t, "strategy(9)", Name(9).String())
	assert.Equal(t, "rejected", Rejected.String())
}
