// Package auth issues and verifies the signed bearer tokens handed out at
// login and registration.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// RoleUser is the only role handed out today.
const RoleUser = 1

// Claims is the identity asserted by a token. The JSON names are part of
// the wire contract: {"userid", "email", "role"} plus the registered
// "exp" and "iat" fields.
type Claims struct {
	UserID int64  `json:"userid"`
	Email  string `json:"email"`
	Role   int    `json:"role"`
	jwt.RegisteredClaims
}

// NewClaims builds the claims for a user id and email with the default role.
func NewClaims(userID int64, email string) Claims {
	return Claims{UserID: userID, Email: email, Role: RoleUser}
}

// TokenService signs and verifies HS256 tokens with one process-wide
// secret that is fixed at construction.
type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenService(secret []byte, validity time.Duration) *TokenService {
	return &TokenService{secret: secret, validity: validity, now: time.Now}
}

// WithClock replaces the wall clock; used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Validity is the default lifetime used by IssueDefault.
func (s *TokenService) Validity() time.Duration {
	return s.validity
}

// Issue signs claims with an expiry of now+expiry. Any registered claims
// already present on the input are replaced.
func (s *TokenService) Issue(claims Claims, expiry time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("%w: empty signing secret", common.ErrConfig)
	}

	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// IssueDefault signs claims with the configured validity.
func (s *TokenService) IssueDefault(claims Claims) (string, error) {
	return s.Issue(claims, s.validity)
}

// Verify checks signature and expiry and returns the embedded claims.
// It fails with common.ErrInvalidSignature, common.ErrTokenExpired or
// common.ErrTokenMalformed. It never touches the credential store.
//
// Expiry has one-second resolution and a token is already expired at the
// instant now equals its exp claim.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrMissingToken
	}

	if signatureSegmentCorrupt(tokenString) {
		return nil, fmt.Errorf("%w: signature segment is not base64url", common.ErrInvalidSignature)
	}

	now := s.now()
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, classify(token, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidSignature
	}

	return claims, nil
}

func classify(token *jwt.Token, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", common.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		// Header and claims decoded and the algorithm resolved, so only
		// the signature segment was unreadable.
		if token != nil && token.Method != nil {
			return fmt.Errorf("%w: %v", common.ErrInvalidSignature, err)
		}
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	}
}

// signatureSegmentCorrupt reports whether the header and claims segments
// decode but whatever follows the second dot is not a single base64url
// segment. A stray '.' or any byte outside the alphabet there is damage to
// the signature, not to the token's structure.
func signatureSegmentCorrupt(tokenString string) bool {
	parts := strings.SplitN(tokenString, ".", 3)
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts[:2] {
		if _, err := base64.RawURLEncoding.Strict().DecodeString(p); err != nil {
			return false
		}
	}
	for i := 0; i < len(parts[2]); i++ {
		if !isBase64URL(parts[2][i]) {
			return true
		}
	}
	return false
}

func isBase64URL(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_'
}
