// Package password implements the one-way, salted password hashing used at
// registration and compared at login. Every hash is self-describing, so
// Compare never needs state beyond the stored string.
package password

import (
	"errors"
	"strings"
)

// ErrUnknownHash is returned when a stored hash matches no known format.
var ErrUnknownHash = errors.New("unrecognised password hash format")

// ErrTooLong is returned by Hash when the plaintext exceeds what the
// algorithm accepts. It is a fault of the input, not of the hasher.
var ErrTooLong = errors.New("password too long")

// Hasher hashes plaintext passwords and compares plaintext against a
// stored hash. A mismatch is (false, nil); an error means the hash itself
// could not be used.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) (bool, error)
}

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2ID = "argon2id"
)

// Multi hashes with Primary and compares with whichever known hasher
// produced the stored hash, so records created under an older setting keep
// working after the configured algorithm changes.
type Multi struct {
	Primary Hasher
	Bcrypt  *Bcrypt
	Argon2  *Argon2ID
}

// New returns a Multi whose primary hasher is the named algorithm.
func New(algorithm string, bcryptCost int) (*Multi, error) {
	b := NewBcrypt(bcryptCost)
	a := NewArgon2ID(DefaultArgon2Params)

	m := &Multi{Bcrypt: b, Argon2: a}
	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		m.Primary = b
	case AlgorithmArgon2ID:
		m.Primary = a
	default:
		return nil, errors.New("unsupported password algorithm: " + algorithm)
	}
	return m, nil
}

func (m *Multi) Hash(plaintext string) (string, error) {
	return m.Primary.Hash(plaintext)
}

func (m *Multi) Compare(plaintext, hash string) (bool, error) {
	switch {
	case isBcryptHash(hash):
		return m.Bcrypt.Compare(plaintext, hash)
	case strings.HasPrefix(hash, "$"+AlgorithmArgon2ID+"$"):
		return m.Argon2.Compare(plaintext, hash)
	default:
		return false, ErrUnknownHash
	}
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
