package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashing indicates an internal failure of the hashing backend, as opposed
// to an ordinary mismatch.
var ErrHashing = errors.New("password hashing failed")

// PasswordHasher wraps bcrypt with a fixed cost. Each Hash call salts
// independently, so hashing the same plaintext twice yields different strings.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given bcrypt cost. A zero cost
// falls back to bcrypt's default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of the plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the hash. Mismatches and
// malformed hashes return false rather than an error; bcrypt's comparison is
// constant-time over the digest.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
