// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/bookworm-server/internal/model"
)

// DefaultCost is the bcrypt work factor used in production.
const DefaultCost = 10

var (
	// ErrHashFormat is returned when a stored hash cannot be parsed.
	ErrHashFormat = errors.New("invalid password hash format")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt is a salted one-way password hasher.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a hasher with the given cost. Out of range costs fall
// back to DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns a freshly salted hash of plaintext.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares plaintext with hash using the salt embedded in hash.
// A mismatch is reported as false with a nil error.
func (b *Bcrypt) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrHashFormat, err)
}
