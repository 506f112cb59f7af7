// Package credential is the password credential store: a one-way bcrypt
// transform with a per-hash random salt. Hashing is invoked only where a
// credential is being set, never on unrelated record saves, so a stored hash
// cannot be hashed twice.
package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Store hashes and verifies user passwords.
type Store struct {
	cost int
}

// NewStore initializes a credential store with the default bcrypt cost.
func NewStore() *Store {
	return &Store{cost: bcrypt.DefaultCost}
}

// Hash applies the one-way transform to a plaintext password.
func (s *Store) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash.
func (s *Store) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
