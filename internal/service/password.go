package service

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used for stored admin passwords.
const DefaultBcryptCost = 10

// MinPasswordLength applies to the setup password and every reset password.
const MinPasswordLength = 6

// PasswordHasher hashes and verifies admin passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A malformed hash is
	// simply a mismatch.
	Verify(plaintext, hash string) bool
}

// BcryptHasher is the PasswordHasher used in production.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Zero means
// DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// checkNewPassword applies the length rules to a password about to be hashed.
// The minimum counts characters. bcrypt rejects input over 72 bytes, so that limit is reported as a
// validation error instead of surfacing later as an internal one.
func checkNewPassword(field, password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid(field, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > 72 {
		return invalid(field, "Password must be at most 72 bytes")
	}
	return nil
}
