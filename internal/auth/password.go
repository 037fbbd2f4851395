package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor.
//
// Cost 12 takes roughly 250ms on a modern server — negligible for a login,
// brutal for an attacker brute-forcing a stolen hash dump. bcrypt embeds the
// salt and cost in its output, so the hash string is self-contained and can
// be stored directly in the users.password_hash column.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected in tests —
// cost 4 makes a test suite's worth of hashes near-instant without changing
// the logic under test.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom (low)
// cost. Do not use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password.
// bcrypt silently truncates input beyond 72 bytes, so we reject longer
// passwords explicitly rather than surprise the caller.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored hash.
// Returns nil on a match. bcrypt compares in constant time, so this is safe
// against timing attacks.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
