package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const minPasswordLength = 12

// ValidatePassword enforces the baseline password policy: at least
// minPasswordLength characters with lower, upper, and digit classes present.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	var (
		hasUpper bool
		hasLower bool
		hasDigit bool
	)
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must include upper, lower, and digit", ErrInvalidInput)
	}
	return nil
}

// PasswordHash wraps an encoded Argon2-family hash string. The constructor is
// the system's barrier against ever persisting a plaintext password: anything
// that does not carry an Argon2 tag is rejected before it can reach a repository.
type PasswordHash string

func NewPasswordHash(encoded string) (PasswordHash, error) {
	trimmed := strings.TrimSpace(encoded)
	if !strings.HasPrefix(trimmed, "$argon2") {
		return "", fmt.Errorf("%w: password hash must be argon2-encoded", ErrInvalidInput)
	}
	return PasswordHash(trimmed), nil
}

func (h PasswordHash) String() string { return string(h) }
