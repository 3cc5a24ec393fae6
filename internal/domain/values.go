package domain

import (
	"fmt"
	"strings"
)

const maxEmailLength = 320

// UserID is an opaque, validated user identifier.
type UserID string

func NewUserID(raw string) (UserID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return UserID(trimmed), nil
}

func (id UserID) String() string { return string(id) }

// StoreID identifies a tenant boundary. Every store-scoped record carries one.
type StoreID string

func NewStoreID(raw string) (StoreID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: store id is required", ErrInvalidInput)
	}
	return StoreID(trimmed), nil
}

func (id StoreID) String() string { return string(id) }

// FamilyID groups every refresh session descended from one login.
// Revoking a family invalidates every token ever issued in that lineage.
type FamilyID string

func NewFamilyID(raw string) (FamilyID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: family id is required", ErrInvalidInput)
	}
	return FamilyID(trimmed), nil
}

func (id FamilyID) String() string { return string(id) }

// CorrelationID ties audit entries back to the inbound request.
type CorrelationID string

func NewCorrelationID(raw string) (CorrelationID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: correlation id is required", ErrInvalidInput)
	}
	return CorrelationID(trimmed), nil
}

func (id CorrelationID) String() string { return string(id) }

// Email is a normalized address: trimmed, lower-cased, length-capped, with a
// non-edge "@". Construction is the only way to obtain one, so downstream code
// can rely on the canonical form for lookups and uniqueness.
type Email string

func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(normalized) > maxEmailLength {
		return "", fmt.Errorf("%w: email exceeds %d characters", ErrInvalidInput, maxEmailLength)
	}
	at := strings.Index(normalized, "@")
	if at <= 0 || at == len(normalized)-1 {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return Email(normalized), nil
}

func (e Email) String() string { return string(e) }
