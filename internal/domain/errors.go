package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether the email, the account state, or the
	// password failed. The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized covers invalid, revoked, or reused refresh tokens and
	// protected reads without a usable identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden signals an authenticated actor lacking store-management rights.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict covers duplicate registration emails and unique-key violations.
	ErrConflict = errors.New("conflict")
	// ErrIdempotencyInProgress is returned while another call holds the same key.
	ErrIdempotencyInProgress = errors.New("request already in progress")
	// ErrRateLimited maps to 429 at the boundary.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidInput wraps every domain invariant violation (malformed email,
	// weak password, bad role/scope combination, malformed hash format).
	ErrInvalidInput = errors.New("invalid input")
	// ErrTokenConsumed is the rotation repository's signal that the presented
	// token hash was already consumed by an earlier or concurrent rotation.
	ErrTokenConsumed = errors.New("token already consumed")
	// ErrSessionRevoked blocks rotation of a revoked refresh session.
	ErrSessionRevoked = errors.New("session revoked")
)
