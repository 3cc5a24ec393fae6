package ports

import (
	"context"
	"time"

	"github.com/storehub/identity/internal/domain"
)

// UserRepository defines persistence operations for user identities.
type UserRepository interface {
	FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error)
	FindByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
	Save(ctx context.Context, user domain.User) error
}

// CredentialRepository manages per-provider credential state. One password
// credential per user is enforced here by a unique key, not by the aggregate.
type CredentialRepository interface {
	FindPasswordCredentialByUserID(ctx context.Context, userID domain.UserID) (*domain.Credential, error)
	Save(ctx context.Context, credential domain.Credential) error
}

// MembershipPage is one page of store-filtered memberships plus the cursor for
// the next page (empty when exhausted).
type MembershipPage struct {
	Items      []domain.Membership
	NextCursor string
}

// MembershipRepository serves both the login path (claims assembly) and the
// admin path (grant/list). ListByStore MUST filter by store id server-side;
// cross-store leakage through this port is a correctness bug, not a tuning issue.
type MembershipRepository interface {
	ListByUserID(ctx context.Context, userID domain.UserID) ([]domain.Membership, error)
	FindByUserAndStore(ctx context.Context, userID domain.UserID, storeID domain.StoreID) (*domain.Membership, error)
	Save(ctx context.Context, membership domain.Membership) error
	ListByStore(ctx context.Context, storeID domain.StoreID, limit int, cursor string) (MembershipPage, error)
}

// RefreshSessionRecord is the lookup projection for a stored session. It is
// the only place the application learns about consumption state.
type RefreshSessionRecord struct {
	SessionID  domain.SessionID
	UserID     domain.UserID
	FamilyID   domain.FamilyID
	ConsumedAt *time.Time
	RevokedAt  *time.Time
}

// RotateParams captures one atomic rotation: consume the old token hash and
// insert the new session+hash, or do neither.
type RotateParams struct {
	OldTokenHash string
	NewSession   domain.RefreshSession
	NewTokenHash string
	Now          time.Time
}

// RefreshSessionRepository owns the token-hash-to-session correlation.
// Rotate must perform "consume old hash iff still unconsumed and unrevoked"
// and "insert new session" as one atomic unit; when the conditional consume
// matches no row it returns domain.ErrTokenConsumed and inserts nothing, so
// two concurrent rotations of the same hash yield at most one success.
type RefreshSessionRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (*RefreshSessionRecord, error)
	Create(ctx context.Context, session domain.RefreshSession, tokenHash string) error
	Rotate(ctx context.Context, params RotateParams) error
	RevokeFamily(ctx context.Context, userID domain.UserID, familyID domain.FamilyID, at time.Time) error
}

// AuditLogRepository appends immutable audit records. There is deliberately no
// read or mutate surface on this port.
type AuditLogRepository interface {
	Append(ctx context.Context, entry domain.AuditLog) error
}

// IdempotencyRecord tracks a previously accepted mutating request.
// Storing the response lets handlers return stable replay responses.
type IdempotencyRecord struct {
	Key          string
	Status       string
	ResponseBody []byte
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	IdempotencyPending   = "PENDING"
	IdempotencyCompleted = "COMPLETED"
)

// IdempotencyStore enforces at-most-once execution per key. Reserve must be a
// conditional insert: a second reservation of a live key fails with
// domain.ErrConflict instead of re-executing.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseBody []byte, at time.Time) error
}
