package domain

import "time"

// SessionID identifies one refresh session within a family.
type SessionID string

// RefreshSession models the lifecycle of one link in a refresh-token family:
// Active until revoked, Revoked terminal. The session never sees the raw or
// hashed token; that correlation is owned by the rotation repository, keyed by
// token hash.
type RefreshSession struct {
	ID            SessionID
	UserID        UserID
	FamilyID      FamilyID
	CreatedAt     time.Time
	RevokedAt     *time.Time
	IPHash        string
	UserAgentHash string
}

// StartRefreshSession creates a fresh Active session.
func StartRefreshSession(id SessionID, userID UserID, familyID FamilyID, ipHash, userAgentHash string, now time.Time) RefreshSession {
	return RefreshSession{
		ID:            id,
		UserID:        userID,
		FamilyID:      familyID,
		CreatedAt:     now,
		IPHash:        ipHash,
		UserAgentHash: userAgentHash,
	}
}

func (s *RefreshSession) IsRevoked() bool {
	return s.RevokedAt != nil
}

// Rotate produces the next Active session in the same family. The calling
// session stays Active here; the application layer persists it as consumed
// through the rotation repository. Rotating a revoked session is an error.
func (s *RefreshSession) Rotate(newID SessionID, ipHash, userAgentHash string, now time.Time) (RefreshSession, RefreshSessionRotated, error) {
	if s.IsRevoked() {
		return RefreshSession{}, RefreshSessionRotated{}, ErrSessionRevoked
	}
	next := StartRefreshSession(newID, s.UserID, s.FamilyID, ipHash, userAgentHash, now)
	return next, RefreshSessionRotated{UserID: s.UserID, FamilyID: s.FamilyID, OccurredAt: now}, nil
}

// Revoke transitions Active to Revoked. Idempotent: revoking a revoked session
// is a no-op and re-emits nothing.
func (s *RefreshSession) Revoke(now time.Time) (RefreshSessionRevoked, bool) {
	if s.IsRevoked() {
		return RefreshSessionRevoked{}, false
	}
	at := now
	s.RevokedAt = &at
	return RefreshSessionRevoked{UserID: s.UserID, FamilyID: s.FamilyID, OccurredAt: now}, true
}
