package domain

import "time"

// AuditAction is the closed set of auditable actions.
type AuditAction string

const (
	AuditUserRegistered         AuditAction = "USER_REGISTERED"
	AuditUserLogin              AuditAction = "USER_LOGIN"
	AuditRefreshRotated         AuditAction = "REFRESH_ROTATED"
	AuditRefreshRevoked         AuditAction = "REFRESH_REVOKED"
	AuditPasswordResetRequested AuditAction = "PASSWORD_RESET_REQUESTED"
	AuditPasswordResetCompleted AuditAction = "PASSWORD_RESET_COMPLETED"
	AuditMembershipGranted      AuditAction = "MEMBERSHIP_GRANTED"
	AuditMembershipListed       AuditAction = "MEMBERSHIP_LISTED"
)

// AuditTargetType names what an audit entry points at.
type AuditTargetType string

const (
	AuditTargetMembership AuditTargetType = "MEMBERSHIP"
	AuditTargetUser       AuditTargetType = "USER"
)

// AuditLog is a write-only record. It deliberately carries no plaintext PII:
// network metadata is stored only as hashes.
type AuditLog struct {
	ActorID       UserID
	Action        AuditAction
	StoreID       *StoreID
	TargetType    *AuditTargetType
	TargetID      string
	CorrelationID CorrelationID
	IPHash        string
	UserAgentHash string
	CreatedAt     time.Time
}
