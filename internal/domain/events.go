package domain

import "time"

// Domain facts are returned by aggregate operations instead of being queued on
// an internal list; the application layer decides what to do with them.

type UserRegistered struct {
	UserID     UserID
	Email      Email
	OccurredAt time.Time
}

type UserDisabled struct {
	UserID     UserID
	OccurredAt time.Time
}

type MembershipGranted struct {
	UserID     UserID
	StoreID    StoreID
	Roles      []Role
	Scopes     []Scope
	OccurredAt time.Time
}

type RefreshSessionRotated struct {
	UserID     UserID
	FamilyID   FamilyID
	OccurredAt time.Time
}

type RefreshSessionRevoked struct {
	UserID     UserID
	FamilyID   FamilyID
	OccurredAt time.Time
}
