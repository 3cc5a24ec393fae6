package domain

import "time"

// User is the tenant-independent account identity. It carries no StoreID on
// purpose: tenant binding lives entirely in Membership.
type User struct {
	ID        UserID
	Email     Email
	IsActive  bool
	CreatedAt time.Time
}

// RegisterUser creates an active account and returns the registration fact.
func RegisterUser(id UserID, email Email, now time.Time) (User, UserRegistered) {
	user := User{
		ID:        id,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
	}
	return user, UserRegistered{UserID: id, Email: email, OccurredAt: now}
}

// Disable transitions the account to inactive once. Idempotent: a second call
// reports no transition and emits no fact.
func (u *User) Disable(now time.Time) (UserDisabled, bool) {
	if !u.IsActive {
		return UserDisabled{}, false
	}
	u.IsActive = false
	return UserDisabled{UserID: u.ID, OccurredAt: now}, true
}

// EnsureActive fails with the generic credential error so callers on the login
// path cannot distinguish a disabled account from a wrong password.
func (u *User) EnsureActive() error {
	if !u.IsActive {
		return ErrInvalidCredentials
	}
	return nil
}
