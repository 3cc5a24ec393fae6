package domain

import (
	"fmt"
	"time"
)

// MembershipID identifies one (user, store) binding.
type MembershipID string

// Membership is the store-scoped link between a user and a tenant.
// Invariants: at least one role, and every scope must be permitted for at
// least one held role per RoleScopes. Uniqueness per (user, store) is enforced
// by the repository, not in memory.
type Membership struct {
	ID        MembershipID
	UserID    UserID
	StoreID   StoreID
	Roles     []Role
	Scopes    []Scope
	CreatedAt time.Time
	UpdatedAt time.Time
}

func validateAccess(roles []Role, scopes []Scope) error {
	if len(roles) == 0 {
		return fmt.Errorf("%w: membership requires at least one role", ErrInvalidInput)
	}
	for _, scope := range scopes {
		if !IsScopeAllowedForRoles(scope, roles) {
			return fmt.Errorf("%w: scope %q not allowed for roles", ErrInvalidInput, scope)
		}
	}
	return nil
}

// GrantMembership creates a membership after checking the role/scope invariants
// and returns the granted fact.
func GrantMembership(id MembershipID, userID UserID, storeID StoreID, roles []Role, scopes []Scope, now time.Time) (Membership, MembershipGranted, error) {
	if err := validateAccess(roles, scopes); err != nil {
		return Membership{}, MembershipGranted{}, err
	}
	m := Membership{
		ID:        id,
		UserID:    userID,
		StoreID:   storeID,
		Roles:     append([]Role(nil), roles...),
		Scopes:    append([]Scope(nil), scopes...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	event := MembershipGranted{
		UserID:     userID,
		StoreID:    storeID,
		Roles:      m.Roles,
		Scopes:     m.Scopes,
		OccurredAt: now,
	}
	return m, event, nil
}

// UpdateAccess replaces roles and scopes after revalidating the invariants.
// When the new access equals the current one it is a no-op: no fact, no
// timestamp bump, nil event.
func (m *Membership) UpdateAccess(roles []Role, scopes []Scope, now time.Time) (*MembershipGranted, error) {
	if err := validateAccess(roles, scopes); err != nil {
		return nil, err
	}
	if sameRoles(m.Roles, roles) && sameScopes(m.Scopes, scopes) {
		return nil, nil
	}
	m.Roles = append([]Role(nil), roles...)
	m.Scopes = append([]Scope(nil), scopes...)
	m.UpdatedAt = now
	return &MembershipGranted{
		UserID:     m.UserID,
		StoreID:    m.StoreID,
		Roles:      m.Roles,
		Scopes:     m.Scopes,
		OccurredAt: now,
	}, nil
}

func sameRoles(a, b []Role) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameScopes(a, b []Scope) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
