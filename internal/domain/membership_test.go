package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantMembershipEnforcesInvariants(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m, event, err := GrantMembership("m-1", "u-1", "s-1", []Role{RoleStoreAdmin}, []Scope{ScopeCatalogWrite, ScopeOrderRead}, now)
	require.NoError(t, err)
	assert.Equal(t, MembershipID("m-1"), m.ID)
	assert.Equal(t, UserID("u-1"), event.UserID)
	assert.Equal(t, now, m.CreatedAt)
	assert.Equal(t, now, m.UpdatedAt)

	_, _, err = GrantMembership("m-2", "u-1", "s-1", nil, nil, now)
	assert.ErrorIs(t, err, ErrInvalidInput, "membership without roles")

	_, _, err = GrantMembership("m-3", "u-1", "s-1", []Role{RoleCustomer}, []Scope{ScopeCatalogWrite}, now)
	assert.ErrorIs(t, err, ErrInvalidInput, "scope outside the role matrix")
}

func TestGrantMembershipCopiesInputSlices(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	roles := []Role{RoleStoreAdmin}
	scopes := []Scope{ScopeOrderRead}

	m, _, err := GrantMembership("m-1", "u-1", "s-1", roles, scopes, now)
	require.NoError(t, err)

	roles[0] = RoleCustomer
	scopes[0] = ScopeUserRead
	assert.Equal(t, RoleStoreAdmin, m.Roles[0])
	assert.Equal(t, ScopeOrderRead, m.Scopes[0])
}

func TestUpdateAccessIsNoOpForIdenticalAccess(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	m, _, err := GrantMembership("m-1", "u-1", "s-1", []Role{RoleStoreAdmin}, []Scope{ScopeOrderRead}, created)
	require.NoError(t, err)

	event, err := m.UpdateAccess([]Role{RoleStoreAdmin}, []Scope{ScopeOrderRead}, later)
	require.NoError(t, err)
	assert.Nil(t, event, "identical access must not emit a fact")
	assert.Equal(t, created, m.UpdatedAt, "identical access must not bump the timestamp")
}

func TestUpdateAccessReplacesAndRevalidates(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	m, _, err := GrantMembership("m-1", "u-1", "s-1", []Role{RoleStoreAdmin}, []Scope{ScopeOrderRead}, created)
	require.NoError(t, err)

	event, err := m.UpdateAccess([]Role{RoleCustomer}, []Scope{ScopeOrderRead}, later)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, []Role{RoleCustomer}, m.Roles)
	assert.Equal(t, later, m.UpdatedAt)

	// A downgrade that would leave an unpermitted scope behind is rejected
	// and leaves the membership untouched.
	_, err = m.UpdateAccess([]Role{RoleCustomer}, []Scope{ScopeCatalogWrite}, later.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []Role{RoleCustomer}, m.Roles)
	assert.Equal(t, later, m.UpdatedAt)
}
