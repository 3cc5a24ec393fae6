package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleScopeMatrix(t *testing.T) {
	t.Parallel()

	allScopes := []Scope{ScopeCatalogRead, ScopeCatalogWrite, ScopeOrderRead, ScopeOrderWrite, ScopeUserRead}

	for _, scope := range allScopes {
		assert.True(t, IsScopeAllowedForRoles(scope, []Role{RolePlatformAdmin}), "platform admin should hold %s", scope)
		assert.True(t, IsScopeAllowedForRoles(scope, []Role{RoleStoreAdmin}), "store admin should hold %s", scope)
	}

	assert.True(t, IsScopeAllowedForRoles(ScopeOrderRead, []Role{RoleCustomer}))
	for _, scope := range []Scope{ScopeCatalogRead, ScopeCatalogWrite, ScopeOrderWrite, ScopeUserRead} {
		assert.False(t, IsScopeAllowedForRoles(scope, []Role{RoleCustomer}), "customer must not hold %s", scope)
	}

	// Unknown roles grant nothing; the decision stays total.
	assert.False(t, IsScopeAllowedForRoles(ScopeOrderRead, []Role{Role("SUPERUSER")}))
	assert.False(t, IsScopeAllowedForRoles(ScopeOrderRead, nil))
}

func TestParseRoleAndScopeAreStrict(t *testing.T) {
	t.Parallel()

	role, err := ParseRole("STORE_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleStoreAdmin, role)

	_, err = ParseRole("store_admin")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ParseRole("")
	assert.ErrorIs(t, err, ErrInvalidInput)

	scope, err := ParseScope("order:write")
	require.NoError(t, err)
	assert.Equal(t, ScopeOrderWrite, scope)

	_, err = ParseScope("order:delete")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCanManageStore(t *testing.T) {
	t.Parallel()

	s1 := StoreID("store-1")
	s2 := StoreID("store-2")

	assert.True(t, CanManageStore([]Role{RolePlatformAdmin}, nil, s1))
	assert.True(t, CanManageStore([]Role{RolePlatformAdmin}, nil, s2))

	assert.True(t, CanManageStore([]Role{RoleStoreAdmin}, []StoreID{s1}, s1))
	assert.False(t, CanManageStore([]Role{RoleStoreAdmin}, []StoreID{s1}, s2))

	assert.False(t, CanManageStore([]Role{RoleCustomer}, []StoreID{s1}, s1))
	assert.False(t, CanManageStore(nil, []StoreID{s1}, s1))
	assert.False(t, CanManageStore([]Role{Role("SUPERUSER")}, []StoreID{s1}, s1))
}
