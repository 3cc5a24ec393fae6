package domain

import "fmt"

// Role is a coarse RBAC grant. Guest is not a role; guest means no identity.
type Role string

const (
	RoleCustomer      Role = "CUSTOMER"
	RoleStoreAdmin    Role = "STORE_ADMIN"
	RolePlatformAdmin Role = "PLATFORM_ADMIN"
)

// Scope is a fine-grained permission string carried in JWT claims and gated
// per role by the matrix below.
type Scope string

const (
	ScopeCatalogRead  Scope = "catalog:read"
	ScopeCatalogWrite Scope = "catalog:write"
	ScopeOrderRead    Scope = "order:read"
	ScopeOrderWrite   Scope = "order:write"
	ScopeUserRead     Scope = "user:read"
)

// RoleScopes is the source of truth for which scopes a role may hold.
// Keeping it a static table makes the rule executable and testable.
var RoleScopes = map[Role][]Scope{
	RolePlatformAdmin: {ScopeCatalogRead, ScopeCatalogWrite, ScopeOrderRead, ScopeOrderWrite, ScopeUserRead},
	RoleStoreAdmin:    {ScopeCatalogRead, ScopeCatalogWrite, ScopeOrderRead, ScopeOrderWrite, ScopeUserRead},
	RoleCustomer:      {ScopeOrderRead},
}

// IsScopeAllowedForRoles reports whether at least one of the given roles
// permits the scope. Total: unknown roles simply grant nothing.
func IsScopeAllowedForRoles(scope Scope, roles []Role) bool {
	for _, role := range roles {
		for _, allowed := range RoleScopes[role] {
			if allowed == scope {
				return true
			}
		}
	}
	return false
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleCustomer, RoleStoreAdmin, RolePlatformAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("%w: invalid role %q", ErrInvalidInput, raw)
}

// ParseRoles validates a raw role list; empty input yields an empty slice.
func ParseRoles(raw []string) ([]Role, error) {
	roles := make([]Role, 0, len(raw))
	for _, r := range raw {
		role, err := ParseRole(r)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// ParseScope validates a raw scope string.
func ParseScope(raw string) (Scope, error) {
	switch Scope(raw) {
	case ScopeCatalogRead, ScopeCatalogWrite, ScopeOrderRead, ScopeOrderWrite, ScopeUserRead:
		return Scope(raw), nil
	}
	return "", fmt.Errorf("%w: invalid scope %q", ErrInvalidInput, raw)
}

// ParseScopes validates a raw scope list.
func ParseScopes(raw []string) ([]Scope, error) {
	scopes := make([]Scope, 0, len(raw))
	for _, s := range raw {
		scope, err := ParseScope(s)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

// CanManageStore is the store-management authorization decision.
// PLATFORM_ADMIN manages every store; STORE_ADMIN manages only stores it is
// bound to; any other or unknown role grants nothing. Pure and total.
func CanManageStore(actorRoles []Role, actorStoreIDs []StoreID, target StoreID) bool {
	for _, role := range actorRoles {
		if role == RolePlatformAdmin {
			return true
		}
	}
	for _, role := range actorRoles {
		if role != RoleStoreAdmin {
			continue
		}
		for _, id := range actorStoreIDs {
			if id == target {
				return true
			}
		}
	}
	return false
}
