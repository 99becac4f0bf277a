package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedPrincipal(id string, perms ...string) *Principal {
	return &Principal{
		ID:    id,
		Email: id + "@example.com",
		Role:  ResolvedRole(RoleData{ID: "role-1", Name: "Admin", Permissions: perms}),
	}
}

func TestPermissionsOfNilPrincipal(t *testing.T) {
	r := NewResolver(NewPermissionCache())
	assert.Empty(t, r.PermissionsOf(nil))
}

func TestPermissionsOfUnresolvedRole(t *testing.T) {
	r := NewResolver(NewPermissionCache())
	p := &Principal{ID: "7", Role: UnresolvedRole("Admin")}
	assert.Empty(t, r.PermissionsOf(p))
	assert.False(t, r.HasPermission(p, "event.view.all"))
}

func TestPermissionsOfMissingRole(t *testing.T) {
	r := NewResolver(NewPermissionCache())
	assert.Empty(t, r.PermissionsOf(&Principal{ID: "7"}))
}

func TestPermissionsOfResolvedRole(t *testing.T) {
	r := NewResolver(NewPermissionCache())
	p := resolvedPrincipal("7", "user.manage.own", "role.manage.all")
	require.Equal(t, []string{"user.manage.own", "role.manage.all"}, r.PermissionsOf(p))
}

func TestResolverCacheIdempotence(t *testing.T) {
	cache := NewPermissionCache()
	r := NewResolver(cache)
	p := resolvedPrincipal("7", "event.view.all")

	first := r.PermissionsOf(p)
	second := r.PermissionsOf(p)
	require.Equal(t, first, second)
	assert.Equal(t, 1, cache.populates, "second lookup must hit the cache")

	// Clearing forces a recompute from the role data.
	cache.Clear()
	third := r.PermissionsOf(p)
	require.Equal(t, first, third)
	assert.Equal(t, 2, cache.populates)

	// Clear is idempotent.
	cache.Clear()
	cache.Clear()
	assert.Empty(t, cache.entries)
}

func TestResolverCacheKeyedByRoleIdentity(t *testing.T) {
	cache := NewPermissionCache()
	r := NewResolver(cache)

	before := resolvedPrincipal("7", "event.view.all")
	require.Equal(t, []string{"event.view.all"}, r.PermissionsOf(before))

	// Same user, reassigned role: must not be served the stale entry.
	after := &Principal{
		ID:   "7",
		Role: ResolvedRole(RoleData{ID: "role-2", Name: "SuperAdmin", Permissions: []string{"role.manage.all"}}),
	}
	require.Equal(t, []string{"role.manage.all"}, r.PermissionsOf(after))
	assert.Equal(t, 2, cache.populates)
}

func TestHasAnyHasAll(t *testing.T) {
	r := NewResolver(NewPermissionCache())
	p := resolvedPrincipal("7", "user.manage.own", "event.view.all")

	assert.True(t, r.HasAll(p, "user.manage.own", "event.view.all"))
	assert.False(t, r.HasAll(p, "user.manage.own", "role.manage.all"))
	assert.True(t, r.HasAll(p), "empty requirement is a subset of any grant")

	assert.True(t, r.HasAny(p, "role.manage.all", "event.view.all"))
	assert.False(t, r.HasAny(p, "role.manage.all"))
	assert.False(t, r.HasAny(p), "empty intersection grants nothing")
}

func TestHasPermissionEmptyName(t *testing.T) {
	r := NewResolver(NewPermissionCache())
	assert.False(t, r.HasPermission(resolvedPrincipal("7", "a"), ""))
}
