package authz

import "sync"

type cacheKey struct {
	principalID  string
	roleIdentity string
}

// PermissionCache memoizes resolved permission sets for the lifetime of a
// login session. Entries are written once per key and never mutated in place;
// the session boundary clears the whole cache on logout. The handle is passed
// into the Resolver explicitly so business logic never touches ambient state.
type PermissionCache struct {
	mu        sync.RWMutex
	entries   map[cacheKey][]string
	populates int
}

// NewPermissionCache returns an empty cache.
func NewPermissionCache() *PermissionCache {
	return &PermissionCache{entries: make(map[cacheKey][]string)}
}

func (c *PermissionCache) get(key cacheKey) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	perms, ok := c.entries[key]
	return perms, ok
}

func (c *PermissionCache) populate(key cacheKey, perms []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = perms
	c.populates++
	return perms
}

// Clear drops every cached entry. Safe to call repeatedly.
func (c *PermissionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey][]string)
}

// Resolver derives the effective permission set from a principal's role
// assignment. Missing principals, missing roles and unresolved bare-name
// roles all resolve to the empty set.
type Resolver struct {
	cache *PermissionCache
}

// NewResolver constructs a Resolver over the given cache handle.
func NewResolver(cache *PermissionCache) *Resolver {
	if cache == nil {
		cache = NewPermissionCache()
	}
	return &Resolver{cache: cache}
}

// PermissionsOf returns the permission names granted through the principal's
// role, memoized per (principal, role identity).
func (r *Resolver) PermissionsOf(p *Principal) []string {
	if p == nil {
		return nil
	}
	perms, ok := p.Role.Permissions()
	if !ok {
		return nil
	}
	key := cacheKey{principalID: p.ID, roleIdentity: p.Role.identity()}
	if cached, hit := r.cache.get(key); hit {
		return cached
	}
	resolved := make([]string, len(perms))
	copy(resolved, perms)
	return r.cache.populate(key, resolved)
}

// HasPermission reports whether the principal holds the named permission.
func (r *Resolver) HasPermission(p *Principal, name string) bool {
	if name == "" {
		return false
	}
	for _, granted := range r.PermissionsOf(p) {
		if granted == name {
			return true
		}
	}
	return false
}

// HasAny reports whether the principal holds at least one of the named
// permissions. An empty requirement list grants nothing.
func (r *Resolver) HasAny(p *Principal, names ...string) bool {
	granted := permissionSet(r.PermissionsOf(p))
	for _, name := range names {
		if _, ok := granted[name]; ok {
			return true
		}
	}
	return false
}

// HasAll reports whether the principal holds every named permission.
func (r *Resolver) HasAll(p *Principal, names ...string) bool {
	granted := permissionSet(r.PermissionsOf(p))
	for _, name := range names {
		if _, ok := granted[name]; !ok {
			return false
		}
	}
	return true
}

// ClearCache drops all memoized permission sets. Called at the session
// boundary on logout.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

func permissionSet(perms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}
