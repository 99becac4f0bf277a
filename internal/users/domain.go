package users

import (
	"strconv"
	"time"

	"github.com/gatherly/gatherly/internal/authz"
)

// Permission represents an atomic capability.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// Role represents a permission grouping assignable to users.
type Role struct {
	ID          int64
	Name        string
	Permissions []Permission
}

// User represents a user account. RoleName is a denormalized stamp written at
// assignment time; Role is nil when the referenced role could not be loaded,
// leaving only the bare name behind. Both shapes occur in production data and
// the principal mapping keeps them distinct.
type User struct {
	ID        int64
	Email     string
	Name      string
	FullName  string
	IsActive  bool
	RoleID    int64
	RoleName  string
	Role      *Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal maps the account to the decision engine's input type. A loaded
// role becomes a resolved role carrying its permission names; a bare role
// name becomes an unresolved role, which the engine treats as granting
// nothing.
func (u *User) Principal() *authz.Principal {
	if u == nil {
		return nil
	}
	p := &authz.Principal{
		ID:       strconv.FormatInt(u.ID, 10),
		Email:    u.Email,
		Name:     u.Name,
		FullName: u.FullName,
	}
	if u.Role != nil {
		perms := make([]string, len(u.Role.Permissions))
		for i, perm := range u.Role.Permissions {
			perms[i] = perm.Name
		}
		p.Role = authz.ResolvedRole(authz.RoleData{
			ID:          strconv.FormatInt(u.Role.ID, 10),
			Name:        u.Role.Name,
			Permissions: perms,
		})
		return p
	}
	p.Role = authz.UnresolvedRole(u.RoleName)
	return p
}
