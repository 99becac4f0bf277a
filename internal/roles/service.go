package roles

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name, displayName, description string) (Role, error)
	UpdateRole(ctx context.Context, id int64, name, displayName, description string) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
	ListPermissions(ctx context.Context) ([]Permission, error)
	ListRolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	AttachPermission(ctx context.Context, roleID, permissionID int64) error
	DetachPermission(ctx context.Context, roleID, permissionID int64) error
	EnsurePermission(ctx context.Context, name, description string) (Permission, error)
}

// Service orchestrates role and permission administration.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// RoleName returns the role's name. Implements users.RoleLookup.
func (s *Service) RoleName(ctx context.Context, roleID int64) (string, error) {
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return "", err
	}
	return role.Name, nil
}

// CreateRole inserts a new role. The display name defaults to a title-cased
// rendering of the machine name.
func (s *Service) CreateRole(ctx context.Context, name, displayName, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = titleCaser.String(name)
	}
	return s.repo.CreateRole(ctx, name, displayName, strings.TrimSpace(description))
}

// UpdateRole updates an existing role.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, displayName, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = titleCaser.String(name)
	}
	return s.repo.UpdateRole(ctx, id, name, displayName, strings.TrimSpace(description))
}

// DeleteRole removes a role. Users pointing at it keep their denormalized
// role name, which downstream resolves as an unresolved role granting
// nothing.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}

// ListPermissions returns all known permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// EnsurePermission upserts a permission definition.
func (s *Service) EnsurePermission(ctx context.Context, name, description string) (Permission, error) {
	return s.repo.EnsurePermission(ctx, strings.TrimSpace(name), strings.TrimSpace(description))
}

// SetRolePermissions replaces a role's permission set by diffing the current
// grants against the requested set.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	current, err := s.repo.ListRolePermissions(ctx, roleID)
	if err != nil {
		return err
	}
	existing := make(map[int64]struct{}, len(current))
	for _, p := range current {
		existing[p.ID] = struct{}{}
	}
	keep := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		keep[id] = struct{}{}
		if _, ok := existing[id]; !ok {
			if err := s.repo.AttachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	for id := range existing {
		if _, ok := keep[id]; !ok {
			if err := s.repo.DetachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// RolePermissions returns the permissions granted to a role.
func (s *Service) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	return s.repo.ListRolePermissions(ctx, roleID)
}
