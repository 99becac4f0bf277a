package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatherly/gatherly/internal/authz"
	"github.com/gatherly/gatherly/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]User, int, error)
	CreateUser(ctx context.Context, email, name, fullName, passwordHash string, roleID int64, roleName string) (*User, error)
	AssignRole(ctx context.Context, userID, roleID int64, roleName string) error
	SetActive(ctx context.Context, userID int64, active bool) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// RoleLookup resolves role names for assignment stamping.
type RoleLookup interface {
	RoleName(ctx context.Context, roleID int64) (string, error)
}

// Service handles user business logic.
type Service struct {
	repo  RepositoryPort
	roles RoleLookup
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, roles RoleLookup) *Service {
	return &Service{repo: repo, roles: roles}
}

// GetUser fetches one account with its role fully loaded.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers returns one page of accounts.
func (s *Service) ListUsers(ctx context.Context, page shared.Pagination) ([]User, shared.Pagination, error) {
	users, total, err := s.repo.ListUsers(ctx, page.PerPage, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(page.Page, page.PerPage, total), nil
}

// CreateUser registers a new account. The password is hashed before it ever
// reaches the repository.
func (s *Service) CreateUser(ctx context.Context, email, name, fullName, password string, roleID int64) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, errors.New("users: email required")
	}
	if len(password) < 8 {
		return nil, errors.New("users: password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	roleName := ""
	if roleID != 0 && s.roles != nil {
		roleName, err = s.roles.RoleName(ctx, roleID)
		if err != nil {
			return nil, err
		}
	}
	return s.repo.CreateUser(ctx, email, strings.TrimSpace(name), strings.TrimSpace(fullName), string(hash), roleID, roleName)
}

// AssignRole gives the user a new role, stamping the denormalized name.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	roleName := ""
	if roleID != 0 && s.roles != nil {
		name, err := s.roles.RoleName(ctx, roleID)
		if err != nil {
			return err
		}
		roleName = name
	}
	return s.repo.AssignRole(ctx, userID, roleID, roleName)
}

// Deactivate disables the account.
func (s *Service) Deactivate(ctx context.Context, userID int64) error {
	return s.repo.SetActive(ctx, userID, false)
}

// Activate re-enables the account.
func (s *Service) Activate(ctx context.Context, userID int64) error {
	return s.repo.SetActive(ctx, userID, true)
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentHash, current, next string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(current)); err != nil {
		return shared.ErrInvalidCredentials
	}
	if len(next) < 8 {
		return errors.New("users: password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

// Principal loads the account and maps it to the decision engine's input.
// Implements authz.PrincipalSource.
func (s *Service) Principal(ctx context.Context, userID int64) (*authz.Principal, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Principal(), nil
}
