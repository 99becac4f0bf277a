package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/gatherly/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUser fetches a user and, when possible, the full role with permissions.
// A user whose role row is gone still loads; only the bare role name remains.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `SELECT id, email, name, full_name, is_active, COALESCE(role_id, 0), COALESCE(role_name, ''), created_at, updated_at
FROM users WHERE id=$1`, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.FullName, &user.IsActive,
		&user.RoleID, &user.RoleName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if user.RoleID != 0 {
		role, err := r.loadRole(ctx, user.RoleID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		user.Role = role
	}
	return &user, nil
}

// GetByEmail fetches a user by email without role data.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `SELECT id, email, name, full_name, is_active, COALESCE(role_id, 0), COALESCE(role_name, ''), created_at, updated_at
FROM users WHERE email=$1`, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.FullName, &user.IsActive,
		&user.RoleID, &user.RoleName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of users ordered by id, plus the total count.
func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, email, name, full_name, is_active, COALESCE(role_id, 0), COALESCE(role_name, ''), created_at, updated_at
FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.FullName, &user.IsActive,
			&user.RoleID, &user.RoleName, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CreateUser inserts a new account and returns it.
func (r *Repository) CreateUser(ctx context.Context, email, name, fullName, passwordHash string, roleID int64, roleName string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `INSERT INTO users (email, name, full_name, password_hash, role_id, role_name, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, NULLIF($5, 0), $6, TRUE, NOW(), NOW())
RETURNING id, email, name, full_name, is_active, COALESCE(role_id, 0), COALESCE(role_name, ''), created_at, updated_at`,
		email, name, fullName, passwordHash, roleID, roleName).Scan(
		&user.ID, &user.Email, &user.Name, &user.FullName, &user.IsActive,
		&user.RoleID, &user.RoleName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AssignRole points the user at a role and refreshes the denormalized name.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID int64, roleName string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role_id=NULLIF($2, 0), role_name=$3, updated_at=NOW() WHERE id=$1`,
		userID, roleID, roleName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetActive toggles account activation.
func (r *Repository) SetActive(ctx context.Context, userID int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active=$2, updated_at=NOW() WHERE id=$1`, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) loadRole(ctx context.Context, roleID int64) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE id=$1`, roleID).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, p.description
FROM permissions p
JOIN role_permissions rp ON rp.permission_id = p.id
WHERE rp.role_id = $1
ORDER BY p.name`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Description); err != nil {
			return nil, err
		}
		role.Permissions = append(role.Permissions, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &role, nil
}
