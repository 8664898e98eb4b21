package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/clinicore/internal/rbac"
)

// Service handles user provisioning business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateParams carries a provisioning request.
type CreateParams struct {
	Username string
	Email    string
	Name     string
	Password string
	Role     string
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, int, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}
	return s.repo.List(ctx, perPage, (page-1)*perPage)
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Create provisions a new account with a hashed password.
func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	role, err := rbac.ParseRole(params.Role)
	if err != nil || role == rbac.RoleNone {
		return nil, fmt.Errorf("users: invalid role %q", params.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	user := User{
		Username: strings.TrimSpace(params.Username),
		Email:    strings.ToLower(strings.TrimSpace(params.Email)),
		Name:     strings.TrimSpace(params.Name),
		Role:     role,
	}
	return s.repo.Create(ctx, user, string(hash))
}

// ChangeRole assigns a new role label.
func (s *Service) ChangeRole(ctx context.Context, id int64, roleLabel string) error {
	role, err := rbac.ParseRole(roleLabel)
	if err != nil || role == rbac.RoleNone {
		return fmt.Errorf("users: invalid role %q", roleLabel)
	}
	return s.repo.UpdateRole(ctx, id, string(role))
}

// Deactivate disables the account without deleting it.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}
