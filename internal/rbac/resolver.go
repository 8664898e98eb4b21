package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Principal describes an authenticated actor at resolution time.
type Principal struct {
	ID          int64
	DisplayName string
	Role        Role
	Active      bool
}

// Resolver maps a principal identifier to its current role. Resolution
// happens fresh per request; roles can change between requests, so
// results are never cached.
type Resolver interface {
	Resolve(ctx context.Context, principalID int64) (Principal, error)
}

// PGResolver implements Resolver against the users table.
type PGResolver struct {
	pool *pgxpool.Pool
}

// NewPGResolver constructs a PostgreSQL backed resolver.
func NewPGResolver(pool *pgxpool.Pool) *PGResolver {
	return &PGResolver{pool: pool}
}

// Resolve fetches the principal. ErrPrincipalNotFound when the user
// does not exist; a role label outside the closed set resolves to
// RoleNone rather than failing the request.
func (r *PGResolver) Resolve(ctx context.Context, principalID int64) (Principal, error) {
	if r == nil || r.pool == nil {
		return Principal{}, errors.New("rbac: resolver not initialised")
	}
	var (
		p        Principal
		roleText string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, role, is_active FROM users WHERE id = $1`,
		principalID,
	).Scan(&p.ID, &p.DisplayName, &roleText, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Principal{}, ErrPrincipalNotFound
		}
		return Principal{}, fmt.Errorf("rbac: resolve principal: %w", err)
	}
	role, err := ParseRole(roleText)
	if err != nil {
		role = RoleNone
	}
	p.Role = role
	return p, nil
}

var _ Resolver = (*PGResolver)(nil)
