package ports

import (
	"context"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

// AuthService implements registration, login, and role management. Roles are
// resolved server-side only; the session token carries a snapshot, the role
// lookup is the source of truth.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Role resolves the access tier for email, served from cache when warm.
	// Unknown users default to "user".
	Role(ctx context.Context, email string) (string, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	SearchUsers(ctx context.Context, emailFragment string) ([]*domain.User, error)
	// UpdateRole changes a user's role and invalidates the cached lookup.
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)
}
