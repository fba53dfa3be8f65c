package ports

import (
	"context"
	"time"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// SearchByEmail returns users whose email contains fragment.
	SearchByEmail(ctx context.Context, fragment string) ([]*domain.User, error)
	// UpdateRole sets the user's role and returns the updated record.
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)
	// UpdateRoleByEmail sets the role for the user with the given email.
	UpdateRoleByEmail(ctx context.Context, email, role string) (*domain.User, error)
	SetLastLogin(ctx context.Context, email string, at time.Time) error
}
