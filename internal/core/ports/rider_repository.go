package ports

import (
	"context"
	"time"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

// ListRidersFilter narrows rider listings for the admin panels and for
// assignment candidate lookups.
type ListRidersFilter struct {
	Status   string
	District string
}

// RiderRepository defines persistence operations for rider applications.
type RiderRepository interface {
	Create(ctx context.Context, r *domain.Rider) (*domain.Rider, error)
	FindByID(ctx context.Context, id string) (*domain.Rider, error)
	FindByEmail(ctx context.Context, email string) (*domain.Rider, error)
	List(ctx context.Context, filter ListRidersFilter) ([]*domain.Rider, error)
	UpdateStatus(ctx context.Context, id string, status domain.RiderStatus, decidedAt time.Time) (*domain.Rider, error)
}
