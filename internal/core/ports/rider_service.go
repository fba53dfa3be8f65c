package ports

import (
	"context"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

// ApplyRiderInput carries a self-service rider application.
type ApplyRiderInput struct {
	Name             string
	Email            string
	Phone            string
	Age              int
	NationalID       string
	Region           string
	District         string
	BikeBrand        string
	BikeRegistration string
}

// RiderService defines use-case operations for rider applications.
type RiderService interface {
	// Apply files a pending application for the authenticated user.
	Apply(ctx context.Context, input ApplyRiderInput) (*domain.Rider, error)
	ListRiders(ctx context.Context, status, district string) ([]*domain.Rider, error)
	// Decide transitions a rider application (approve/reject/deactivate) and
	// synchronizes the user's role. Admin only (enforced by the route).
	Decide(ctx context.Context, id string, next domain.RiderStatus) (*domain.Rider, error)
}
