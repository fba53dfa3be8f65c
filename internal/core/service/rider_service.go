package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zapshift/parcel-system/internal/core/directory"
	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

// RiderService handles rider applications and their admin-driven lifecycle.
type RiderService struct {
	repo     ports.RiderRepository
	userRepo ports.UserRepository
	roles    RoleCache
	dir      *directory.Directory
	logger   zerolog.Logger
}

func NewRiderService(repo ports.RiderRepository, userRepo ports.UserRepository, roles RoleCache, dir *directory.Directory, logger zerolog.Logger) *RiderService {
	return &RiderService{repo: repo, userRepo: userRepo, roles: roles, dir: dir, logger: logger}
}

// Apply files a pending rider application for the authenticated user. One
// application per email.
func (s *RiderService) Apply(ctx context.Context, in ports.ApplyRiderInput) (*domain.Rider, error) {
	if in.Name == "" || in.Email == "" || in.Phone == "" {
		return nil, fmt.Errorf("%w: name, email and phone are required", domain.ErrInvalidBooking)
	}
	if !s.dir.HasRegion(in.Region) {
		return nil, fmt.Errorf("%w: unknown region %q", domain.ErrInvalidBooking, in.Region)
	}
	knownDistrict := false
	for _, d := range s.dir.Districts(in.Region) {
		if d == in.District {
			knownDistrict = true
			break
		}
	}
	if !knownDistrict {
		return nil, fmt.Errorf("%w: district %q is not in region %q", domain.ErrInvalidBooking, in.District, in.Region)
	}

	if existing, err := s.repo.FindByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, domain.ErrRiderExists
	}

	rider := &domain.Rider{
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		Age:              in.Age,
		NationalID:       in.NationalID,
		Region:           in.Region,
		District:         in.District,
		BikeBrand:        in.BikeBrand,
		BikeRegistration: in.BikeRegistration,
		Status:           domain.RiderPending,
		AppliedAt:        time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, rider)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", in.Email).Str("district", in.District).Msg("rider application filed")
	return created, nil
}

func (s *RiderService) ListRiders(ctx context.Context, status, district string) ([]*domain.Rider, error) {
	return s.repo.List(ctx, ports.ListRidersFilter{Status: status, District: district})
}

// Decide transitions a rider application and synchronizes the applicant's
// role: approval promotes to rider, rejection or deactivation demotes back
// to user. The role cache is invalidated either way.
func (s *RiderService) Decide(ctx context.Context, id string, next domain.RiderStatus) (*domain.Rider, error) {
	rider, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rider.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, rider.Status, next)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, next, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if next == domain.RiderApproved {
		role = domain.RoleRider
	}
	if _, err := s.userRepo.UpdateRoleByEmail(ctx, rider.Email, role); err != nil {
		// The application decision stands; role sync failure is surfaced in
		// logs and repaired by the next admin role edit.
		s.logger.Error().Err(err).Str("email", rider.Email).Str("role", role).Msg("failed to sync user role with rider decision")
	}
	if err := s.roles.Invalidate(ctx, rider.Email); err != nil {
		s.logger.Warn().Err(err).Str("email", rider.Email).Msg("failed to invalidate role cache")
	}

	s.logger.Info().Str("rider_id", id).Str("status", string(next)).Msg("rider application decided")
	return updated, nil
}
