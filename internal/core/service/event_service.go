package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zapshift/parcel-system/internal/api/metrics"
	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, trackingID, status string, ts time.Time) (bool, error)
	Mark(ctx context.Context, trackingID, status string, ts time.Time) error
}

type eventService struct {
	parcelRepo ports.ParcelRepository
	eventRepo  ports.EventRepository
	dedup      DedupChecker
	log        zerolog.Logger
}

// NewEventService returns an EventService implementation.
func NewEventService(
	parcelRepo ports.ParcelRepository,
	eventRepo ports.EventRepository,
	dedup DedupChecker,
	log zerolog.Logger,
) ports.EventService {
	return &eventService{
		parcelRepo: parcelRepo,
		eventRepo:  eventRepo,
		dedup:      dedup,
		log:        log,
	}
}

// Process validates, deduplicates, and persists a single delivery event.
func (s *eventService) Process(ctx context.Context, in ports.DeliveryEventInput) error {
	started := time.Now()
	newStatus := domain.DeliveryStatus(in.Status)

	// 1. Idempotency check — silently skip duplicates.
	isDup, err := s.dedup.IsDuplicate(ctx, in.TrackingID, in.Status, in.Timestamp)
	if err != nil {
		s.log.Warn().Err(err).Str("tracking_id", in.TrackingID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		metrics.EventsDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("tracking_id", in.TrackingID).Str("status", in.Status).Msg("duplicate event skipped")
		return nil
	}
	metrics.EventsDedupTotal.WithLabelValues("miss").Inc()

	// 2. Find parcel (no owner filter — events come from courier devices).
	parcel, err := s.parcelRepo.FindByTrackingID(ctx, in.TrackingID, "")
	if err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("parcel_not_found").Inc()
		return fmt.Errorf("process event: %w", err)
	}

	// Same gate as the synchronous status update: only the assigned rider may
	// advance a parcel. Actor carries the authenticated rider email.
	if parcel.AssignedRiderEmail != in.Actor {
		metrics.EventsErrorsTotal.WithLabelValues("actor_not_assigned").Inc()
		return fmt.Errorf("process event: %w: %q is not the assigned rider", domain.ErrForbidden, in.Actor)
	}

	// 3. Validate the courier-handoff state machine.
	if !parcel.DeliveryStatus.CanTransitionTo(newStatus) {
		metrics.EventsErrorsTotal.WithLabelValues("invalid_transition").Inc()
		return fmt.Errorf("process event: %w (from %s to %s)", domain.ErrInvalidTransition, parcel.DeliveryStatus, newStatus)
	}

	// 4. Mark as processed before writing (prevents duplicate processing on retry).
	if markErr := s.dedup.Mark(ctx, in.TrackingID, in.Status, in.Timestamp); markErr != nil {
		s.log.Warn().Err(markErr).Str("tracking_id", in.TrackingID).Msg("failed to set dedup key")
	}

	// 5. Cascade the coarse status and stamp delivery when terminal.
	ps := parcel.ParcelStatus
	if cascaded, ok := domain.ParcelStatusFor(newStatus); ok {
		ps = cascaded
	}
	var deliveredAt *time.Time
	if newStatus == domain.DeliveryDelivered {
		t := in.Timestamp.UTC()
		deliveredAt = &t
	}

	// 6. Atomically update both status axes + history.
	entry := domain.HistoryEntry{
		Status:    string(newStatus),
		Timestamp: in.Timestamp.UTC(),
		Actor:     in.Actor,
		Notes:     in.Source,
	}
	if err := s.parcelRepo.UpdateDeliveryStatus(ctx, in.TrackingID, newStatus, ps, deliveredAt, entry); err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("update_failed").Inc()
		return fmt.Errorf("process event: update status: %w", err)
	}

	// 7. Insert into audit trail (non-fatal on failure).
	var loc *domain.Coordinates
	if in.Location != nil {
		loc = &domain.Coordinates{Lat: in.Location.Lat, Lng: in.Location.Lng}
	}
	auditEvent := &domain.DeliveryEvent{
		TrackingID: in.TrackingID,
		Status:     newStatus,
		Timestamp:  in.Timestamp,
		Source:     in.Source,
		Actor:      in.Actor,
		Location:   loc,
	}
	if err := s.eventRepo.InsertEvent(ctx, auditEvent); err != nil {
		s.log.Warn().Err(err).Str("tracking_id", in.TrackingID).Msg("failed to insert audit event")
	}

	metrics.EventsProcessedTotal.WithLabelValues(in.Status, in.Source).Inc()
	metrics.EventProcessingDuration.WithLabelValues(in.Status).Observe(time.Since(started).Seconds())

	s.log.Info().
		Str("tracking_id", in.TrackingID).
		Str("status", in.Status).
		Str("source", in.Source).
		Msg("delivery event processed")

	return nil
}
