package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zapshift/parcel-system/internal/api/metrics"
	"github.com/zapshift/parcel-system/internal/core/directory"
	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

const (
	trackingIDPrefix     = "ZAP-"
	trackingIDDigits     = 8
	trackingIDRetries    = 3
	expectedDeliveryDays = 3

	defaultPageLimit = 20
	maxPageLimit     = 100
)

type ParcelService struct {
	repo      ports.ParcelRepository
	riderRepo ports.RiderRepository
	dir       *directory.Directory
	logger    zerolog.Logger
}

func NewParcelService(repo ports.ParcelRepository, riderRepo ports.RiderRepository, dir *directory.Directory, logger zerolog.Logger) *ParcelService {
	return &ParcelService{repo: repo, riderRepo: riderRepo, dir: dir, logger: logger}
}

// validateBooking is the gate before any pricing or persistence. A booking
// that fails here never reaches the repository.
func (s *ParcelService) validateBooking(in ports.QuoteInput) error {
	if in.ParcelName == "" {
		return fmt.Errorf("%w: parcel name is required", domain.ErrInvalidBooking)
	}
	switch domain.ParcelType(in.ParcelType) {
	case domain.TypeDocument:
	case domain.TypeNonDocument:
		if in.WeightKg <= 0 {
			return fmt.Errorf("%w: weight must be greater than 0 for non-document parcels", domain.ErrInvalidBooking)
		}
	default:
		return fmt.Errorf("%w: unknown parcel type %q", domain.ErrInvalidBooking, in.ParcelType)
	}
	if !s.dir.HasRegion(in.SenderRegion) {
		return fmt.Errorf("%w: unknown sender region %q", domain.ErrInvalidBooking, in.SenderRegion)
	}
	if !s.dir.HasRegion(in.ReceiverRegion) {
		return fmt.Errorf("%w: unknown receiver region %q", domain.ErrInvalidBooking, in.ReceiverRegion)
	}
	return nil
}

// Quote validates the booking fields and returns the computed cost breakdown
// for the confirmation step. Nothing is persisted.
func (s *ParcelService) Quote(ctx context.Context, in ports.QuoteInput) (*ports.QuoteResult, error) {
	if err := s.validateBooking(in); err != nil {
		return nil, err
	}

	cost := domain.ComputeCost(domain.ParcelType(in.ParcelType), in.WeightKg, in.SenderRegion, in.ReceiverRegion)
	metrics.QuotesTotal.WithLabelValues(in.ParcelType, string(cost.Zone)).Inc()

	return &ports.QuoteResult{
		BaseCost:     cost.BaseCost,
		ExtraCharges: cost.ExtraCharges,
		TotalCost:    cost.TotalCost,
		Zone:         string(cost.Zone),
	}, nil
}

// CreateParcel books a parcel. If an idempotency key is provided and already
// seen, the previously created parcel is returned without side effects.
func (s *ParcelService) CreateParcel(ctx context.Context, in ports.CreateParcelInput) (*ports.ParcelResult, error) {
	quoteIn := ports.QuoteInput{
		ParcelName:     in.ParcelName,
		ParcelType:     in.ParcelType,
		WeightKg:       in.WeightKg,
		SenderRegion:   in.Sender.Region,
		ReceiverRegion: in.Receiver.Region,
	}
	if err := s.validateBooking(quoteIn); err != nil {
		return nil, err
	}
	if err := s.validateParty("sender", in.Sender); err != nil {
		return nil, err
	}
	if err := s.validateParty("receiver", in.Receiver); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, in.IdempotencyKey, in.CreatedBy)
		if err == nil && existing != nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("tracking_id", existing.TrackingID).Msg("idempotent replay")
			return parcelResult(existing, true), nil
		}
	}

	now := time.Now().UTC()
	cost := domain.ComputeCost(domain.ParcelType(in.ParcelType), in.WeightKg, in.Sender.Region, in.Receiver.Region)

	parcel := &domain.Parcel{
		ParcelName:       in.ParcelName,
		Type:             domain.ParcelType(in.ParcelType),
		WeightKg:         in.WeightKg,
		Sender:           toParty(in.Sender),
		Receiver:         toParty(in.Receiver),
		Cost:             cost,
		DeliveryCost:     cost.TotalCost,
		PaymentStatus:    domain.PaymentPending,
		ParcelStatus:     domain.StatusProcessing,
		DeliveryStatus:   domain.DeliveryNotDispatched,
		CreatedBy:        in.CreatedBy,
		CreatedAt:        now,
		ExpectedDelivery: now.AddDate(0, 0, expectedDeliveryDays),
		IdempotencyKey:   in.IdempotencyKey,
		History: []domain.HistoryEntry{{
			Status:    string(domain.StatusProcessing),
			Timestamp: now,
			Actor:     in.CreatedBy,
			Notes:     "parcel booked",
		}},
	}

	// Uniqueness lives in the database; on a tracking-id collision we mint a
	// fresh one and retry a bounded number of times.
	var err error
	for attempt := 0; attempt < trackingIDRetries; attempt++ {
		parcel.TrackingID = generateTrackingID()
		err = s.repo.Create(ctx, parcel)
		if err != domain.ErrDuplicateTrackingID {
			break
		}
		s.logger.Warn().Str("tracking_id", parcel.TrackingID).Msg("tracking id collision, regenerating")
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create parcel")
		return nil, err
	}

	metrics.ParcelsBookedTotal.WithLabelValues(in.ParcelType, string(cost.Zone)).Inc()
	s.logger.Info().
		Str("tracking_id", parcel.TrackingID).
		Str("created_by", in.CreatedBy).
		Int64("delivery_cost", parcel.DeliveryCost).
		Msg("parcel booked")

	return parcelResult(parcel, false), nil
}

func (s *ParcelService) validateParty(side string, p ports.PartyInput) error {
	if p.Name == "" || p.Contact == "" {
		return fmt.Errorf("%w: %s name and contact are required", domain.ErrInvalidBooking, side)
	}
	if !s.dir.Covers(p.Region, p.District, p.Warehouse) {
		return fmt.Errorf("%w: %s warehouse %q is not covered by %s/%s", domain.ErrInvalidBooking, side, p.Warehouse, p.Region, p.District)
	}
	return nil
}

// GetParcel retrieves a single parcel, enforcing access by role: users see
// their own parcels, riders the ones assigned to them, admins everything.
func (s *ParcelService) GetParcel(ctx context.Context, in ports.GetParcelInput) (*domain.Parcel, error) {
	owner := ""
	if in.Role == domain.RoleUser {
		owner = in.Email
	}

	parcel, err := s.repo.FindByTrackingID(ctx, in.TrackingID, owner)
	if err != nil {
		return nil, err
	}
	if in.Role == domain.RoleRider && parcel.AssignedRiderEmail != in.Email && parcel.CreatedBy != in.Email {
		return nil, domain.ErrForbidden
	}
	return parcel, nil
}

// ListParcels pages through parcels. The user role is always scoped to its
// own bookings; filters are an admin affordance.
func (s *ParcelService) ListParcels(ctx context.Context, in ports.ListParcelsInput) (*ports.ListParcelsResult, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	page := in.Page
	if page <= 0 {
		page = 1
	}

	filter := ports.ListParcelsFilter{
		ParcelStatus:   in.ParcelStatus,
		PaymentStatus:  in.PaymentStatus,
		DeliveryStatus: in.DeliveryStatus,
		Search:         in.Search,
		Page:           page,
		Limit:          limit,
	}
	if in.Role != domain.RoleAdmin {
		filter.CreatedBy = in.Email
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListParcelsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// DeleteParcel removes a booking. Only the owner may delete, and only while
// the parcel is unpaid.
func (s *ParcelService) DeleteParcel(ctx context.Context, trackingID, email string) (*domain.Parcel, error) {
	parcel, err := s.repo.FindByTrackingID(ctx, trackingID, email)
	if err != nil {
		return nil, err
	}
	if parcel.PaymentStatus == domain.PaymentPaid {
		return nil, domain.ErrParcelNotDeletable
	}
	if err := s.repo.Delete(ctx, trackingID, email); err != nil {
		return nil, err
	}
	s.logger.Info().Str("tracking_id", trackingID).Str("owner", email).Msg("parcel deleted")
	return parcel, nil
}

// AssignRider attaches an approved rider to a parcel awaiting dispatch. The
// parcel must be Processing, Paid, and Not Dispatched; the rider must cover
// the receiver's district.
func (s *ParcelService) AssignRider(ctx context.Context, trackingID, riderID, actor string) error {
	parcel, err := s.repo.FindByTrackingID(ctx, trackingID, "")
	if err != nil {
		return err
	}
	if parcel.ParcelStatus != domain.StatusProcessing ||
		parcel.PaymentStatus != domain.PaymentPaid ||
		parcel.DeliveryStatus != domain.DeliveryNotDispatched {
		return fmt.Errorf("%w: parcel is not assignable", domain.ErrInvalidTransition)
	}

	rider, err := s.riderRepo.FindByID(ctx, riderID)
	if err != nil {
		return err
	}
	if rider.Status != domain.RiderApproved {
		return domain.ErrRiderNotApproved
	}
	district := parcel.Receiver.District
	if d, ok := s.dir.DistrictOfWarehouse(parcel.Receiver.Warehouse); ok {
		district = d
	}
	if rider.District != district {
		return fmt.Errorf("%w: rider district %q does not cover %q", domain.ErrInvalidBooking, rider.District, district)
	}

	entry := domain.HistoryEntry{
		Status:    string(domain.DeliveryRiderAssigned),
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Notes:     "rider " + rider.Name + " assigned",
	}
	if err := s.repo.AssignRider(ctx, trackingID, rider.ID, rider.Email, entry); err != nil {
		return err
	}

	metrics.RiderAssignmentsTotal.Inc()
	s.logger.Info().Str("tracking_id", trackingID).Str("rider_id", riderID).Str("actor", actor).Msg("rider assigned")
	return nil
}

// UpdateDeliveryStatus applies a courier-handoff transition reported by the
// assigned rider, cascading the coarse parcel status.
func (s *ParcelService) UpdateDeliveryStatus(ctx context.Context, trackingID string, next domain.DeliveryStatus, riderEmail string) error {
	parcel, err := s.repo.FindByTrackingID(ctx, trackingID, "")
	if err != nil {
		return err
	}
	if parcel.AssignedRiderEmail != riderEmail {
		return domain.ErrForbidden
	}
	if !parcel.DeliveryStatus.CanTransitionTo(next) {
		return fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, parcel.DeliveryStatus, next)
	}

	ps := parcel.ParcelStatus
	if cascaded, ok := domain.ParcelStatusFor(next); ok {
		ps = cascaded
	}

	now := time.Now().UTC()
	var deliveredAt *time.Time
	if next == domain.DeliveryDelivered {
		deliveredAt = &now
	}

	entry := domain.HistoryEntry{
		Status:    string(next),
		Timestamp: now,
		Actor:     riderEmail,
	}
	if err := s.repo.UpdateDeliveryStatus(ctx, trackingID, next, ps, deliveredAt, entry); err != nil {
		return err
	}

	metrics.DeliveryTransitionsTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info().Str("tracking_id", trackingID).Str("delivery_status", string(next)).Str("rider", riderEmail).Msg("delivery status updated")
	return nil
}

// RiderDeliveries returns the rider's worklist: pending covers everything
// from assignment through out-for-delivery, completed is delivered parcels.
func (s *ParcelService) RiderDeliveries(ctx context.Context, in ports.RiderDeliveriesInput) ([]*domain.Parcel, error) {
	filter := ports.ListParcelsFilter{
		RiderEmail: in.RiderEmail,
		Page:       1,
		Limit:      maxPageLimit,
	}
	switch in.State {
	case "completed":
		filter.DeliveryStatus = string(domain.DeliveryDelivered)
	default:
		filter.DeliveryStatusIn = []string{
			string(domain.DeliveryRiderAssigned),
			string(domain.DeliveryInTransit),
			string(domain.DeliveryOutForDelivery),
		}
	}

	items, _, err := s.repo.List(ctx, filter)
	return items, err
}

// Track returns the public tracking view for a tracking ID.
func (s *ParcelService) Track(ctx context.Context, trackingID string) (*ports.TrackResult, error) {
	parcel, err := s.repo.FindByTrackingID(ctx, trackingID, "")
	if err != nil {
		return nil, err
	}
	return &ports.TrackResult{
		TrackingID:       parcel.TrackingID,
		ParcelStatus:     string(parcel.ParcelStatus),
		DeliveryStatus:   string(parcel.DeliveryStatus),
		ExpectedDelivery: parcel.ExpectedDelivery,
		History:          parcel.History,
	}, nil
}

func toParty(in ports.PartyInput) domain.Party {
	return domain.Party{
		Name:        in.Name,
		Contact:     in.Contact,
		Region:      in.Region,
		District:    in.District,
		Warehouse:   in.Warehouse,
		Address:     in.Address,
		Instruction: in.Instruction,
	}
}

func parcelResult(p *domain.Parcel, existed bool) *ports.ParcelResult {
	return &ports.ParcelResult{
		TrackingID:       p.TrackingID,
		ParcelStatus:     string(p.ParcelStatus),
		DeliveryStatus:   string(p.DeliveryStatus),
		PaymentStatus:    string(p.PaymentStatus),
		DeliveryCost:     p.DeliveryCost,
		Zone:             string(p.Cost.Zone),
		CreatedAt:        p.CreatedAt,
		ExpectedDelivery: p.ExpectedDelivery,
		AlreadyExisted:   existed,
	}
}

// generateTrackingID returns a tracking id in the format ZAP-XXXXXXXX, a
// fixed-width zero-padded random numeric suffix. Uniqueness is enforced by
// the database index, not here.
func generateTrackingID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("%s%0*d", trackingIDPrefix, trackingIDDigits, time.Now().UnixNano()%100000000)
	}
	n := binary.BigEndian.Uint64(b[:]) % 100000000
	return fmt.Sprintf("%s%0*d", trackingIDPrefix, trackingIDDigits, n)
}
