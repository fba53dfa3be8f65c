package ports

import (
	"context"
	"time"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

// PartyInput holds one side of a booking (sender or receiver).
type PartyInput struct {
	Name        string
	Contact     string
	Region      string
	District    string
	Warehouse   string
	Address     string
	Instruction string
}

// QuoteInput carries the fields needed to price a booking. It is also the
// validation gate: a booking that fails here never reaches persistence.
type QuoteInput struct {
	ParcelName     string
	ParcelType     string
	WeightKg       float64
	SenderRegion   string
	ReceiverRegion string
}

// QuoteResult is the computed cost breakdown presented for confirmation.
type QuoteResult struct {
	BaseCost     int64
	ExtraCharges int64
	TotalCost    int64
	Zone         string
}

// CreateParcelInput carries all data needed to book a parcel. DeliveryCost is
// deliberately absent: cost is always computed server-side.
type CreateParcelInput struct {
	ParcelName     string
	ParcelType     string
	WeightKg       float64
	Sender         PartyInput
	Receiver       PartyInput
	CreatedBy      string
	IdempotencyKey string
}

// ParcelResult is returned by the service after booking a parcel.
type ParcelResult struct {
	TrackingID       string
	ParcelStatus     string
	DeliveryStatus   string
	PaymentStatus    string
	DeliveryCost     int64
	Zone             string
	CreatedAt        time.Time
	ExpectedDelivery time.Time
	// AlreadyExisted is true when the Idempotency-Key matched an existing
	// parcel.
	AlreadyExisted bool
}

// GetParcelInput carries the parameters for retrieving a single parcel.
// Role and Email enforce access: users see their own parcels, riders the
// parcels assigned to them, admins everything.
type GetParcelInput struct {
	TrackingID string
	Role       string
	Email      string
}

// ListParcelsInput carries all parameters for the list endpoint.
type ListParcelsInput struct {
	Role           string
	Email          string
	ParcelStatus   string
	PaymentStatus  string
	DeliveryStatus string
	Search         string
	Page           int
	Limit          int
}

// ListParcelsResult is returned by ListParcels.
type ListParcelsResult struct {
	Items      []*domain.Parcel
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// RiderDeliveriesInput selects a rider's delivery worklist.
type RiderDeliveriesInput struct {
	RiderEmail string
	// State is "pending" (assigned through out-for-delivery) or "completed".
	State string
}

// TrackResult is the public tracking view for a parcel.
type TrackResult struct {
	TrackingID       string
	ParcelStatus     string
	DeliveryStatus   string
	ExpectedDelivery time.Time
	History          []domain.HistoryEntry
}

// ParcelService defines use-case operations for parcels.
type ParcelService interface {
	// Quote validates booking fields and returns the cost breakdown without
	// persisting anything.
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
	CreateParcel(ctx context.Context, input CreateParcelInput) (*ParcelResult, error)
	GetParcel(ctx context.Context, input GetParcelInput) (*domain.Parcel, error)
	ListParcels(ctx context.Context, input ListParcelsInput) (*ListParcelsResult, error)
	// DeleteParcel removes an unpaid parcel owned by email.
	DeleteParcel(ctx context.Context, trackingID, email string) (*domain.Parcel, error)
	// AssignRider attaches an approved rider from the receiver's district to
	// a paid, undispatched parcel. Admin only (enforced by the route).
	AssignRider(ctx context.Context, trackingID, riderID, actor string) error
	// UpdateDeliveryStatus applies a rider's courier-handoff transition and
	// cascades the coarse parcel status.
	UpdateDeliveryStatus(ctx context.Context, trackingID string, next domain.DeliveryStatus, riderEmail string) error
	RiderDeliveries(ctx context.Context, input RiderDeliveriesInput) ([]*domain.Parcel, error)
	// Track returns the public tracking history for a tracking ID.
	Track(ctx context.Context, trackingID string) (*TrackResult, error)
}
