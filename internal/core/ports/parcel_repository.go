package ports

import (
	"context"
	"time"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

// ListParcelsFilter carries all query parameters for listing parcels.
// CreatedBy is always enforced by the service layer for the user role.
type ListParcelsFilter struct {
	CreatedBy      string // empty = no owner filter (admin); non-empty = scoped to owner
	RiderEmail     string // non-empty = scoped to the assigned rider
	ParcelStatus   string
	PaymentStatus  string
	DeliveryStatus string
	// DeliveryStatusIn matches any of the given delivery statuses; used for
	// the rider pending-deliveries view. Ignored when DeliveryStatus is set.
	DeliveryStatusIn []string
	Search           string // partial match on tracking_id or parcel_name
	Page             int    // 1-based
	Limit            int    // capped at 100 by the service
}

// ParcelRepository defines persistence operations for parcels.
type ParcelRepository interface {
	Create(ctx context.Context, p *domain.Parcel) error
	// FindByTrackingID retrieves a parcel. When createdBy is non-empty the
	// query is additionally filtered by owner.
	FindByTrackingID(ctx context.Context, trackingID, createdBy string) (*domain.Parcel, error)
	// FindByIdempotencyKey retrieves the parcel booked by createdBy with the
	// given key. Keys are scoped to the owner so one caller can never replay
	// into another caller's booking.
	FindByIdempotencyKey(ctx context.Context, key, createdBy string) (*domain.Parcel, error)
	// List returns a page of parcels matching filter (oldest first) and the
	// total count.
	List(ctx context.Context, filter ListParcelsFilter) ([]*domain.Parcel, int64, error)
	// Delete removes a parcel owned by createdBy.
	Delete(ctx context.Context, trackingID, createdBy string) error
	// AssignRider sets the assigned rider and delivery status atomically,
	// appending a history entry.
	AssignRider(ctx context.Context, trackingID, riderID, riderEmail string, entry domain.HistoryEntry) error
	// UpdateDeliveryStatus atomically sets both status axes and appends a
	// history entry. deliveredAt is set only when non-nil.
	UpdateDeliveryStatus(ctx context.Context, trackingID string, ds domain.DeliveryStatus, ps domain.ParcelStatus, deliveredAt *time.Time, entry domain.HistoryEntry) error
	// MarkPaid flips payment status Pending -> Paid and records the method,
	// appending a history entry. The flip is conditional on the stored status
	// still being Pending; a parcel already Paid is ErrParcelAlreadyPaid, so
	// concurrent confirmations cannot both win.
	MarkPaid(ctx context.Context, trackingID, paymentMethod string, entry domain.HistoryEntry) error
	// SetEarnings records the payout split and the wallet-credit flag. The
	// write is conditional on the earnings not being credited yet; a parcel
	// already credited is ErrEarningsAlreadyCredited.
	SetEarnings(ctx context.Context, trackingID string, earnings domain.Earnings) error
}
