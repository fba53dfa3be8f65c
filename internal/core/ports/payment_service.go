package ports

import (
	"context"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

// ConfirmPaymentInput records the outcome of the processor-side confirmation.
type ConfirmPaymentInput struct {
	TrackingID    string
	TransactionID string
	PaymentMethod string
	Email         string
}

// CashOutInput is a rider withdrawal request.
type CashOutInput struct {
	RiderEmail string
	Amount     int64
	Method     string
	Account    string
}

// PaymentService defines use-case operations for payments and rider wallets.
type PaymentService interface {
	// CreateIntent starts the two-step payment handshake for an unpaid parcel
	// owned by email.
	CreateIntent(ctx context.Context, trackingID, email string) (*domain.PaymentIntent, error)
	// Confirm records a processor confirmation, flipping the parcel's payment
	// status Pending -> Paid. Replaying the same transaction returns the
	// recorded payment.
	Confirm(ctx context.Context, input ConfirmPaymentInput) (*domain.Payment, error)
	// History returns the caller's payment history; admins see all.
	History(ctx context.Context, email, role string) ([]*domain.Payment, error)
	// Wallet returns the rider's wallet, creating an empty view when the
	// rider has not earned yet.
	Wallet(ctx context.Context, riderEmail string) (*domain.Wallet, error)
	// CreditEarnings computes and credits the payout for a parcel delivered
	// by riderEmail. Guarded against double credit.
	CreditEarnings(ctx context.Context, trackingID, riderEmail string) (*domain.Wallet, error)
	CashOut(ctx context.Context, input CashOutInput) (*domain.Wallet, error)
}
