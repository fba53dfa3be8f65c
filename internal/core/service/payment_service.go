package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zapshift/parcel-system/internal/api/metrics"
	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

// PaymentService implements the two-step payment handshake and the rider
// wallet ledger.
type PaymentService struct {
	payments   ports.PaymentRepository
	wallets    ports.WalletRepository
	parcelRepo ports.ParcelRepository
	logger     zerolog.Logger
}

func NewPaymentService(payments ports.PaymentRepository, wallets ports.WalletRepository, parcelRepo ports.ParcelRepository, logger zerolog.Logger) *PaymentService {
	return &PaymentService{payments: payments, wallets: wallets, parcelRepo: parcelRepo, logger: logger}
}

// CreateIntent starts a payment for an unpaid parcel owned by email. The
// amount is derived from the stored delivery cost, never from the request.
func (s *PaymentService) CreateIntent(ctx context.Context, trackingID, email string) (*domain.PaymentIntent, error) {
	parcel, err := s.parcelRepo.FindByTrackingID(ctx, trackingID, email)
	if err != nil {
		return nil, err
	}
	if parcel.PaymentStatus == domain.PaymentPaid {
		return nil, domain.ErrParcelAlreadyPaid
	}

	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	intent := &domain.PaymentIntent{
		ID:            id,
		ClientSecret:  id + "_secret_" + uuid.NewString()[:8],
		TrackingID:    trackingID,
		AmountInCents: parcel.DeliveryCost * 100,
		CreatedAt:     time.Now().UTC(),
	}

	s.logger.Info().Str("tracking_id", trackingID).Str("intent_id", intent.ID).Int64("amount_cents", intent.AmountInCents).Msg("payment intent created")
	return intent, nil
}

// Confirm records a processor confirmation and flips the parcel's payment
// status Pending -> Paid. Replaying the same transaction id returns the
// recorded payment; a different transaction against a paid parcel is a
// conflict.
func (s *PaymentService) Confirm(ctx context.Context, in ports.ConfirmPaymentInput) (*domain.Payment, error) {
	if in.TransactionID == "" || in.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: transaction id and payment method are required", domain.ErrInvalidBooking)
	}

	parcel, err := s.parcelRepo.FindByTrackingID(ctx, in.TrackingID, in.Email)
	if err != nil {
		return nil, err
	}

	if parcel.PaymentStatus == domain.PaymentPaid {
		existing, err := s.payments.FindByTransactionID(ctx, in.TransactionID)
		if err == nil && existing.TrackingID == in.TrackingID {
			s.logger.Info().Str("transaction_id", in.TransactionID).Msg("payment confirmation replay")
			return existing, nil
		}
		return nil, domain.ErrParcelAlreadyPaid
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		TrackingID:    in.TrackingID,
		Email:         in.Email,
		Amount:        parcel.DeliveryCost,
		TransactionID: in.TransactionID,
		PaymentMethod: in.PaymentMethod,
		PaidAt:        now,
	}

	// The conditional Pending->Paid flip decides the winner between concurrent
	// confirmations; the parcel read above may be stale by now. A loser with
	// the same transaction id is a replay, anything else is a conflict.
	entry := domain.HistoryEntry{
		Status:    "Payment received",
		Timestamp: now,
		Actor:     in.Email,
		Notes:     in.PaymentMethod,
	}
	if err := s.parcelRepo.MarkPaid(ctx, in.TrackingID, in.PaymentMethod, entry); err != nil {
		if errors.Is(err, domain.ErrParcelAlreadyPaid) {
			existing, ferr := s.payments.FindByTransactionID(ctx, in.TransactionID)
			if ferr == nil && existing.TrackingID == in.TrackingID {
				s.logger.Info().Str("transaction_id", in.TransactionID).Msg("payment confirmation replay")
				return existing, nil
			}
			return nil, domain.ErrParcelAlreadyPaid
		}
		return nil, fmt.Errorf("mark parcel paid: %w", err)
	}

	if err := s.payments.Insert(ctx, payment); err != nil {
		if errors.Is(err, domain.ErrDuplicateTransaction) {
			return nil, err
		}
		return nil, fmt.Errorf("record payment: %w", err)
	}

	metrics.PaymentsConfirmedTotal.WithLabelValues(in.PaymentMethod).Inc()
	s.logger.Info().
		Str("tracking_id", in.TrackingID).
		Str("transaction_id", in.TransactionID).
		Int64("amount", payment.Amount).
		Msg("payment confirmed")

	return payment, nil
}

// History returns payment records, owner-scoped unless the caller is admin.
func (s *PaymentService) History(ctx context.Context, email, role string) ([]*domain.Payment, error) {
	if role == domain.RoleAdmin {
		return s.payments.ListByEmail(ctx, "")
	}
	return s.payments.ListByEmail(ctx, email)
}

// Wallet returns the rider's wallet; riders who have not earned yet get an
// empty view rather than an error.
func (s *PaymentService) Wallet(ctx context.Context, riderEmail string) (*domain.Wallet, error) {
	wallet, err := s.wallets.Find(ctx, riderEmail)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return &domain.Wallet{RiderEmail: riderEmail, Transactions: []domain.WalletTransaction{}}, nil
		}
		return nil, err
	}
	return wallet, nil
}

// CreditEarnings computes and credits the payout for a parcel delivered by
// riderEmail. The split is computed from the stored delivery cost; the parcel
// record guards against double credit.
func (s *PaymentService) CreditEarnings(ctx context.Context, trackingID, riderEmail string) (*domain.Wallet, error) {
	parcel, err := s.parcelRepo.FindByTrackingID(ctx, trackingID, "")
	if err != nil {
		return nil, err
	}
	if parcel.AssignedRiderEmail != riderEmail {
		return nil, domain.ErrForbidden
	}
	if parcel.DeliveryStatus != domain.DeliveryDelivered {
		return nil, fmt.Errorf("%w: parcel is not delivered", domain.ErrInvalidTransition)
	}
	if parcel.Earnings != nil && parcel.Earnings.AddedToWallet {
		return nil, domain.ErrEarningsAlreadyCredited
	}

	// The conditional write on the parcel is the real double-credit guard; the
	// flag check above only short-circuits the obvious replay.
	riderEarnings, commission := domain.SplitEarnings(parcel.DeliveryCost)
	if err := s.parcelRepo.SetEarnings(ctx, trackingID, domain.Earnings{
		RiderEarnings:     riderEarnings,
		CompanyCommission: commission,
		AddedToWallet:     true,
	}); err != nil {
		if errors.Is(err, domain.ErrEarningsAlreadyCredited) {
			return nil, err
		}
		return nil, fmt.Errorf("record earnings: %w", err)
	}

	tx := domain.WalletTransaction{
		Reference:   trackingID,
		Type:        domain.WalletEarning,
		Amount:      riderEarnings,
		Description: "Delivery earnings for " + trackingID + " - " + parcel.ParcelName,
		CreatedAt:   time.Now().UTC(),
	}
	wallet, err := s.wallets.Credit(ctx, riderEmail, tx, riderEarnings)
	if err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	metrics.WalletCreditsTotal.Inc()
	s.logger.Info().Str("tracking_id", trackingID).Str("rider", riderEmail).Int64("amount", riderEarnings).Msg("earnings credited")
	return wallet, nil
}

// CashOut withdraws from the rider's available balance, within the platform
// limits.
func (s *PaymentService) CashOut(ctx context.Context, in ports.CashOutInput) (*domain.Wallet, error) {
	if in.Amount < domain.MinCashOutAmount {
		return nil, fmt.Errorf("%w: minimum cash-out amount is %d", domain.ErrInvalidCashOut, domain.MinCashOutAmount)
	}
	if in.Amount > domain.MaxCashOutAmount {
		return nil, fmt.Errorf("%w: maximum cash-out amount is %d", domain.ErrInvalidCashOut, domain.MaxCashOutAmount)
	}
	if !domain.ValidCashOutMethod(in.Method) {
		return nil, fmt.Errorf("%w: unknown method %q", domain.ErrInvalidCashOut, in.Method)
	}

	// No balance pre-check: the debit itself is conditional on the balance, so
	// a second withdrawal racing this one cannot overdraw.
	tx := domain.WalletTransaction{
		Reference:   "co_" + uuid.NewString()[:8],
		Type:        domain.WalletCashOut,
		Amount:      in.Amount,
		Description: "Cash-out to " + in.Method,
		Method:      in.Method,
		CreatedAt:   time.Now().UTC(),
	}
	updated, err := s.wallets.Debit(ctx, in.RiderEmail, tx, in.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, err
		}
		return nil, fmt.Errorf("debit wallet: %w", err)
	}

	metrics.CashOutsTotal.WithLabelValues(in.Method).Inc()
	s.logger.Info().Str("rider", in.RiderEmail).Int64("amount", in.Amount).Str("method", in.Method).Msg("cash-out requested")
	return updated, nil
}
