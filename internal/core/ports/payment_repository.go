package ports

import (
	"context"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

// PaymentRepository defines persistence operations for recorded payments.
type PaymentRepository interface {
	Insert(ctx context.Context, p *domain.Payment) error
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	// ListByEmail returns the payment history for one customer, newest first.
	// Empty email lists everything (admin view).
	ListByEmail(ctx context.Context, email string) ([]*domain.Payment, error)
}

// WalletRepository defines persistence operations for rider wallets.
type WalletRepository interface {
	// Find returns the wallet for a rider, or ErrWalletNotFound.
	Find(ctx context.Context, riderEmail string) (*domain.Wallet, error)
	// Credit appends an earning transaction and raises the balances in one
	// atomic update, creating the wallet on first credit.
	Credit(ctx context.Context, riderEmail string, tx domain.WalletTransaction, amount int64) (*domain.Wallet, error)
	// Debit appends a cash-out transaction and lowers the available balance in
	// one atomic update. The update matches only while the available balance
	// covers amount; a missing wallet or an uncovered amount is
	// ErrInsufficientBalance, so concurrent debits can never overdraw.
	Debit(ctx context.Context, riderEmail string, tx domain.WalletTransaction, amount int64) (*domain.Wallet, error)
}
