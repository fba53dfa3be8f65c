package domain

import (
	"errors"
	"time"
)

// PaymentStatus tracks whether a parcel has been paid for. The only legal
// transition is Pending -> Paid, performed by the payment-confirmation flow.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// Cash-out limits, in whole BDT.
const (
	MinCashOutAmount = 500
	MaxCashOutAmount = 50000
)

// Rider payout split: 75% base commission plus a 10% completion bonus of the
// delivery cost; the remainder is company commission.
const (
	RiderBaseCommissionPct = 0.75
	RiderBonusPct          = 0.10
)

var ErrPaymentNotFound = errors.New("payment not found")
var ErrParcelAlreadyPaid = errors.New("parcel already paid")
var ErrDuplicateTransaction = errors.New("transaction already recorded")
var ErrWalletNotFound = errors.New("wallet not found")
var ErrInsufficientBalance = errors.New("insufficient wallet balance")
var ErrInvalidCashOut = errors.New("invalid cash-out request")
var ErrEarningsAlreadyCredited = errors.New("earnings already added to wallet")

// PaymentIntent is the first half of the two-step payment handshake.
type PaymentIntent struct {
	ID            string    `json:"id" bson:"intent_id"`
	ClientSecret  string    `json:"client_secret" bson:"client_secret"`
	TrackingID    string    `json:"tracking_id" bson:"tracking_id"`
	AmountInCents int64     `json:"amount_in_cents" bson:"amount_in_cents"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Payment is a recorded processor confirmation for one parcel.
type Payment struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	TrackingID    string    `json:"tracking_id" bson:"tracking_id"`
	Email         string    `json:"email" bson:"email"`
	Amount        int64     `json:"amount" bson:"amount"`
	TransactionID string    `json:"transaction_id" bson:"transaction_id"`
	PaymentMethod string    `json:"payment_method" bson:"payment_method"`
	PaidAt        time.Time `json:"paid_at" bson:"paid_at"`
}

// WalletTransactionType distinguishes credits from withdrawals.
type WalletTransactionType string

const (
	WalletEarning WalletTransactionType = "earning"
	WalletCashOut WalletTransactionType = "cash_out"
)

// WalletTransaction is one entry in a rider's wallet ledger.
type WalletTransaction struct {
	Reference   string                `json:"reference" bson:"reference"`
	Type        WalletTransactionType `json:"type" bson:"type"`
	Amount      int64                 `json:"amount" bson:"amount"`
	Description string                `json:"description" bson:"description"`
	Method      string                `json:"method,omitempty" bson:"method,omitempty"`
	CreatedAt   time.Time             `json:"created_at" bson:"created_at"`
}

// Wallet is a rider's earnings ledger.
type Wallet struct {
	RiderEmail       string              `json:"rider_email" bson:"rider_email"`
	AvailableBalance int64               `json:"available_balance" bson:"available_balance"`
	TotalEarnings    int64               `json:"total_earnings" bson:"total_earnings"`
	TotalCashedOut   int64               `json:"total_cashed_out" bson:"total_cashed_out"`
	Transactions     []WalletTransaction `json:"transactions" bson:"transactions"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

// ValidCashOutMethod reports whether method is an accepted payout channel.
func ValidCashOutMethod(method string) bool {
	switch method {
	case "bkash", "nagad", "rocket", "bank":
		return true
	}
	return false
}

// SplitEarnings computes the rider payout for a delivered parcel from its
// delivery cost. Amounts are rounded down to whole currency units.
func SplitEarnings(deliveryCost int64) (riderEarnings, companyCommission int64) {
	base := float64(deliveryCost) * RiderBaseCommissionPct
	bonus := float64(deliveryCost) * RiderBonusPct
	riderEarnings = int64(base + bonus)
	companyCommission = deliveryCost - riderEarnings
	return riderEarnings, companyCommission
}
