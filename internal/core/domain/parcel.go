package domain

import (
	"errors"
	"time"
)

// ParcelType classifies what is being shipped.
type ParcelType string

const (
	TypeDocument    ParcelType = "document"
	TypeNonDocument ParcelType = "non-document"
)

// ParcelStatus is the coarse, customer-facing lifecycle state of a parcel.
type ParcelStatus string

const (
	StatusProcessing     ParcelStatus = "Processing"
	StatusInTransit      ParcelStatus = "In Transit"
	StatusOutForDelivery ParcelStatus = "Out for Delivery"
	StatusDelivered      ParcelStatus = "Delivered"
	StatusCancelled      ParcelStatus = "Cancelled"
)

// DeliveryStatus is the finer-grained courier-handoff axis. It is tracked
// independently of ParcelStatus: a parcel can be Paid and Processing while
// the courier side is still Not Dispatched.
type DeliveryStatus string

const (
	DeliveryNotDispatched  DeliveryStatus = "Not Dispatched"
	DeliveryRiderAssigned  DeliveryStatus = "rider_assigned"
	DeliveryInTransit      DeliveryStatus = "in_transit"
	DeliveryOutForDelivery DeliveryStatus = "out_for_delivery"
	DeliveryDelivered      DeliveryStatus = "delivered"
)

// validParcelTransitions defines the allowed coarse state machine.
var validParcelTransitions = map[ParcelStatus][]ParcelStatus{
	StatusProcessing:     {StatusInTransit, StatusCancelled},
	StatusInTransit:      {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery: {StatusDelivered},
}

// validDeliveryTransitions defines the allowed courier-handoff state machine.
var validDeliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryNotDispatched:  {DeliveryRiderAssigned},
	DeliveryRiderAssigned:  {DeliveryInTransit},
	DeliveryInTransit:      {DeliveryOutForDelivery, DeliveryDelivered},
	DeliveryOutForDelivery: {DeliveryDelivered},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrParcelNotFound = errors.New("parcel not found")
var ErrDuplicateTrackingID = errors.New("tracking id already exists")
var ErrForbidden = errors.New("access forbidden")
var ErrParcelNotDeletable = errors.New("paid parcels cannot be deleted")
var ErrInvalidBooking = errors.New("invalid booking")

// CanTransitionTo reports whether a transition from the current parcel status
// to next is valid.
func (s ParcelStatus) CanTransitionTo(next ParcelStatus) bool {
	for _, allowed := range validParcelTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether a transition from the current delivery
// status to next is valid.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, allowed := range validDeliveryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParcelStatusFor maps a delivery status to the coarse parcel status it
// implies, so rider updates cascade to the customer-facing axis.
func ParcelStatusFor(ds DeliveryStatus) (ParcelStatus, bool) {
	switch ds {
	case DeliveryInTransit:
		return StatusInTransit, true
	case DeliveryOutForDelivery:
		return StatusOutForDelivery, true
	case DeliveryDelivered:
		return StatusDelivered, true
	}
	return "", false
}

// Party is one end of a parcel route (sender or receiver).
type Party struct {
	Name        string `json:"name" bson:"name"`
	Contact     string `json:"contact" bson:"contact"`
	Region      string `json:"region" bson:"region"`
	District    string `json:"district" bson:"district"`
	Warehouse   string `json:"warehouse" bson:"warehouse"`
	Address     string `json:"address" bson:"address"`
	Instruction string `json:"instruction,omitempty" bson:"instruction,omitempty"`
}

// HistoryEntry records a single event on a parcel's append-only timeline.
type HistoryEntry struct {
	Status    string    `json:"status" bson:"status"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Actor     string    `json:"actor" bson:"actor"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Earnings records the rider payout split for a delivered parcel.
type Earnings struct {
	RiderEarnings     int64 `json:"rider_earnings" bson:"rider_earnings"`
	CompanyCommission int64 `json:"company_commission" bson:"company_commission"`
	AddedToWallet     bool  `json:"added_to_wallet" bson:"added_to_wallet"`
}

// Parcel is the core aggregate root.
type Parcel struct {
	ID                 string         `json:"id" bson:"_id,omitempty"`
	TrackingID         string         `json:"tracking_id" bson:"tracking_id"`
	ParcelName         string         `json:"parcel_name" bson:"parcel_name"`
	Type               ParcelType     `json:"parcel_type" bson:"parcel_type"`
	WeightKg           float64        `json:"weight_kg" bson:"weight_kg"`
	Sender             Party          `json:"sender" bson:"sender"`
	Receiver           Party          `json:"receiver" bson:"receiver"`
	Cost               CostBreakdown  `json:"cost" bson:"cost"`
	DeliveryCost       int64          `json:"delivery_cost" bson:"delivery_cost"`
	PaymentMethod      string         `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	PaymentStatus      PaymentStatus  `json:"payment_status" bson:"payment_status"`
	ParcelStatus       ParcelStatus   `json:"parcel_status" bson:"parcel_status"`
	DeliveryStatus     DeliveryStatus `json:"delivery_status" bson:"delivery_status"`
	AssignedRiderID    string         `json:"assigned_rider_id,omitempty" bson:"assigned_rider_id,omitempty"`
	AssignedRiderEmail string         `json:"assigned_rider_email,omitempty" bson:"assigned_rider_email,omitempty"`
	CreatedBy          string         `json:"created_by" bson:"created_by"`
	CreatedAt          time.Time      `json:"created_at" bson:"created_at"`
	ExpectedDelivery   time.Time      `json:"expected_delivery" bson:"expected_delivery"`
	DeliveredAt        *time.Time     `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	IdempotencyKey     string         `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	Earnings           *Earnings      `json:"earnings,omitempty" bson:"earnings,omitempty"`
	History            []HistoryEntry `json:"history" bson:"history"`
}
