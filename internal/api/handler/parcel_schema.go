package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type partyRequest struct {
	Name        string `json:"name"        validate:"required"`
	Contact     string `json:"contact"     validate:"required"`
	Region      string `json:"region"      validate:"required"`
	District    string `json:"district"    validate:"required"`
	Warehouse   string `json:"warehouse"   validate:"required"`
	Address     string `json:"address"     validate:"required"`
	Instruction string `json:"instruction"`
}

type quoteRequest struct {
	ParcelName     string  `json:"parcel_name"     validate:"required"`
	ParcelType     string  `json:"parcel_type"     validate:"required,oneof=document non-document"`
	WeightKg       float64 `json:"weight_kg"`
	SenderRegion   string  `json:"sender_region"   validate:"required"`
	ReceiverRegion string  `json:"receiver_region" validate:"required"`
}

type createParcelRequest struct {
	ParcelName string       `json:"parcel_name" validate:"required"`
	ParcelType string       `json:"parcel_type" validate:"required,oneof=document non-document"`
	WeightKg   float64      `json:"weight_kg"`
	Sender     partyRequest `json:"sender"      validate:"required"`
	Receiver   partyRequest `json:"receiver"    validate:"required"`
}

type assignRiderRequest struct {
	RiderID string `json:"rider_id" validate:"required"`
}

type updateDeliveryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_transit out_for_delivery delivered"`
}

// --- Response types ---
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

type quoteResponse struct {
	BaseCost     int64  `json:"base_cost"`
	ExtraCharges int64  `json:"extra_charges"`
	TotalCost    int64  `json:"total_cost"`
	Zone         string `json:"zone"`
}

type parcelLinks struct {
	Self  string `json:"self"`
	Track string `json:"track"`
}

type createParcelResponse struct {
	TrackingID       string      `json:"tracking_id"`
	ParcelStatus     string      `json:"parcel_status"`
	DeliveryStatus   string      `json:"delivery_status"`
	PaymentStatus    string      `json:"payment_status"`
	DeliveryCost     int64       `json:"delivery_cost"`
	Zone             string      `json:"zone"`
	CreatedAt        time.Time   `json:"created_at"`
	ExpectedDelivery time.Time   `json:"expected_delivery"`
	Links            parcelLinks `json:"_links"`
}

type partyResponse struct {
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Region      string `json:"region"`
	District    string `json:"district"`
	Warehouse   string `json:"warehouse"`
	Address     string `json:"address"`
	Instruction string `json:"instruction,omitempty"`
}

type costResponse struct {
	BaseCost     int64  `json:"base_cost"`
	ExtraCharges int64  `json:"extra_charges"`
	TotalCost    int64  `json:"total_cost"`
	Zone         string `json:"zone"`
}

type historyEntryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

type parcelDetailResponse struct {
	TrackingID         string                 `json:"tracking_id"`
	ParcelName         string                 `json:"parcel_name"`
	ParcelType         string                 `json:"parcel_type"`
	WeightKg           float64                `json:"weight_kg"`
	Sender             partyResponse          `json:"sender"`
	Receiver           partyResponse          `json:"receiver"`
	Cost               costResponse           `json:"cost"`
	DeliveryCost       int64                  `json:"delivery_cost"`
	PaymentMethod      string                 `json:"payment_method,omitempty"`
	PaymentStatus      string                 `json:"payment_status"`
	ParcelStatus       string                 `json:"parcel_status"`
	DeliveryStatus     string                 `json:"delivery_status"`
	AssignedRiderEmail string                 `json:"assigned_rider_email,omitempty"`
	CreatedBy          string                 `json:"created_by"`
	CreatedAt          time.Time              `json:"created_at"`
	ExpectedDelivery   time.Time              `json:"expected_delivery"`
	DeliveredAt        *time.Time             `json:"delivered_at,omitempty"`
	History            []historyEntryResponse `json:"history"`
	Links              parcelLinks            `json:"_links"`
}

// parcelSummaryResponse is the lightweight item used in list responses.
// It intentionally omits history to keep payloads small.
type parcelSummaryResponse struct {
	TrackingID       string      `json:"tracking_id"`
	ParcelName       string      `json:"parcel_name"`
	ParcelType       string      `json:"parcel_type"`
	ReceiverName     string      `json:"receiver_name"`
	ReceiverDistrict string      `json:"receiver_district"`
	DeliveryCost     int64       `json:"delivery_cost"`
	PaymentStatus    string      `json:"payment_status"`
	ParcelStatus     string      `json:"parcel_status"`
	DeliveryStatus   string      `json:"delivery_status"`
	CreatedAt        time.Time   `json:"created_at"`
	ExpectedDelivery time.Time   `json:"expected_delivery"`
	Links            parcelLinks `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listParcelsResponse struct {
	Data       []parcelSummaryResponse `json:"data"`
	Pagination paginationResponse      `json:"pagination"`
}

type trackParcelResponse struct {
	TrackingID       string                 `json:"tracking_id"`
	ParcelStatus     string                 `json:"parcel_status"`
	DeliveryStatus   string                 `json:"delivery_status"`
	ExpectedDelivery time.Time              `json:"expected_delivery"`
	History          []historyEntryResponse `json:"history"`
}
