package handler

import "time"

type locationRequest struct {
	Lat float64 `json:"lat" validate:"required"`
	Lng float64 `json:"lng" validate:"required"`
}

type deliveryEventRequest struct {
	TrackingID string           `json:"tracking_id" validate:"required"`
	Status     string           `json:"status"      validate:"required,oneof=in_transit out_for_delivery delivered"`
	Timestamp  time.Time        `json:"timestamp"   validate:"required"`
	Source     string           `json:"source"      validate:"required"`
	Location   *locationRequest `json:"location"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}
