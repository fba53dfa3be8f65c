package domain

import "time"

// Coordinates represents a geographic point reported by a courier device.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// DeliveryEvent is a courier-handoff status update received from a rider
// device or external source.
type DeliveryEvent struct {
	TrackingID string
	Status     DeliveryStatus
	Timestamp  time.Time
	Source     string
	Actor      string
	Location   *Coordinates // optional
}
