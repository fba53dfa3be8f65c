package ports

import (
	"context"
	"time"
)

// LocationInput carries optional geographic coordinates for a delivery event.
type LocationInput struct {
	Lat float64
	Lng float64
}

// DeliveryEventInput is the DTO passed from the transport layer to
// EventService.
type DeliveryEventInput struct {
	TrackingID string
	Status     string
	Timestamp  time.Time
	Source     string
	Actor      string
	Location   *LocationInput // optional
}

// EventService processes incoming courier delivery events.
type EventService interface {
	Process(ctx context.Context, event DeliveryEventInput) error
}
