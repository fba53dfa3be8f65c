package ports

import (
	"context"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

// EventRepository persists courier delivery events to the audit collection.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.DeliveryEvent) error
}
