package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

const collectionDeliveryEvents = "delivery_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{col: db.Collection(collectionDeliveryEvents)}
}

// InsertEvent persists a courier event to the delivery_events audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.DeliveryEvent) error {
	doc := bson.M{
		"tracking_id":  event.TrackingID,
		"status":       string(event.Status),
		"timestamp":    event.Timestamp.UTC(),
		"source":       event.Source,
		"actor":        event.Actor,
		"processed_at": time.Now().UTC(),
	}
	if event.Location != nil {
		doc["location"] = bson.M{
			"lat": event.Location.Lat,
			"lng": event.Location.Lng,
		}
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
