package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

const collectionParcels = "parcels"

type ParcelRepository struct {
	col *mongo.Collection
}

func NewParcelRepository(db *mongo.Database) *ParcelRepository {
	return &ParcelRepository{col: db.Collection(collectionParcels)}
}

// Create inserts a new parcel document. A collision on the unique tracking_id
// index surfaces as ErrDuplicateTrackingID so the service can regenerate.
func (r *ParcelRepository) Create(ctx context.Context, p *domain.Parcel) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTrackingID
		}
		return err
	}
	return nil
}

// FindByTrackingID retrieves a parcel by tracking id. When createdBy is
// non-empty, an additional owner filter is applied.
func (r *ParcelRepository) FindByTrackingID(ctx context.Context, trackingID, createdBy string) (*domain.Parcel, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"tracking_id": trackingID}
	if createdBy != "" {
		filter["created_by"] = createdBy
	}

	var p domain.Parcel
	err := r.col.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrParcelNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIdempotencyKey retrieves an existing parcel booked by createdBy with
// the given key. The owner is part of the filter so replaying a foreign key
// misses.
func (r *ParcelRepository) FindByIdempotencyKey(ctx context.Context, key, createdBy string) (*domain.Parcel, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"idempotency_key": key,
		"created_by":      createdBy,
	}

	var p domain.Parcel
	err := r.col.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrParcelNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns a page of parcels matching filter, oldest first, plus the total
// match count.
func (r *ParcelRepository) List(ctx context.Context, f ports.ListParcelsFilter) ([]*domain.Parcel, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.CreatedBy != "" {
		filter["created_by"] = f.CreatedBy
	}
	if f.RiderEmail != "" {
		filter["assigned_rider_email"] = f.RiderEmail
	}
	if f.ParcelStatus != "" {
		filter["parcel_status"] = f.ParcelStatus
	}
	if f.PaymentStatus != "" {
		filter["payment_status"] = f.PaymentStatus
	}
	if f.DeliveryStatus != "" {
		filter["delivery_status"] = f.DeliveryStatus
	} else if len(f.DeliveryStatusIn) > 0 {
		filter["delivery_status"] = bson.M{"$in": f.DeliveryStatusIn}
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: f.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"tracking_id": pattern},
			bson.M{"parcel_name": pattern},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64((page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var parcels []*domain.Parcel
	if err := cursor.All(ctx, &parcels); err != nil {
		return nil, 0, err
	}
	return parcels, total, nil
}

// Delete removes a parcel owned by createdBy.
func (r *ParcelRepository) Delete(ctx context.Context, trackingID, createdBy string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"tracking_id": trackingID}
	if createdBy != "" {
		filter["created_by"] = createdBy
	}

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrParcelNotFound
	}
	return nil
}

// AssignRider sets the assigned rider and flips the delivery status in one
// update, appending a history entry.
func (r *ParcelRepository) AssignRider(ctx context.Context, trackingID, riderID, riderEmail string, entry domain.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"assigned_rider_id":    riderID,
			"assigned_rider_email": riderEmail,
			"delivery_status":      string(domain.DeliveryRiderAssigned),
		},
		"$push": bson.M{"history": entry},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"tracking_id": trackingID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrParcelNotFound
	}
	return nil
}

// UpdateDeliveryStatus atomically sets both status axes and appends a history
// entry. deliveredAt is written only when non-nil.
func (r *ParcelRepository) UpdateDeliveryStatus(ctx context.Context, trackingID string, ds domain.DeliveryStatus, ps domain.ParcelStatus, deliveredAt *time.Time, entry domain.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"delivery_status": string(ds),
		"parcel_status":   string(ps),
	}
	if deliveredAt != nil {
		set["delivered_at"] = deliveredAt.UTC()
	}

	update := bson.M{
		"$set":  set,
		"$push": bson.M{"history": entry},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"tracking_id": trackingID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrParcelNotFound
	}
	return nil
}

// MarkPaid flips the payment status Pending -> Paid and records the method.
// The Pending condition is part of the filter, so of two concurrent
// confirmations only one can flip; the loser sees ErrParcelAlreadyPaid.
func (r *ParcelRepository) MarkPaid(ctx context.Context, trackingID, paymentMethod string, entry domain.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"tracking_id":    trackingID,
		"payment_status": string(domain.PaymentPending),
	}
	update := bson.M{
		"$set": bson.M{
			"payment_status": string(domain.PaymentPaid),
			"payment_method": paymentMethod,
		},
		"$push": bson.M{"history": entry},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.conflictFor(ctx, trackingID, domain.ErrParcelAlreadyPaid)
	}
	return nil
}

// SetEarnings records the payout split and the wallet-credit flag. The filter
// matches only while the earnings have not been credited, so concurrent
// credit attempts cannot both pass; the loser sees
// ErrEarningsAlreadyCredited.
func (r *ParcelRepository) SetEarnings(ctx context.Context, trackingID string, earnings domain.Earnings) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"tracking_id":              trackingID,
		"earnings.added_to_wallet": bson.M{"$ne": true},
	}
	res, err := r.col.UpdateOne(ctx, filter,
		bson.M{"$set": bson.M{"earnings": earnings}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.conflictFor(ctx, trackingID, domain.ErrEarningsAlreadyCredited)
	}
	return nil
}

// conflictFor disambiguates a zero-match conditional update: a missing parcel
// is ErrParcelNotFound, an existing one lost the condition.
func (r *ParcelRepository) conflictFor(ctx context.Context, trackingID string, conflict error) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"tracking_id": trackingID})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrParcelNotFound
	}
	return conflict
}

// EnsureIndexes creates the indexes the parcels collection relies on. The
// unique tracking_id index backs the collision-retry loop in the service.
func (r *ParcelRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tracking_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_rider_email", Value: 1}}},
		{Keys: bson.D{{Key: "idempotency_key", Value: 1}, {Key: "created_by", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
