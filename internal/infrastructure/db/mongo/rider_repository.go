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

const collectionRiders = "riders"

type RiderRepository struct {
	col *mongo.Collection
}

func NewRiderRepository(db *mongo.Database) *RiderRepository {
	return &RiderRepository{col: db.Collection(collectionRiders)}
}

func (r *RiderRepository) Create(ctx context.Context, rider *domain.Rider) (*domain.Rider, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if rider.ID == "" {
		rider.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.col.InsertOne(ctx, rider)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRiderExists
		}
		return nil, err
	}
	return rider, nil
}

func (r *RiderRepository) FindByID(ctx context.Context, id string) (*domain.Rider, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rider domain.Rider
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRiderNotFound
		}
		return nil, err
	}
	return &rider, nil
}

func (r *RiderRepository) FindByEmail(ctx context.Context, email string) (*domain.Rider, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rider domain.Rider
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&rider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRiderNotFound
		}
		return nil, err
	}
	return &rider, nil
}

func (r *RiderRepository) List(ctx context.Context, f ports.ListRidersFilter) ([]*domain.Rider, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.District != "" {
		filter["district"] = f.District
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "applied_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var riders []*domain.Rider
	if err := cursor.All(ctx, &riders); err != nil {
		return nil, err
	}
	return riders, nil
}

func (r *RiderRepository) UpdateStatus(ctx context.Context, id string, status domain.RiderStatus, decidedAt time.Time) (*domain.Rider, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rider domain.Rider
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status), "decided_at": decidedAt.UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRiderNotFound
		}
		return nil, err
	}
	return &rider, nil
}

// EnsureIndexes creates the unique email index enforcing one application per
// applicant, plus the district index used for assignment candidate lookups.
func (r *RiderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "district", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
