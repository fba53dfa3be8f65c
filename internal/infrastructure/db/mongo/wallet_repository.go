package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zapshift/parcel-system/internal/core/domain"
)

const collectionWallets = "wallets"

type WalletRepository struct {
	col *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) *WalletRepository {
	return &WalletRepository{col: db.Collection(collectionWallets)}
}

func (r *WalletRepository) Find(ctx context.Context, riderEmail string) (*domain.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var w domain.Wallet
	err := r.col.FindOne(ctx, bson.M{"rider_email": riderEmail}).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

// Credit appends an earning transaction and raises the balances in one atomic
// update, creating the wallet on first credit.
func (r *WalletRepository) Credit(ctx context.Context, riderEmail string, tx domain.WalletTransaction, amount int64) (*domain.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{
			"available_balance": amount,
			"total_earnings":    amount,
		},
		"$push": bson.M{"transactions": tx},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
		"$setOnInsert": bson.M{
			"rider_email": riderEmail,
		},
	}

	var w domain.Wallet
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"rider_email": riderEmail},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&w)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Debit appends a cash-out transaction and lowers the available balance. The
// balance guard lives in the filter, not in a prior read: the update matches
// only while available_balance still covers the amount, so two concurrent
// debits can never drive the balance negative. No upsert — a missing wallet
// has nothing to debit.
func (r *WalletRepository) Debit(ctx context.Context, riderEmail string, tx domain.WalletTransaction, amount int64) (*domain.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"rider_email":       riderEmail,
		"available_balance": bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{
			"available_balance": -amount,
			"total_cashed_out":  amount,
		},
		"$push": bson.M{"transactions": tx},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	var w domain.Wallet
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInsufficientBalance
		}
		return nil, err
	}
	return &w, nil
}

// EnsureIndexes creates the unique rider_email index so the upsert in Credit
// never races into two wallet documents.
func (r *WalletRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "rider_email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
