// File: database/repository/payment/crud.go
package paymentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// AttachCheckout stores the hosted checkout handle once the gateway has
// issued it.
func (r *MongoPaymentRepo) AttachCheckout(ctx context.Context, id, checkoutURL, qrCode string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"checkoutUrl": checkoutURL,
		"qrCode":      qrCode,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to attach checkout to payment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Payment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment with id %s: %w", id, err)
	}
	return &p, nil
}

func (r *MongoPaymentRepo) GetByTransactionID(ctx context.Context, txID int64) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Payment
	if err := r.coll.FindOne(ctx, bson.M{"transactionId": txID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment for transaction %d: %w", txID, err)
	}
	return &p, nil
}

func (r *MongoPaymentRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"bookingId": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

// FindPendingByKind returns the newest pending payment of the given kind
// for session reuse, or ErrNotFound.
func (r *MongoPaymentRepo) FindPendingByKind(ctx context.Context, bookingID string, kind models.PaymentKind) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"bookingId": bookingID,
		"kind":      kind,
		"status":    models.PaymentPending,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var p models.Payment
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch pending payment: %w", err)
	}
	return &p, nil
}

// SumPaidByBooking aggregates the cumulative paid amount for a booking.
func (r *MongoPaymentRepo) SumPaidByBooking(ctx context.Context, bookingID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "bookingId", Value: bookingID},
			{Key: "status", Value: models.PaymentPaid},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum paid payments: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode paid sum: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// flip performs a conditional status transition and returns the updated
// payment. A miss on an existing payment reports ErrWrongStatus.
func (r *MongoPaymentRepo) flip(ctx context.Context, id string, from models.PaymentStatus, update bson.M) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Payment
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, ErrWrongStatus
		}
		return nil, fmt.Errorf("payment transition failed: %w", err)
	}
	return &p, nil
}

// MarkPaid flips pending → paid. Duplicate deliveries miss the filter and
// come back as ErrWrongStatus.
func (r *MongoPaymentRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{
		"status": models.PaymentPaid,
		"paidAt": paidAt,
	}}
	return r.flip(ctx, id, models.PaymentPending, update)
}

// MarkFailed flips pending → failed.
func (r *MongoPaymentRepo) MarkFailed(ctx context.Context, id string, failedAt time.Time) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{
		"status":   models.PaymentFailed,
		"failedAt": failedAt,
	}}
	return r.flip(ctx, id, models.PaymentPending, update)
}

// MarkCancelled flips pending → cancelled (abandoned sessions).
func (r *MongoPaymentRepo) MarkCancelled(ctx context.Context, id string) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{
		"status": models.PaymentCancelled,
	}}
	return r.flip(ctx, id, models.PaymentPending, update)
}

// MarkRefunded flips paid → refunded and records the refund details.
func (r *MongoPaymentRepo) MarkRefunded(ctx context.Context, id string, info models.RefundInfo) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{
		"status": models.PaymentRefunded,
		"refund": info,
	}}
	return r.flip(ctx, id, models.PaymentPaid, update)
}

// SweepExpired expires every pending payment whose session TTL has
// passed and reports how many were flipped.
func (r *MongoPaymentRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":    models.PaymentPending,
		"expiresAt": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{"status": models.PaymentExpired}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired payments: %w", err)
	}
	return res.ModifiedCount, nil
}
