// File: database/repository/payment/interface.go
package paymentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no payment matches the lookup.
	ErrNotFound = errors.New("payment not found")
	// ErrWrongStatus is returned when a conditional status flip does not
	// apply, which is how duplicate webhooks become no-ops.
	ErrWrongStatus = errors.New("payment is not in the required status")
	// ErrDuplicateTransaction is returned when an insert collides on the
	// unique transaction id; callers regenerate the order code and retry.
	ErrDuplicateTransaction = errors.New("transaction id already in use")
)

// PaymentRepository is the persistence contract for gateway payment
// sessions. Status flips are conditional so webhook processing is
// idempotent per transaction id.
type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	AttachCheckout(ctx context.Context, id, checkoutURL, qrCode string) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByTransactionID(ctx context.Context, txID int64) (*models.Payment, error)
	ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error)
	FindPendingByKind(ctx context.Context, bookingID string, kind models.PaymentKind) (*models.Payment, error)
	SumPaidByBooking(ctx context.Context, bookingID string) (int64, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (*models.Payment, error)
	MarkFailed(ctx context.Context, id string, failedAt time.Time) (*models.Payment, error)
	MarkCancelled(ctx context.Context, id string) (*models.Payment, error)
	MarkRefunded(ctx context.Context, id string, info models.RefundInfo) (*models.Payment, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepo creates a new instance of PaymentRepository using MongoDB.
func NewMongoPaymentRepo() PaymentRepository {
	coll := database.DB().Collection("payments")
	repo := &MongoPaymentRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create payment indexes: %v\n", err)
	}
	return repo
}

func (r *MongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// Webhooks address payments by the gateway orderCode.
		{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_transaction")},
		{Keys: bson.D{{Key: "bookingId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("booking_created_idx")},
		// Expiry sweeper query pattern.
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}, Options: options.Index().SetName("status_expires_idx")},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}
	return nil
}
