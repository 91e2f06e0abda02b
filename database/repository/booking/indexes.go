// File: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates the necessary indexes on the bookings collection.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// One booking per slot, enforced by the store itself.
		{
			Keys:    bson.D{{Key: "slotId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_slot"),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("customer_created_idx"),
		},
		// No-show scanner query pattern.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("status_start_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
