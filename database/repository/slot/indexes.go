// File: database/repository/slot/indexes.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates the necessary indexes on the slots collection.
func (r *MongoSlotRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on slot ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Compound index for studio calendar scans
		{
			Keys:    bson.D{{Key: "studioId", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("studio_start_idx"),
		},
		// Compound index for conflict-predicate queries by status
		{
			Keys:    bson.D{{Key: "studioId", Value: 1}, {Key: "status", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("studio_status_start_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}
