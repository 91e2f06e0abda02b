// File: database/repository/slot/crud.go
package slotRepo

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

// GetByID retrieves a slot by its unique ID.
func (r *MongoSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch slot with id %s: %w", id, err)
	}
	return &slot, nil
}

// FindExactAvailable returns the available slot matching the exact
// interval, or ErrNotFound.
func (r *MongoSlotRepo) FindExactAvailable(ctx context.Context, studioID string, start, end time.Time) (*models.Slot, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"studioId":  studioID,
		"startTime": start,
		"endTime":   end,
		"status":    models.SlotAvailable,
	}

	var slot models.Slot
	if err := r.coll.FindOne(ctx, filter).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch exact slot: %w", err)
	}
	return &slot, nil
}

// ListByStudio returns the studio's slots overlapping [from, to), oldest
// first, optionally filtered by status.
func (r *MongoSlotRepo) ListByStudio(ctx context.Context, studioID string, from, to time.Time, statuses []models.SlotStatus) ([]models.Slot, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"studioId":  studioID,
		"startTime": bson.M{"$lt": to},
		"endTime":   bson.M{"$gt": from},
	}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

// NextOccupiedAfter returns the earliest occupied slot of the studio
// starting at or after the given instant, or ErrNotFound.
func (r *MongoSlotRepo) NextOccupiedAfter(ctx context.Context, studioID string, after time.Time) (*models.Slot, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"studioId":  studioID,
		"status":    bson.M{"$in": models.OccupyingSlotStatuses},
		"startTime": bson.M{"$gte": after},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "startTime", Value: 1}})

	var slot models.Slot
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch next occupied slot: %w", err)
	}
	return &slot, nil
}

// Delete removes a slot document.
func (r *MongoSlotRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
