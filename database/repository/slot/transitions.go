// File: database/repository/slot/transitions.go
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

// transition performs a conditional status flip and returns the updated
// slot. MatchedCount zero means the caller lost the race or named a
// missing slot; the two cases are told apart with a follow-up read.
func (r *MongoSlotRepo) transition(ctx context.Context, slotID string, from []models.SlotStatus, update bson.M) (*models.Slot, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "status": bson.M{"$in": from}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var slot models.Slot
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := r.GetByID(ctx, slotID); errors.Is(getErr, ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, ErrWrongStatus
		}
		return nil, fmt.Errorf("slot transition failed: %w", err)
	}
	return &slot, nil
}

// Reserve atomically flips available → booked and stamps the booking
// reference. First committer wins; everyone else gets ErrWrongStatus.
func (r *MongoSlotRepo) Reserve(ctx context.Context, slotID, bookingID string) (*models.Slot, error) {
	update := bson.M{
		"$set": bson.M{
			"status":    models.SlotBooked,
			"bookingId": bookingID,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.transition(ctx, slotID, []models.SlotStatus{models.SlotAvailable}, update)
}

// Release returns a held or booked slot to the pool and clears its
// booking reference.
func (r *MongoSlotRepo) Release(ctx context.Context, slotID string) (*models.Slot, error) {
	update := bson.M{
		"$set": bson.M{
			"status":    models.SlotAvailable,
			"updatedAt": time.Now().UTC(),
		},
		"$unset": bson.M{"bookingId": ""},
		"$inc":   bson.M{"version": 1},
	}
	return r.transition(ctx, slotID, []models.SlotStatus{models.SlotHeld, models.SlotBooked}, update)
}

// Begin flips booked → ongoing on check-in.
func (r *MongoSlotRepo) Begin(ctx context.Context, slotID string) (*models.Slot, error) {
	update := bson.M{
		"$set": bson.M{
			"status":    models.SlotOngoing,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.transition(ctx, slotID, []models.SlotStatus{models.SlotBooked}, update)
}

// Complete flips ongoing → completed on check-out. The booking reference
// stays on the document for audit.
func (r *MongoSlotRepo) Complete(ctx context.Context, slotID string) (*models.Slot, error) {
	update := bson.M{
		"$set": bson.M{
			"status":    models.SlotCompleted,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.transition(ctx, slotID, []models.SlotStatus{models.SlotOngoing}, update)
}
