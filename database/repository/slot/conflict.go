// File: database/repository/slot/conflict.go
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

// conflictFilter builds the overlap-plus-gap predicate. Another occupied
// slot conflicts when other.start < end+gap AND other.end > start-gap,
// with half-open interval semantics.
func conflictFilter(studioID string, start, end time.Time, excludeID string) bson.M {
	filter := bson.M{
		"studioId":  studioID,
		"status":    bson.M{"$in": models.OccupyingSlotStatuses},
		"startTime": bson.M{"$lt": end.Add(models.SlotGap)},
		"endTime":   bson.M{"$gt": start.Add(-models.SlotGap)},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

// CountConflicts counts occupied slots violating the overlap+gap
// predicate for the proposed interval.
func (r *MongoSlotRepo) CountConflicts(ctx context.Context, studioID string, start, end time.Time, excludeID string) (int64, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, conflictFilter(studioID, start, end, excludeID))
	if err != nil {
		return 0, fmt.Errorf("conflict count failed: %w", err)
	}
	return count, nil
}

// CreateIfNoConflict inserts the slot only when no occupied slot of the
// same studio violates the overlap+gap predicate. Check and insert run in
// one mongo transaction so concurrent creators serialize.
func (r *MongoSlotRepo) CreateIfNoConflict(ctx context.Context, slot *models.Slot) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		count, err := r.coll.CountDocuments(sc, conflictFilter(slot.StudioID, slot.StartTime, slot.EndTime, ""))
		if err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if count > 0 {
			return ErrConflict
		}
		if _, err := r.coll.InsertOne(sc, slot); err != nil {
			return fmt.Errorf("insert slot failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("slot create transaction failed: %w", err)
	}
	return nil
}

// ExtendIfNoConflict moves the slot's end forward after re-checking the
// overlap+gap predicate against the widened interval. The slot version
// guards against concurrent extensions.
func (r *MongoSlotRepo) ExtendIfNoConflict(ctx context.Context, slotID string, newEnd time.Time) (*models.Slot, error) {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var updated models.Slot

	txnFn := func(sc mongo.SessionContext) error {
		var current models.Slot
		if err := r.coll.FindOne(sc, bson.M{"id": slotID}).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to fetch slot: %w", err)
		}
		if !current.Status.Occupies() {
			return ErrWrongStatus
		}
		count, err := r.coll.CountDocuments(sc, conflictFilter(current.StudioID, current.StartTime, newEnd, current.ID))
		if err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if count > 0 {
			return ErrConflict
		}

		filter := bson.M{"id": slotID, "version": current.Version}
		update := bson.M{
			"$set": bson.M{"endTime": newEnd, "updatedAt": time.Now().UTC()},
			"$inc": bson.M{"version": 1},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := r.coll.FindOneAndUpdate(sc, filter, update, opts).Decode(&updated); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// Version moved under us; caller may retry.
				return ErrWrongStatus
			}
			return fmt.Errorf("failed to extend slot: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrWrongStatus) {
			return nil, err
		}
		return nil, fmt.Errorf("slot extend transaction failed: %w", err)
	}
	return &updated, nil
}
