// File: database/repository/booking/crud.go
package bookingRepo

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

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("slot already carries a booking: %w", ErrVersionConflict)
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) GetBySlotID(ctx context.Context, slotID string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"slotId": slotID}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking for slot %s: %w", slotID, err)
	}
	return &b, nil
}

// List returns a page of bookings plus the total match count, newest first.
func (r *MongoBookingRepo) List(ctx context.Context, q ListQuery) ([]models.Booking, int64, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if q.CustomerID != "" {
		filter["customerId"] = q.CustomerID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, total, nil
}

// ReplaceWithVersion writes the whole document guarded by the version the
// caller read. The version is bumped on the way in; a miss means a
// concurrent writer got there first.
func (r *MongoBookingRepo) ReplaceWithVersion(ctx context.Context, b *models.Booking) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": b.ID, "version": b.Version}
	b.Version++
	b.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, filter, b)
	if err != nil {
		b.Version--
		return fmt.Errorf("failed to replace booking %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		b.Version--
		if _, getErr := r.GetByID(ctx, b.ID); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// ListConfirmedStartingBefore feeds the no-show scanner: confirmed
// bookings whose start has passed the cutoff.
func (r *MongoBookingRepo) ListConfirmedStartingBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	return r.listByStatusBefore(ctx, models.BookingConfirmed, "startTime", cutoff)
}

// ListPendingCreatedBefore feeds the stale-booking sweep: pending bookings
// old enough that their payment window has lapsed.
func (r *MongoBookingRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	return r.listByStatusBefore(ctx, models.BookingPending, "createdAt", cutoff)
}

func (r *MongoBookingRepo) listByStatusBefore(ctx context.Context, status models.BookingStatus, field string, cutoff time.Time) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status": status,
		field:    bson.M{"$lte": cutoff},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s bookings: %w", status, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode %s bookings: %w", status, err)
	}
	return bookings, nil
}
