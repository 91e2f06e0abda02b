// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no booking matches the given id.
	ErrNotFound = errors.New("booking not found")
	// ErrVersionConflict is returned when an optimistic replace loses to a
	// concurrent writer. Callers reload and retry or surface a conflict.
	ErrVersionConflict = errors.New("booking was modified concurrently")
)

// ListQuery narrows and paginates booking listings.
type ListQuery struct {
	CustomerID string
	Status     models.BookingStatus
	Page       int
	Limit      int
}

// BookingRepository is the persistence contract for bookings. Lifecycle
// writers go through ReplaceWithVersion so each booking's transitions
// serialize on its version counter.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetBySlotID(ctx context.Context, slotID string) (*models.Booking, error)
	List(ctx context.Context, q ListQuery) ([]models.Booking, int64, error)
	ReplaceWithVersion(ctx context.Context, b *models.Booking) error
	ListConfirmedStartingBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.DB().Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
