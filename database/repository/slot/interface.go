// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors surfaced to the scheduler service, which maps them to
// the transport-facing taxonomy.
var (
	// ErrNotFound is returned when no slot matches the given id.
	ErrNotFound = errors.New("slot not found")
	// ErrConflict is returned when an interval collides with an occupied
	// slot or violates the mandatory gap.
	ErrConflict = errors.New("slot interval conflicts with an occupied slot")
	// ErrWrongStatus is returned when a conditional transition loses the
	// race or the slot is not in the required source status.
	ErrWrongStatus = errors.New("slot is not in the required status")
)

// SlotRepository is the persistence contract for studio time slots. All
// status transitions are conditional single-document updates so that
// racing writers serialize on the document itself.
type SlotRepository interface {
	CreateIfNoConflict(ctx context.Context, slot *models.Slot) error
	GetByID(ctx context.Context, id string) (*models.Slot, error)
	FindExactAvailable(ctx context.Context, studioID string, start, end time.Time) (*models.Slot, error)
	ListByStudio(ctx context.Context, studioID string, from, to time.Time, statuses []models.SlotStatus) ([]models.Slot, error)
	CountConflicts(ctx context.Context, studioID string, start, end time.Time, excludeID string) (int64, error)
	NextOccupiedAfter(ctx context.Context, studioID string, after time.Time) (*models.Slot, error)
	Reserve(ctx context.Context, slotID, bookingID string) (*models.Slot, error)
	Release(ctx context.Context, slotID string) (*models.Slot, error)
	Begin(ctx context.Context, slotID string) (*models.Slot, error)
	Complete(ctx context.Context, slotID string) (*models.Slot, error)
	ExtendIfNoConflict(ctx context.Context, slotID string, newEnd time.Time) (*models.Slot, error)
	Delete(ctx context.Context, id string) error
}

// MongoSlotRepo implements SlotRepository using MongoDB.
type MongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo creates a new instance of SlotRepository using MongoDB.
func NewMongoSlotRepo() SlotRepository {
	coll := database.DB().Collection("slots")
	repo := &MongoSlotRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create slot indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
