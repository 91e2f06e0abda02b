package scheduler

import (
	"context"
	"time"

	slotRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/slot"
	studioRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/studio"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"
)

// Headroom describes how far a slot can be stretched before it would collide
// with the next occupied slot (including the mandatory gap).
type Headroom struct {
	CanExtend        bool       `json:"canExtend"`
	AvailableMinutes int        `json:"availableMinutes"`
	MaxEndTime       *time.Time `json:"maxEndTime,omitempty"`
	Reason           string     `json:"reason,omitempty"`
}

// Service owns the studio calendar: it creates slots under the overlap and
// gap rules and drives each slot's status transitions.
type Service interface {
	// CreateSlot creates an available slot, failing if the interval (padded
	// with the mandatory gap) collides with an occupied slot.
	CreateSlot(ctx context.Context, studioID string, start, end time.Time) (*models.Slot, error)
	// FindOrCreateAvailable returns the available slot exactly matching the
	// interval, creating it when none exists.
	FindOrCreateAvailable(ctx context.Context, studioID string, start, end time.Time) (*models.Slot, error)
	GetSlot(ctx context.Context, slotID string) (*models.Slot, error)
	List(ctx context.Context, studioID string, from, to time.Time, statuses []models.SlotStatus) ([]models.Slot, error)

	// Reserve flips an available slot to booked on behalf of a booking.
	// This is the serialization point between racing bookings.
	Reserve(ctx context.Context, slotID, bookingID string) (*models.Slot, error)
	// Release returns a held or booked slot to the open pool. Releasing a
	// slot that is already available is a no-op, so compensations can run
	// more than once.
	Release(ctx context.Context, slotID string) (*models.Slot, error)
	Begin(ctx context.Context, slotID string) (*models.Slot, error)
	Complete(ctx context.Context, slotID string) (*models.Slot, error)

	// Extend moves the slot's end forward, re-checking conflicts against
	// every other slot of the studio.
	Extend(ctx context.Context, slotID string, newEnd time.Time) (*models.Slot, error)
	// Trim moves the slot's end backward, e.g. to roll back an extension
	// whose booking update could not be committed.
	Trim(ctx context.Context, slotID string, newEnd time.Time) (*models.Slot, error)
	// ExtensionHeadroom reports how many whole minutes the slot can grow.
	ExtensionHeadroom(ctx context.Context, slotID string) (*Headroom, error)
}

// DefaultService is the production implementation backed by MongoDB.
type DefaultService struct {
	Slots   slotRepo.SlotRepository
	Studios studioRepo.StudioRepository
	Clock   utils.Clock
}

func NewDefaultService(slots slotRepo.SlotRepository, studios studioRepo.StudioRepository, clock utils.Clock) *DefaultService {
	if clock == nil {
		clock = utils.NewSystemClock()
	}
	return &DefaultService{Slots: slots, Studios: studios, Clock: clock}
}
