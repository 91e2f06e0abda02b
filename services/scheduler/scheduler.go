// File: services/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/slot"
	studioRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/studio"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// createAttempts bounds the transparent retries of the conflict-checked
	// insert. Genuine overlaps are not retried; only transient transaction
	// aborts are.
	createAttempts = 3
	createDelay    = 40 * time.Millisecond
	createJitter   = 60 * time.Millisecond

	// openEndedHeadroom caps the reported extension room when no occupied
	// slot follows at all.
	openEndedHeadroom = 24 * time.Hour
)

func (s *DefaultService) CreateSlot(ctx context.Context, studioID string, start, end time.Time) (*models.Slot, error) {
	start, end = start.UTC(), end.UTC()
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	if err := s.requireActiveStudio(ctx, studioID); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	slot := &models.Slot{
		ID:        uuid.New().String(),
		StudioID:  studioID,
		StartTime: start,
		EndTime:   end,
		Status:    models.SlotAvailable,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := retry.Do(
		func() error { return s.Slots.CreateIfNoConflict(ctx, slot) },
		retry.Attempts(createAttempts),
		retry.Delay(createDelay),
		retry.MaxJitter(createJitter),
		retry.RetryIf(func(err error) bool {
			// An overlap will not resolve itself; only transient storage
			// failures (aborted transactions, network blips) are retried.
			return !errors.Is(err, slotRepo.ErrConflict)
		}),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		if errors.Is(err, slotRepo.ErrConflict) {
			return nil, ErrSlotOverlap
		}
		return nil, fmt.Errorf("create slot for studio %s: %w", studioID, err)
	}

	utils.GetLogger().Info("slot created",
		zap.String("slotId", slot.ID),
		zap.String("studioId", studioID),
		zap.Time("start", start),
		zap.Time("end", end),
	)
	return slot, nil
}

func (s *DefaultService) FindOrCreateAvailable(ctx context.Context, studioID string, start, end time.Time) (*models.Slot, error) {
	start, end = start.UTC(), end.UTC()
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	slot, err := s.Slots.FindExactAvailable(ctx, studioID, start, end)
	if err == nil {
		return slot, nil
	}
	if !errors.Is(err, slotRepo.ErrNotFound) {
		return nil, fmt.Errorf("find available slot: %w", err)
	}
	return s.CreateSlot(ctx, studioID, start, end)
}

func (s *DefaultService) GetSlot(ctx context.Context, slotID string) (*models.Slot, error) {
	slot, err := s.Slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot %s: %w", slotID, err)
	}
	return slot, nil
}

func (s *DefaultService) List(ctx context.Context, studioID string, from, to time.Time, statuses []models.SlotStatus) ([]models.Slot, error) {
	if !to.After(from) {
		return nil, utils.NewError(utils.KindValidation, "INVALID_SLOT_RANGE", "listing window must end after it starts")
	}
	slots, err := s.Slots.ListByStudio(ctx, studioID, from.UTC(), to.UTC(), statuses)
	if err != nil {
		return nil, fmt.Errorf("list slots for studio %s: %w", studioID, err)
	}
	return slots, nil
}

func (s *DefaultService) Reserve(ctx context.Context, slotID, bookingID string) (*models.Slot, error) {
	slot, err := s.Slots.Reserve(ctx, slotID, bookingID)
	if err != nil {
		return nil, s.mapTransitionErr(err, slotID)
	}
	return slot, nil
}

func (s *DefaultService) Release(ctx context.Context, slotID string) (*models.Slot, error) {
	slot, err := s.Slots.Release(ctx, slotID)
	if err == nil {
		return slot, nil
	}
	if errors.Is(err, slotRepo.ErrWrongStatus) {
		// Compensations may release twice; an already-open slot is fine.
		current, getErr := s.Slots.GetByID(ctx, slotID)
		if getErr == nil && current.Status == models.SlotAvailable {
			return current, nil
		}
	}
	return nil, s.mapTransitionErr(err, slotID)
}

func (s *DefaultService) Begin(ctx context.Context, slotID string) (*models.Slot, error) {
	slot, err := s.Slots.Begin(ctx, slotID)
	if err != nil {
		return nil, s.mapTransitionErr(err, slotID)
	}
	return slot, nil
}

func (s *DefaultService) Complete(ctx context.Context, slotID string) (*models.Slot, error) {
	slot, err := s.Slots.Complete(ctx, slotID)
	if err != nil {
		return nil, s.mapTransitionErr(err, slotID)
	}
	return slot, nil
}

func (s *DefaultService) Extend(ctx context.Context, slotID string, newEnd time.Time) (*models.Slot, error) {
	newEnd = newEnd.UTC()
	slot, err := s.Slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, s.mapTransitionErr(err, slotID)
	}
	if !newEnd.After(slot.EndTime) {
		return nil, utils.NewError(utils.KindValidation, "INVALID_SLOT_RANGE", "new end time must be after the current end time")
	}

	extended, err := s.Slots.ExtendIfNoConflict(ctx, slotID, newEnd)
	if err != nil {
		if errors.Is(err, slotRepo.ErrConflict) {
			return nil, ErrExtensionConflict
		}
		return nil, s.mapTransitionErr(err, slotID)
	}

	utils.GetLogger().Info("slot extended",
		zap.String("slotId", slotID),
		zap.Time("newEnd", newEnd),
	)
	return extended, nil
}

func (s *DefaultService) Trim(ctx context.Context, slotID string, newEnd time.Time) (*models.Slot, error) {
	newEnd = newEnd.UTC()
	slot, err := s.Slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, s.mapTransitionErr(err, slotID)
	}
	if !newEnd.Before(slot.EndTime) || newEnd.Sub(slot.StartTime) < models.MinSlotDuration {
		return nil, utils.NewError(utils.KindValidation, "INVALID_SLOT_RANGE", "trimmed end must shorten the slot and keep the minimum duration")
	}

	// Shrinking cannot introduce conflicts, so the same guarded update is safe.
	trimmed, err := s.Slots.ExtendIfNoConflict(ctx, slotID, newEnd)
	if err != nil {
		return nil, s.mapTransitionErr(err, slotID)
	}
	return trimmed, nil
}

func (s *DefaultService) ExtensionHeadroom(ctx context.Context, slotID string) (*Headroom, error) {
	slot, err := s.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !slot.Status.Occupies() {
		return &Headroom{Reason: "slot is not active"}, nil
	}

	next, err := s.Slots.NextOccupiedAfter(ctx, slot.StudioID, slot.EndTime)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotFound) {
			// Nothing scheduled after this slot; cap the answer at a day.
			maxEnd := slot.EndTime.Add(openEndedHeadroom)
			return &Headroom{
				CanExtend:        true,
				AvailableMinutes: int(openEndedHeadroom.Minutes()),
				MaxEndTime:       &maxEnd,
			}, nil
		}
		return nil, fmt.Errorf("find next occupied slot: %w", err)
	}

	room := next.StartTime.Sub(slot.EndTime) - models.SlotGap
	if room <= 0 {
		return &Headroom{Reason: "next booking follows immediately"}, nil
	}
	maxEnd := slot.EndTime.Add(room)
	return &Headroom{
		CanExtend:        true,
		AvailableMinutes: int(room.Minutes()),
		MaxEndTime:       &maxEnd,
	}, nil
}

func (s *DefaultService) requireActiveStudio(ctx context.Context, studioID string) error {
	studio, err := s.Studios.GetByID(ctx, studioID)
	if err != nil {
		if errors.Is(err, studioRepo.ErrNotFound) {
			return ErrStudioNotFound
		}
		return fmt.Errorf("get studio %s: %w", studioID, err)
	}
	if !studio.IsActive() {
		return ErrStudioUnavailable
	}
	return nil
}

func (s *DefaultService) mapTransitionErr(err error, slotID string) error {
	switch {
	case errors.Is(err, slotRepo.ErrNotFound):
		return ErrSlotNotFound
	case errors.Is(err, slotRepo.ErrWrongStatus):
		return ErrSlotUnavailable
	default:
		return fmt.Errorf("slot %s: %w", slotID, err)
	}
}

func validateRange(start, end time.Time) error {
	if !end.After(start) || end.Sub(start) < models.MinSlotDuration {
		return ErrInvalidRange
	}
	return nil
}
