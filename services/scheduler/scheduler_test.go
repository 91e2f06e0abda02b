package scheduler

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slotRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/slot"
	studioRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/studio"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"
)

// memSlotRepo mirrors the mongo repo's conflict predicate and conditional
// transitions over a plain map, so the service rules can be exercised
// without a database.
type memSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.Slot
}

func newMemSlotRepo() *memSlotRepo {
	return &memSlotRepo{slots: make(map[string]*models.Slot)}
}

func (m *memSlotRepo) conflicts(studioID string, start, end time.Time, excludeID string) int64 {
	var n int64
	for _, s := range m.slots {
		if s.StudioID != studioID || s.ID == excludeID || !s.Status.Occupies() {
			continue
		}
		if s.StartTime.Before(end.Add(models.SlotGap)) && s.EndTime.After(start.Add(-models.SlotGap)) {
			n++
		}
	}
	return n
}

func (m *memSlotRepo) CreateIfNoConflict(ctx context.Context, slot *models.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts(slot.StudioID, slot.StartTime, slot.EndTime, "") > 0 {
		return slotRepo.ErrConflict
	}
	cp := *slot
	m.slots[slot.ID] = &cp
	return nil
}

func (m *memSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, slotRepo.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSlotRepo) FindExactAvailable(ctx context.Context, studioID string, start, end time.Time) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.StudioID == studioID && s.Status == models.SlotAvailable && s.StartTime.Equal(start) && s.EndTime.Equal(end) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, slotRepo.ErrNotFound
}

func (m *memSlotRepo) ListByStudio(ctx context.Context, studioID string, from, to time.Time, statuses []models.SlotStatus) ([]models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Slot
	for _, s := range m.slots {
		if s.StudioID != studioID || !s.StartTime.Before(to) || !s.EndTime.After(from) {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, st := range statuses {
				if s.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *memSlotRepo) CountConflicts(ctx context.Context, studioID string, start, end time.Time, excludeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conflicts(studioID, start, end, excludeID), nil
}

func (m *memSlotRepo) NextOccupiedAfter(ctx context.Context, studioID string, after time.Time) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *models.Slot
	for _, s := range m.slots {
		if s.StudioID != studioID || !s.Status.Occupies() || s.StartTime.Before(after) {
			continue
		}
		if best == nil || s.StartTime.Before(best.StartTime) {
			best = s
		}
	}
	if best == nil {
		return nil, slotRepo.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *memSlotRepo) transition(id string, from []models.SlotStatus, mutate func(*models.Slot)) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, slotRepo.ErrNotFound
	}
	allowed := false
	for _, f := range from {
		if s.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, slotRepo.ErrWrongStatus
	}
	mutate(s)
	s.Version++
	cp := *s
	return &cp, nil
}

func (m *memSlotRepo) Reserve(ctx context.Context, slotID, bookingID string) (*models.Slot, error) {
	return m.transition(slotID, []models.SlotStatus{models.SlotAvailable}, func(s *models.Slot) {
		s.Status = models.SlotBooked
		s.BookingID = bookingID
	})
}

func (m *memSlotRepo) Release(ctx context.Context, slotID string) (*models.Slot, error) {
	return m.transition(slotID, []models.SlotStatus{models.SlotHeld, models.SlotBooked}, func(s *models.Slot) {
		s.Status = models.SlotAvailable
		s.BookingID = ""
	})
}

func (m *memSlotRepo) Begin(ctx context.Context, slotID string) (*models.Slot, error) {
	return m.transition(slotID, []models.SlotStatus{models.SlotBooked}, func(s *models.Slot) {
		s.Status = models.SlotOngoing
	})
}

func (m *memSlotRepo) Complete(ctx context.Context, slotID string) (*models.Slot, error) {
	return m.transition(slotID, []models.SlotStatus{models.SlotOngoing}, func(s *models.Slot) {
		s.Status = models.SlotCompleted
	})
}

func (m *memSlotRepo) ExtendIfNoConflict(ctx context.Context, slotID string, newEnd time.Time) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotID]
	if !ok {
		return nil, slotRepo.ErrNotFound
	}
	if !s.Status.Occupies() {
		return nil, slotRepo.ErrWrongStatus
	}
	if m.conflicts(s.StudioID, s.StartTime, newEnd, s.ID) > 0 {
		return nil, slotRepo.ErrConflict
	}
	s.EndTime = newEnd
	s.Version++
	cp := *s
	return &cp, nil
}

func (m *memSlotRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[id]; !ok {
		return slotRepo.ErrNotFound
	}
	delete(m.slots, id)
	return nil
}

type memStudioRepo struct {
	studios map[string]*models.Studio
}

func (m *memStudioRepo) Create(ctx context.Context, s *models.Studio) error {
	m.studios[s.ID] = s
	return nil
}

func (m *memStudioRepo) GetByID(ctx context.Context, id string) (*models.Studio, error) {
	s, ok := m.studios[id]
	if !ok {
		return nil, studioRepo.ErrNotFound
	}
	return s, nil
}

func (m *memStudioRepo) List(ctx context.Context) ([]models.Studio, error) {
	var out []models.Studio
	for _, s := range m.studios {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memStudioRepo) UpdateStatus(ctx context.Context, id string, status models.StudioStatus) error {
	s, ok := m.studios[id]
	if !ok {
		return studioRepo.ErrNotFound
	}
	s.Status = status
	return nil
}

var baseTime = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*DefaultService, *memSlotRepo) {
	t.Helper()
	slots := newMemSlotRepo()
	studios := &memStudioRepo{studios: map[string]*models.Studio{
		"studio-1": {ID: "studio-1", Name: "Studio A", Status: models.StudioActive, BasePricePerHour: 200_000},
		"studio-2": {ID: "studio-2", Name: "Studio B", Status: models.StudioMaintenance},
	}}
	svc := NewDefaultService(slots, studios, utils.FixedClock{Instant: baseTime})
	return svc, slots
}

func seedSlot(repo *memSlotRepo, id string, status models.SlotStatus, start, end time.Time) {
	repo.slots[id] = &models.Slot{
		ID: id, StudioID: "studio-1",
		StartTime: start, EndTime: end,
		Status: status, Version: 1,
	}
}

func TestCreateSlot_RejectsBadRanges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, "studio-1", baseTime, baseTime.Add(45*time.Minute))
	assert.ErrorIs(t, err, ErrInvalidRange, "sub-hour slots must be rejected")

	_, err = svc.CreateSlot(ctx, "studio-1", baseTime, baseTime)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.CreateSlot(ctx, "studio-1", baseTime.Add(time.Hour), baseTime)
	assert.ErrorIs(t, err, ErrInvalidRange, "end before start must be rejected")
}

func TestCreateSlot_RejectsInactiveStudio(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateSlot(context.Background(), "studio-2", baseTime, baseTime.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrStudioUnavailable)

	_, err = svc.CreateSlot(context.Background(), "nope", baseTime, baseTime.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrStudioNotFound)
}

func TestCreateSlot_GapRule(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	// Occupied 10:00-12:00.
	seedSlot(repo, "busy", models.SlotBooked, baseTime.Add(2*time.Hour), baseTime.Add(4*time.Hour))

	tests := []struct {
		name    string
		start   time.Duration // offset from baseTime
		end     time.Duration
		wantErr bool
	}{
		{"direct overlap", 3 * time.Hour, 5 * time.Hour, true},
		{"back to back violates the gap", 4 * time.Hour, 5 * time.Hour, true},
		{"15 minutes after still violates the gap", 4*time.Hour + 15*time.Minute, 6 * time.Hour, true},
		{"exactly 30 minutes after is fine", 4*time.Hour + 30*time.Minute, 6 * time.Hour, false},
		{"ends exactly 30 minutes before is fine", 30 * time.Minute, 90 * time.Minute, false},
		{"ends 20 minutes before violates the gap", 0, 100 * time.Minute, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSlot(ctx, "studio-1", baseTime.Add(tc.start), baseTime.Add(tc.end))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrSlotOverlap)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateSlot_IgnoresReleasedSlots(t *testing.T) {
	svc, repo := newTestService(t)

	// Cancelled and completed slots do not block new ones.
	seedSlot(repo, "done", models.SlotCompleted, baseTime, baseTime.Add(2*time.Hour))
	seedSlot(repo, "gone", models.SlotCancelled, baseTime.Add(2*time.Hour), baseTime.Add(4*time.Hour))

	slot, err := svc.CreateSlot(context.Background(), "studio-1", baseTime, baseTime.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.SlotAvailable, slot.Status)
	assert.Equal(t, 1, slot.Version)
}

func TestFindOrCreateAvailable_ReusesExactMatch(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	start, end := baseTime, baseTime.Add(2*time.Hour)

	seedSlot(repo, "existing", models.SlotAvailable, start, end)

	slot, err := svc.FindOrCreateAvailable(ctx, "studio-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, "existing", slot.ID, "must reuse the exact available slot")

	// A different interval mints a new slot.
	other, err := svc.FindOrCreateAvailable(ctx, "studio-1", end.Add(time.Hour), end.Add(3*time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, "existing", other.ID)
}

func TestReserve_FirstWriterWins(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	seedSlot(repo, "s1", models.SlotAvailable, baseTime, baseTime.Add(2*time.Hour))

	got, err := svc.Reserve(ctx, "s1", "booking-A")
	require.NoError(t, err)
	assert.Equal(t, models.SlotBooked, got.Status)
	assert.Equal(t, "booking-A", got.BookingID)

	_, err = svc.Reserve(ctx, "s1", "booking-B")
	assert.ErrorIs(t, err, ErrSlotUnavailable, "second reservation must lose")

	_, err = svc.Reserve(ctx, "missing", "booking-C")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestRelease_IsIdempotentForCompensation(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	seedSlot(repo, "s1", models.SlotBooked, baseTime, baseTime.Add(2*time.Hour))
	repo.slots["s1"].BookingID = "booking-A"

	got, err := svc.Release(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotAvailable, got.Status)
	assert.Empty(t, got.BookingID)

	// A second release (a replayed compensation) must not fail.
	again, err := svc.Release(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotAvailable, again.Status)
}

func TestSlotLifecycle_BeginComplete(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	seedSlot(repo, "s1", models.SlotBooked, baseTime, baseTime.Add(2*time.Hour))

	ongoing, err := svc.Begin(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotOngoing, ongoing.Status)

	// Begin again fails: the slot is no longer booked.
	_, err = svc.Begin(ctx, "s1")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	done, err := svc.Complete(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotCompleted, done.Status)

	// Completed slots free the studio for new bookings.
	_, err = svc.CreateSlot(ctx, "studio-1", baseTime, baseTime.Add(2*time.Hour))
	assert.NoError(t, err)
}

func TestExtend_ChecksFollowingSlot(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	// Ongoing 8:00-10:00, next booking at 11:00.
	seedSlot(repo, "current", models.SlotOngoing, baseTime, baseTime.Add(2*time.Hour))
	seedSlot(repo, "next", models.SlotBooked, baseTime.Add(3*time.Hour), baseTime.Add(5*time.Hour))

	// 10:30 keeps the 30-minute gap before 11:00.
	got, err := svc.Extend(ctx, "current", baseTime.Add(2*time.Hour+30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(2*time.Hour+30*time.Minute), got.EndTime)

	// 10:45 leaves only 15 minutes before the next booking.
	_, err = svc.Extend(ctx, "current", baseTime.Add(2*time.Hour+45*time.Minute))
	assert.ErrorIs(t, err, ErrExtensionConflict)

	// Moving the end backwards through Extend is invalid.
	_, err = svc.Extend(ctx, "current", baseTime.Add(time.Hour))
	require.Error(t, err)
	var ae *utils.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, utils.KindValidation, ae.Kind)
}

func TestTrim_RollsBackAnExtension(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	seedSlot(repo, "current", models.SlotOngoing, baseTime, baseTime.Add(3*time.Hour))

	got, err := svc.Trim(ctx, "current", baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(2*time.Hour), got.EndTime)

	// Trimming below the minimum duration is rejected.
	_, err = svc.Trim(ctx, "current", baseTime.Add(30*time.Minute))
	require.Error(t, err)
	var ae *utils.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, utils.KindValidation, ae.Kind)
}

func TestExtensionHeadroom(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	t.Run("room before the next booking minus the gap", func(t *testing.T) {
		seedSlot(repo, "a", models.SlotOngoing, baseTime, baseTime.Add(2*time.Hour))
		seedSlot(repo, "b", models.SlotBooked, baseTime.Add(4*time.Hour), baseTime.Add(6*time.Hour))

		hr, err := svc.ExtensionHeadroom(ctx, "a")
		require.NoError(t, err)
		assert.True(t, hr.CanExtend)
		// Two hours to the next start, minus the 30-minute gap.
		assert.Equal(t, 90, hr.AvailableMinutes)
		require.NotNil(t, hr.MaxEndTime)
		assert.Equal(t, baseTime.Add(3*time.Hour+30*time.Minute), *hr.MaxEndTime)
	})

	t.Run("nothing scheduled after caps at a day", func(t *testing.T) {
		svc, repo := newTestService(t)
		seedSlot(repo, "solo", models.SlotOngoing, baseTime, baseTime.Add(2*time.Hour))

		hr, err := svc.ExtensionHeadroom(ctx, "solo")
		require.NoError(t, err)
		assert.True(t, hr.CanExtend)
		assert.Equal(t, int(openEndedHeadroom.Minutes()), hr.AvailableMinutes)
	})

	t.Run("adjacent follower leaves no room", func(t *testing.T) {
		svc, repo := newTestService(t)
		seedSlot(repo, "a", models.SlotOngoing, baseTime, baseTime.Add(2*time.Hour))
		seedSlot(repo, "b", models.SlotBooked, baseTime.Add(2*time.Hour+30*time.Minute), baseTime.Add(4*time.Hour))

		hr, err := svc.ExtensionHeadroom(ctx, "a")
		require.NoError(t, err)
		assert.False(t, hr.CanExtend)
		assert.NotEmpty(t, hr.Reason)
	})

	t.Run("inactive slot cannot extend", func(t *testing.T) {
		svc, repo := newTestService(t)
		seedSlot(repo, "done", models.SlotCompleted, baseTime, baseTime.Add(2*time.Hour))

		hr, err := svc.ExtensionHeadroom(ctx, "done")
		require.NoError(t, err)
		assert.False(t, hr.CanExtend)
	})
}

func TestList_WindowAndStatusFilter(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seedSlot(repo, "morning", models.SlotAvailable, baseTime, baseTime.Add(2*time.Hour))
	seedSlot(repo, "noon", models.SlotBooked, baseTime.Add(4*time.Hour), baseTime.Add(6*time.Hour))
	seedSlot(repo, "evening", models.SlotAvailable, baseTime.Add(10*time.Hour), baseTime.Add(12*time.Hour))

	all, err := svc.List(ctx, "studio-1", baseTime, baseTime.Add(8*time.Hour), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2, "evening slot is outside the window")

	avail, err := svc.List(ctx, "studio-1", baseTime, baseTime.Add(24*time.Hour), []models.SlotStatus{models.SlotAvailable})
	require.NoError(t, err)
	assert.Len(t, avail, 2)
	assert.Equal(t, "morning", avail[0].ID, "slots come back oldest first")

	_, err = svc.List(ctx, "studio-1", baseTime.Add(time.Hour), baseTime, nil)
	assert.Error(t, err, "inverted window must be rejected")
}
