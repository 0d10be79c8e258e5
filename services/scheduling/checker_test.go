package scheduling

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "clubvoice/database/repository/booking"
	"clubvoice/models"
)

// memBookingRepo is an in-memory BookingRepository for checker tests.
type memBookingRepo struct {
	bookings map[string]*models.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *memBookingRepo) Create(_ context.Context, b *models.Booking) error {
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, assert.AnError
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) Update(_ context.Context, b *models.Booking) error {
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memBookingRepo) FindOverlapping(_ context.Context, clubID, resource string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ClubID != clubID || b.Resource != resource || b.ID == excludeID {
			continue
		}
		if !b.Active() || !b.Overlaps(start, end) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *memBookingRepo) CountActive(ctx context.Context, clubID, resource string, start, end time.Time) (int64, error) {
	overlapping, _ := r.FindOverlapping(ctx, clubID, resource, start, end, "")
	return int64(len(overlapping)), nil
}

func (r *memBookingRepo) List(_ context.Context, _ bookingRepo.ListFilter) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBookingRepo) CountByStatus(_ context.Context, _ string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[string(b.Status)]++
	}
	return counts, nil
}

var allWeekHours = models.OpeningHours{
	"monday":    {{Open: "08:00", Close: "22:00"}},
	"tuesday":   {{Open: "08:00", Close: "22:00"}},
	"wednesday": {{Open: "08:00", Close: "22:00"}},
	"thursday":  {{Open: "08:00", Close: "22:00"}},
	"friday":    {{Open: "08:00", Close: "22:00"}},
	"saturday":  {{Open: "08:00", Close: "22:00"}},
	"sunday":    {{Open: "08:00", Close: "22:00"}},
}

func riversidePadel() *models.Club {
	return &models.Club{
		ID:   "club-riverside",
		Name: "Riverside Padel",
		Resources: []models.Resource{
			{Name: "Court 1", Type: "padel_court", Capacity: 1},
			{Name: "Gym Floor", Type: "gym", Capacity: 2},
		},
		OpeningHours: allWeekHours,
	}
}

// A Monday morning; everything below books relative to this instant.
var testNow = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 7, hour, min, 0, 0, time.UTC)
}

func confirmed(id, resource string, start, end time.Time) *models.Booking {
	return &models.Booking{
		ID:       id,
		ClubID:   "club-riverside",
		Resource: resource,
		Start:    start,
		End:      end,
		Status:   models.BookingConfirmed,
	}
}

func proposal(resource string, start, end time.Time) *models.Booking {
	return &models.Booking{
		ClubID:   "club-riverside",
		Resource: resource,
		Start:    start,
		End:      end,
	}
}

func TestCheckRejectsInvalidSlots(t *testing.T) {
	repo := newMemBookingRepo()
	checker := NewChecker(repo, Policy{SlotGranularity: 30 * time.Minute, MinDuration: 30 * time.Minute})
	club := riversidePadel()

	cases := []struct {
		name   string
		start  time.Time
		end    time.Time
		reason string
	}{
		{"start after end", at(11, 0), at(10, 0), "start must be before end"},
		{"start in the past", at(7, 0), at(8, 0), "in the past"},
		{"below minimum duration", at(10, 0), at(10, 15), "below the minimum"},
		{"misaligned start", at(10, 10), at(11, 10), "not aligned"},
		{"duration not a multiple", at(10, 0), at(10, 45), "not a multiple"},
		{"before opening", at(8, 0).Add(-time.Hour), at(8, 0), "in the past"},
		{"after closing", at(21, 30), at(22, 30), "outside opening hours"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checker.Check(context.Background(), club, proposal("Court 1", tc.start, tc.end), "", testNow)
			ie, ok := IsInvalidSlot(err)
			require.True(t, ok, "expected InvalidSlotError, got %v", err)
			assert.Contains(t, ie.Error(), tc.reason)
		})
	}
}

func TestCheckRejectsUnknownResource(t *testing.T) {
	checker := NewChecker(newMemBookingRepo(), Policy{})
	err := checker.Check(context.Background(), riversidePadel(), proposal("Court 9", at(10, 0), at(11, 0)), "", testNow)
	_, ok := IsInvalidSlot(err)
	require.True(t, ok)
}

func TestCheckRejectsClosedDay(t *testing.T) {
	club := riversidePadel()
	club.OpeningHours = models.OpeningHours{"tuesday": {{Open: "08:00", Close: "22:00"}}}
	checker := NewChecker(newMemBookingRepo(), Policy{})
	err := checker.Check(context.Background(), club, proposal("Court 1", at(10, 0), at(11, 0)), "", testNow)
	ie, ok := IsInvalidSlot(err)
	require.True(t, ok)
	assert.Contains(t, ie.Error(), "closed")
}

// Court 1 walk-through: an overlapping request is rejected with the
// conflicting booking and a usable alternative, an adjacent slot is
// accepted, and cancelling frees the interval.
func TestCourtConflictLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	checker := NewChecker(repo, Policy{SlotGranularity: 30 * time.Minute, MinDuration: 30 * time.Minute})
	club := riversidePadel()

	a := confirmed("booking-a", "Court 1", at(10, 0), at(11, 0))
	require.NoError(t, repo.Create(ctx, a))

	// B overlaps A.
	err := checker.Check(ctx, club, proposal("Court 1", at(10, 30), at(11, 30)), "", testNow)
	ce, ok := IsConflict(err)
	require.True(t, ok, "expected ConflictError, got %v", err)
	require.Len(t, ce.Conflicts, 1)
	assert.Equal(t, "booking-a", ce.Conflicts[0].ID)

	alts := checker.Alternatives(ctx, club, "Court 1", at(10, 30), at(11, 30), 4, testNow)
	require.NotEmpty(t, alts)
	assert.Equal(t, at(11, 0), alts[0].Start)
	assert.Equal(t, at(12, 0), alts[0].End)

	// C is back-to-back with A; [start, end) intervals do not overlap.
	c := confirmed("booking-c", "Court 1", at(11, 0), at(12, 0))
	require.NoError(t, checker.Check(ctx, club, c, "", testNow))
	require.NoError(t, repo.Create(ctx, c))

	// Cancelling A frees 10:00-11:00 for D.
	a.Status = models.BookingCancelled
	require.NoError(t, repo.Update(ctx, a))
	require.NoError(t, checker.Check(ctx, club, proposal("Court 1", at(10, 0), at(11, 0)), "", testNow))
}

// Gym Floor has capacity 2: concurrent count is checked at every swept
// boundary, so a third request spanning two back-to-back bookings is
// fine but a pile-up beyond capacity is not.
func TestCapacitySweep(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	checker := NewChecker(repo, Policy{SlotGranularity: 30 * time.Minute, MinDuration: 30 * time.Minute})
	club := riversidePadel()

	require.NoError(t, repo.Create(ctx, confirmed("gym-1", "Gym Floor", at(9, 0), at(10, 0))))
	require.NoError(t, repo.Create(ctx, confirmed("gym-2", "Gym Floor", at(10, 0), at(11, 0))))

	// Spans the 10:00 boundary; concurrent count stays at 2.
	third := confirmed("gym-3", "Gym Floor", at(9, 30), at(10, 30))
	require.NoError(t, checker.Check(ctx, club, third, "", testNow))
	require.NoError(t, repo.Create(ctx, third))

	// A fourth overlapping request would make three at 09:30.
	err := checker.Check(ctx, club, proposal("Gym Floor", at(9, 30), at(10, 30)), "", testNow)
	ce, ok := IsConflict(err)
	require.True(t, ok, "expected ConflictError, got %v", err)
	assert.NotEmpty(t, ce.Conflicts)
}

func TestCapacityPartialOverlapCaught(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	checker := NewChecker(repo, Policy{SlotGranularity: 30 * time.Minute, MinDuration: 30 * time.Minute})
	club := riversidePadel()

	// Both occupy 09:00-10:00 outright.
	require.NoError(t, repo.Create(ctx, confirmed("gym-1", "Gym Floor", at(9, 0), at(10, 0))))
	require.NoError(t, repo.Create(ctx, confirmed("gym-2", "Gym Floor", at(9, 0), at(10, 0))))

	// The pile-up is inside the requested interval, not at its start.
	err := checker.Check(ctx, club, proposal("Gym Floor", at(9, 30), at(10, 30)), "", testNow)
	_, ok := IsConflict(err)
	require.True(t, ok, "expected ConflictError, got %v", err)
}

func TestCheckExcludesBookingUnderModification(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	checker := NewChecker(repo, Policy{SlotGranularity: 30 * time.Minute, MinDuration: 30 * time.Minute})
	club := riversidePadel()

	a := confirmed("booking-a", "Court 1", at(10, 0), at(11, 0))
	require.NoError(t, repo.Create(ctx, a))

	// Extending A over its own interval is not a self-conflict.
	extended := proposal("Court 1", at(10, 0), at(12, 0))
	require.NoError(t, checker.Check(ctx, club, extended, "booking-a", testNow))

	// Without the exclusion the same interval conflicts.
	_, ok := IsConflict(checker.Check(ctx, club, extended, "", testNow))
	require.True(t, ok)
}

func TestAlternativesSkipOccupiedSlots(t *testing.T) {
	ctx := context.Background()
	repo := newMemBookingRepo()
	checker := NewChecker(repo, Policy{SlotGranularity: 30 * time.Minute, MinDuration: 30 * time.Minute})
	club := riversidePadel()

	require.NoError(t, repo.Create(ctx, confirmed("booking-a", "Court 1", at(10, 0), at(12, 0))))

	alts := checker.Alternatives(ctx, club, "Court 1", at(10, 0), at(11, 0), 4, testNow)
	for _, alt := range alts {
		assert.False(t, alt.Start.Before(at(12, 0)), "alternative %v overlaps the busy block", alt.Start)
	}
}

func TestLockTableSerializesPerResource(t *testing.T) {
	table := NewLockTable()

	unlock := table.Lock("club-riverside", "Court 1")
	acquired := make(chan struct{})
	go func() {
		u := table.Lock("club-riverside", "Court 1")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first still held")
	case <-time.After(50 * time.Millisecond):
	}

	// A different resource does not block.
	u2 := table.Lock("club-riverside", "Court 2")
	u2()

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after release")
	}
}
