package scheduling

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	bookingRepo "clubvoice/database/repository/booking"
	"clubvoice/models"
)

// Policy carries the club-independent slot rules.
type Policy struct {
	// SlotGranularity is the alignment unit for booking boundaries.
	SlotGranularity time.Duration
	// MinDuration is the shortest allowed booking.
	MinDuration time.Duration
}

// Checker decides whether a proposed booking is acceptable against the
// stored schedule. Given the same snapshot of existing bookings the
// same decision is returned every time.
type Checker struct {
	Repo   bookingRepo.BookingRepository
	Policy Policy
}

// NewChecker constructs a Checker.
func NewChecker(repo bookingRepo.BookingRepository, policy Policy) *Checker {
	if policy.SlotGranularity <= 0 {
		policy.SlotGranularity = 30 * time.Minute
	}
	if policy.MinDuration <= 0 {
		policy.MinDuration = policy.SlotGranularity
	}
	return &Checker{Repo: repo, Policy: policy}
}

// Check validates the proposed booking against slot rules, opening
// hours and the existing schedule. excludeID (may be empty) leaves one
// booking out of the overlap query, for modification in place.
// Returns nil, *InvalidSlotError or *ConflictError.
func (c *Checker) Check(ctx context.Context, club *models.Club, b *models.Booking, excludeID string, now time.Time) error {
	if err := c.validateSlot(club, b, now); err != nil {
		return err
	}

	res := club.ResourceByName(b.Resource)
	if res == nil {
		return newInvalidSlot("unknown resource %q", b.Resource)
	}
	capacity := res.Capacity
	if capacity < 1 {
		capacity = 1
	}

	overlapping, err := c.Repo.FindOverlapping(ctx, club.ID, b.Resource, b.Start, b.End, excludeID)
	if err != nil {
		return fmt.Errorf("overlap query failed: %w", err)
	}
	if len(overlapping) == 0 {
		return nil
	}
	if capacity == 1 {
		return &ConflictError{Resource: b.Resource, Conflicts: overlapping}
	}

	// Capacity > 1: sweep over the union of touched endpoints so a
	// partial pile-up inside the interval is caught, not just the count
	// at the requested start.
	if peak, at := peakConcurrency(overlapping, b.Start, b.End); peak+1 > capacity {
		conflicts := bookingsCovering(overlapping, at)
		return &ConflictError{Resource: b.Resource, Conflicts: conflicts}
	}
	return nil
}

func (c *Checker) validateSlot(club *models.Club, b *models.Booking, now time.Time) error {
	if !b.Start.Before(b.End) {
		return newInvalidSlot("start must be before end")
	}
	if b.Start.Before(now) {
		return newInvalidSlot("start is in the past")
	}
	dur := b.End.Sub(b.Start)
	if dur < c.Policy.MinDuration {
		return newInvalidSlot("duration %s is below the minimum %s", dur, c.Policy.MinDuration)
	}
	loc := club.Location()
	localStart := b.Start.In(loc)
	if !alignedToGranularity(localStart, c.Policy.SlotGranularity) {
		return newInvalidSlot("start is not aligned to %s boundaries", c.Policy.SlotGranularity)
	}
	if dur%c.Policy.SlotGranularity != 0 {
		return newInvalidSlot("duration is not a multiple of %s", c.Policy.SlotGranularity)
	}
	return c.checkOpeningHours(club, b)
}

func (c *Checker) checkOpeningHours(club *models.Club, b *models.Booking) error {
	loc := club.Location()
	localStart := b.Start.In(loc)
	localEnd := b.End.In(loc)

	day := strings.ToLower(localStart.Weekday().String())
	sameDay := localStart.Year() == localEnd.Year() && localStart.YearDay() == localEnd.YearDay()
	endOfDay := localEnd.Hour() == 0 && localEnd.Minute() == 0 && !sameDay &&
		localEnd.Sub(localStart) <= 24*time.Hour
	if !sameDay && !endOfDay {
		return newInvalidSlot("booking must not cross midnight")
	}

	ranges, open := club.OpeningHours[day]
	if !open || len(ranges) == 0 {
		return newInvalidSlot("club is closed on %s", day)
	}

	startMin := localStart.Hour()*60 + localStart.Minute()
	endMin := localEnd.Hour()*60 + localEnd.Minute()
	if endOfDay {
		endMin = 24 * 60
	}
	for _, hr := range ranges {
		openMin, err := models.ParseClockMinutes(hr.Open)
		if err != nil {
			continue
		}
		closeMin, err := models.ParseClockMinutes(hr.Close)
		if err != nil {
			continue
		}
		if startMin >= openMin && endMin <= closeMin {
			return nil
		}
	}
	return newInvalidSlot("requested slot is outside opening hours on %s", day)
}

func alignedToGranularity(t time.Time, gran time.Duration) bool {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return t.Sub(midnight)%gran == 0
}

// peakConcurrency sweeps the union of endpoints of the overlapping
// bookings clipped to [start, end) and returns the highest concurrent
// count, together with the instant where it occurs.
func peakConcurrency(overlapping []models.Booking, start, end time.Time) (int, time.Time) {
	boundaries := []time.Time{start}
	for _, o := range overlapping {
		if o.Start.After(start) && o.Start.Before(end) {
			boundaries = append(boundaries, o.Start)
		}
		if o.End.After(start) && o.End.Before(end) {
			boundaries = append(boundaries, o.End)
		}
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Before(boundaries[j]) })

	peak, at := 0, start
	for _, t := range boundaries {
		n := len(bookingsCovering(overlapping, t))
		if n > peak {
			peak, at = n, t
		}
	}
	return peak, at
}

func bookingsCovering(bookings []models.Booking, t time.Time) []models.Booking {
	var covering []models.Booking
	for _, b := range bookings {
		if !b.Start.After(t) && b.End.After(t) {
			covering = append(covering, b)
		}
	}
	return covering
}
