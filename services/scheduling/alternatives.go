package scheduling

import (
	"context"
	"time"

	"clubvoice/models"
)

// Alternatives probes the next n slot-granularity boundaries after the
// requested start and returns the intervals of the same duration that
// would be accepted. Used to answer a caller whose slot is taken
// without ending the conversation.
func (c *Checker) Alternatives(ctx context.Context, club *models.Club, resource string, start, end time.Time, n int, now time.Time) []models.SlotSuggestion {
	if n <= 0 {
		return nil
	}
	dur := end.Sub(start)
	gran := c.Policy.SlotGranularity

	loc := club.Location()
	probe := nextBoundary(start.In(loc), gran)

	var suggestions []models.SlotSuggestion
	for i := 0; i < n; i++ {
		candidate := &models.Booking{
			ClubID:   club.ID,
			Resource: resource,
			Start:    probe,
			End:      probe.Add(dur),
		}
		if err := c.Check(ctx, club, candidate, "", now); err == nil {
			suggestions = append(suggestions, models.SlotSuggestion{
				Resource: resource,
				Start:    candidate.Start,
				End:      candidate.End,
			})
		}
		probe = probe.Add(gran)
	}
	return suggestions
}

// nextBoundary returns the first granularity boundary strictly after t.
func nextBoundary(t time.Time, gran time.Duration) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)
	steps := offset/gran + 1
	return midnight.Add(steps * gran)
}
