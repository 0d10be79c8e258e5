package bookingRepo

import (
	"context"
	"time"

	"clubvoice/models"
)

// ListFilter narrows List queries for the API surface.
type ListFilter struct {
	ClubID     string
	CustomerID string
	Resource   string
	Status     models.BookingStatus
	From       time.Time
	To         time.Time
	Limit      int64
	Skip       int64
}

// BookingRepository owns the durable booking records. The conflict
// checker and reporting read through it; only the booking lifecycle
// service writes.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, b *models.Booking) error

	// FindOverlapping returns the active bookings for (club, resource)
	// whose [start, end) interval intersects the given one, sorted by
	// start time. excludeID (may be empty) is left out of the result,
	// used when re-checking a modification in place.
	FindOverlapping(ctx context.Context, clubID, resource string, start, end time.Time, excludeID string) ([]models.Booking, error)

	// CountActive counts active bookings for (club, resource) touching
	// the window [start, end).
	CountActive(ctx context.Context, clubID, resource string, start, end time.Time) (int64, error)

	List(ctx context.Context, filter ListFilter) ([]models.Booking, error)
	CountByStatus(ctx context.Context, clubID string) (map[string]int64, error)
}
