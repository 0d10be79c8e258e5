package booking

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	bookingRepo "clubvoice/database/repository/booking"
	"clubvoice/models"
)

// CreateRequest carries everything needed to book a resource.
type CreateRequest struct {
	ClubID         string
	Resource       string
	CustomerID     string
	ConversationID string
	Start          time.Time
	End            time.Time
	Source         models.BookingSource
	ContactName    string
	ContactPhone   string
	ContactEmail   string
	Notes          string
}

// BookingService orchestrates the booking lifecycle: every write to the
// per-resource timeline goes through it.
type BookingService interface {
	Create(ctx context.Context, req CreateRequest) (*models.Booking, error)
	Modify(ctx context.Context, bookingID string, newStart, newEnd time.Time) (*models.Booking, error)
	// Cancel is idempotent: cancelling an already-cancelled booking is a
	// no-op success.
	Cancel(ctx context.Context, bookingID, reason string) (*models.Booking, error)
	Confirm(ctx context.Context, bookingID string) (*models.Booking, error)
	Complete(ctx context.Context, bookingID string) (*models.Booking, error)

	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	List(ctx context.Context, filter bookingRepo.ListFilter) ([]models.Booking, error)

	// CheckAvailability reports whether the slot would be accepted and,
	// when it would not, the conflicting bookings and alternative slots.
	CheckAvailability(ctx context.Context, clubID, resource string, start, end time.Time) (*AvailabilityResult, error)
}

// AvailabilityResult is the outcome of a non-mutating availability probe.
type AvailabilityResult struct {
	Available    bool                    `json:"available"`
	Reason       string                  `json:"reason,omitempty"`
	Conflicts    []models.Booking        `json:"conflicts,omitempty"`
	Alternatives []models.SlotSuggestion `json:"alternatives,omitempty"`
}

// LifecycleEvents is notified after every successful booking
// transition. The notification dispatcher implements it.
type LifecycleEvents interface {
	BookingConfirmed(ctx context.Context, club *models.Club, b *models.Booking) error
	BookingModified(ctx context.Context, club *models.Club, b *models.Booking) error
	BookingCancelled(ctx context.Context, club *models.Club, b *models.Booking) error
}

// Enqueuer schedules background work. Satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
