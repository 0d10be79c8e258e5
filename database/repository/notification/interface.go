package notificationRepo

import (
	"context"

	"clubvoice/models"
)

// ListFilter narrows List queries for the API surface.
type ListFilter struct {
	ClubID string
	Type   models.NotificationType
	Status models.NotificationStatus
	Limit  int64
	Skip   int64
}

// NotificationRepository provides access to notification records.
// Only the dispatcher mutates them.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	Update(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter ListFilter) ([]models.Notification, error)
	// FindActiveByBooking returns the notifications for a booking that
	// are still queued or retrying.
	FindActiveByBooking(ctx context.Context, bookingID string) ([]models.Notification, error)
	CountByStatus(ctx context.Context, clubID string) (map[string]int64, error)
}
