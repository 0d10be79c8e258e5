package notification

import (
	"context"

	"github.com/hibiken/asynq"

	notificationRepo "clubvoice/database/repository/notification"
	"clubvoice/models"
)

// Target is one recipient of a batch send.
type Target struct {
	Name  string
	Phone string
}

// Service queues outbound messages and drives them through delivery.
// Each queued notification is tracked in Mongo and attempted by the
// background worker; the service owns the whole retry state machine.
type Service interface {
	// Booking lifecycle hooks, invoked by the booking service after a
	// successful transition. Cancelling a booking also cancels any
	// still-pending notifications for it.
	BookingConfirmed(ctx context.Context, club *models.Club, b *models.Booking) error
	BookingModified(ctx context.Context, club *models.Club, b *models.Booking) error
	BookingCancelled(ctx context.Context, club *models.Club, b *models.Booking) error

	// QueueBookingReminder fires from the scheduled reminder task. It is
	// a no-op when the booking no longer holds its slot.
	QueueBookingReminder(ctx context.Context, club *models.Club, b *models.Booking) error

	QueueEscalation(ctx context.Context, club *models.Club, conv *models.Conversation, reason, summary string) error
	QueueLeadAlert(ctx context.Context, club *models.Club, cust *models.Customer) error

	// QueueBatch queues one notification per target. Targets are
	// independent: a failure to queue one does not stop the rest, and
	// each follows its own retry contract afterwards.
	QueueBatch(ctx context.Context, club *models.Club, typ models.NotificationType, body string, targets []Target) ([]models.Notification, error)

	// Deliver performs one delivery attempt. Called by the worker.
	Deliver(ctx context.Context, notificationID string) error

	// Retry resets a failed notification back to queued with a fresh
	// attempt budget. This is the only state regression allowed.
	Retry(ctx context.Context, notificationID string) (*models.Notification, error)

	// Cancel stops a queued or retrying notification. Any already
	// scheduled retry becomes a no-op.
	Cancel(ctx context.Context, notificationID string) (*models.Notification, error)

	GetByID(ctx context.Context, notificationID string) (*models.Notification, error)
	List(ctx context.Context, filter notificationRepo.ListFilter) ([]models.Notification, error)
	CountByStatus(ctx context.Context, clubID string) (map[string]int64, error)
}

// SendResult is what the SMS provider reported for an accepted message.
type SendResult struct {
	Status      models.NotificationStatus
	ProviderRef string
}

// Sender is the outbound SMS collaborator.
type Sender interface {
	Send(ctx context.Context, to, body string) (SendResult, error)
}

// Enqueuer schedules background work. Satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
