package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeNotificationDeliver = "notification:deliver"
	TypeMarketplaceSync     = "marketplace:sync"
	TypeMarketplaceCancel   = "marketplace:cancel"
	TypeBookingReminder     = "booking:reminder"
)

// NotificationDeliverPayload identifies the notification to attempt.
type NotificationDeliverPayload struct {
	NotificationID string `json:"notification_id"`
}

// MarketplaceSyncPayload identifies the booking to replicate.
type MarketplaceSyncPayload struct {
	BookingID string `json:"booking_id"`
}

// MarketplaceCancelPayload identifies the booking to remove from the
// marketplace.
type MarketplaceCancelPayload struct {
	BookingID string `json:"booking_id"`
}

// BookingReminderPayload identifies the booking to remind about.
type BookingReminderPayload struct {
	BookingID string `json:"booking_id"`
}

// NewNotificationDeliverTask builds a delivery attempt task. Retries
// are managed by the dispatcher's own state machine, so asynq-level
// retry is disabled.
func NewNotificationDeliverTask(notificationID string, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(NotificationDeliverPayload{NotificationID: notificationID})
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{asynq.MaxRetry(0)}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}
	return asynq.NewTask(TypeNotificationDeliver, b), opts, nil
}

// NewMarketplaceSyncTask builds a best-effort marketplace sync task.
func NewMarketplaceSyncTask(bookingID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(MarketplaceSyncPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{asynq.MaxRetry(3)}
	return asynq.NewTask(TypeMarketplaceSync, b), opts, nil
}

// NewMarketplaceCancelTask builds a task removing a synced booking from
// the marketplace after a local cancellation.
func NewMarketplaceCancelTask(bookingID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(MarketplaceCancelPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{asynq.MaxRetry(3)}
	return asynq.NewTask(TypeMarketplaceCancel, b), opts, nil
}

// NewBookingReminderTask builds a reminder task scheduled at fireAt.
func NewBookingReminderTask(bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(BookingReminderPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}
	return asynq.NewTask(TypeBookingReminder, b), opts, nil
}
