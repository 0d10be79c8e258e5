package models

import "time"

// NotificationType identifies why the message is being sent.
type NotificationType string

const (
	NotifyBookingConfirmation NotificationType = "booking_confirmation"
	NotifyBookingModification NotificationType = "booking_modification"
	NotifyBookingCancellation NotificationType = "booking_cancellation"
	NotifyBookingReminder     NotificationType = "booking_reminder"
	NotifyEscalation          NotificationType = "escalation"
	NotifyLeadAlert           NotificationType = "lead_alert"
)

// NotificationStatus is the delivery state. Delivered and failed are
// terminal; cancelled makes any scheduled retry a no-op.
type NotificationStatus string

const (
	NotificationQueued    NotificationStatus = "queued"
	NotificationSent      NotificationStatus = "sent"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationRetrying  NotificationStatus = "retrying"
	NotificationFailed    NotificationStatus = "failed"
	NotificationCancelled NotificationStatus = "cancelled"
)

// NotificationChannel is the transport used for a notification.
type NotificationChannel string

const (
	ChannelSMS NotificationChannel = "sms"
)

// Notification is one outbound message tracked through delivery.
type Notification struct {
	ID             string `bson:"id" json:"id"`
	ClubID         string `bson:"club_id" json:"club_id"`
	CustomerID     string `bson:"customer_id,omitempty" json:"customer_id,omitempty"`
	BookingID      string `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	ConversationID string `bson:"conversation_id,omitempty" json:"conversation_id,omitempty"`

	Type    NotificationType    `bson:"type" json:"type"`
	Channel NotificationChannel `bson:"channel" json:"channel"`
	Status  NotificationStatus  `bson:"status" json:"status"`

	RecipientName  string `bson:"recipient_name,omitempty" json:"recipient_name,omitempty"`
	RecipientPhone string `bson:"recipient_phone" json:"recipient_phone"`
	Body           string `bson:"body" json:"body"`

	Attempts      int        `bson:"attempts" json:"attempts"`
	MaxAttempts   int        `bson:"max_attempts" json:"max_attempts"`
	LastAttemptAt *time.Time `bson:"last_attempt_at,omitempty" json:"last_attempt_at,omitempty"`
	NextRetryAt   *time.Time `bson:"next_retry_at,omitempty" json:"next_retry_at,omitempty"`

	ProviderRef  string `bson:"provider_ref,omitempty" json:"provider_ref,omitempty"`
	ErrorMessage string `bson:"error_message,omitempty" json:"error_message,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Deliverable reports whether the dispatcher should still attempt this
// notification. Checked at execution time so a cancellation issued while
// a retry was scheduled turns that retry into a no-op.
func (n *Notification) Deliverable() bool {
	return n.Status == NotificationQueued || n.Status == NotificationRetrying
}
