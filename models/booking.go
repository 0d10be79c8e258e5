package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending      BookingStatus = "pending"
	BookingConfirmed    BookingStatus = "confirmed"
	BookingCancelled    BookingStatus = "cancelled"
	BookingCompleted    BookingStatus = "completed"
	BookingFailedToSync BookingStatus = "failed_to_sync"
)

// ActiveBookingStatuses are the statuses that hold a resource's interval
// for conflict purposes. A booking that failed to sync to the marketplace
// keeps its local confirmation and therefore keeps its slot.
var ActiveBookingStatuses = []BookingStatus{
	BookingPending, BookingConfirmed, BookingFailedToSync,
}

// SyncStatus tracks the best-effort replication of a booking to the
// external booking marketplace.
type SyncStatus string

const (
	SyncNotRequired SyncStatus = ""
	SyncPending     SyncStatus = "pending"
	SyncDone        SyncStatus = "synced"
	SyncFailed      SyncStatus = "failed"
)

// BookingSource records which channel created a booking.
type BookingSource string

const (
	SourcePhoneAI BookingSource = "phone_ai"
	SourceManual  BookingSource = "manual"
	SourceAPI     BookingSource = "api"
)

// Booking represents a reservation of one club resource for a
// half-open time interval [Start, End).
type Booking struct {
	ID             string        `bson:"id" json:"id"`
	ClubID         string        `bson:"club_id" json:"club_id"`
	Resource       string        `bson:"resource" json:"resource"`
	CustomerID     string        `bson:"customer_id" json:"customer_id"`
	ConversationID string        `bson:"conversation_id,omitempty" json:"conversation_id,omitempty"`
	Start          time.Time     `bson:"start" json:"start"`
	End            time.Time     `bson:"end" json:"end"`
	Status         BookingStatus `bson:"status" json:"status"`
	Source         BookingSource `bson:"source" json:"source"`

	SyncStatus     SyncStatus `bson:"sync_status,omitempty" json:"sync_status,omitempty"`
	MarketplaceRef string     `bson:"marketplace_ref,omitempty" json:"marketplace_ref,omitempty"`

	ContactName  string `bson:"contact_name,omitempty" json:"contact_name,omitempty"`
	ContactPhone string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	ContactEmail string `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	Notes        string `bson:"notes,omitempty" json:"notes,omitempty"`

	ConfirmationCode   string     `bson:"confirmation_code,omitempty" json:"confirmation_code,omitempty"`
	CancellationReason string     `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Active reports whether the booking currently holds its interval.
func (b *Booking) Active() bool {
	for _, s := range ActiveBookingStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// Overlaps reports whether the booking's [Start, End) interval
// intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

// SlotSuggestion is a free interval offered to a caller when their
// requested slot is taken.
type SlotSuggestion struct {
	Resource string    `json:"resource"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}
