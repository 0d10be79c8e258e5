package models

import "time"

// ConversationState is the call-session state. A conversation is owned
// by the call-session machine while live and becomes read-only once
// ended.
type ConversationState string

// ConversationInProgress is the initial persisted state: applying
// call.started creates the conversation and moves it in progress in one
// write, so a bare "started" record never exists.
const (
	ConversationInProgress      ConversationState = "in_progress"
	ConversationFunctionPending ConversationState = "function_pending"
	ConversationEnded           ConversationState = "ended"
)

// TranscriptTurn is one utterance in the call transcript.
type TranscriptTurn struct {
	Role    string    `bson:"role" json:"role"` // "customer", "assistant", "system"
	Content string    `bson:"content" json:"content"`
	At      time.Time `bson:"at" json:"at"`
}

// AppliedEvent records a webhook event that has been applied to the
// conversation, keyed by the provider's event id. Replays of the same
// event id return Result without reapplying side effects.
type AppliedEvent struct {
	EventID string         `bson:"event_id" json:"event_id"`
	Kind    string         `bson:"kind" json:"kind"`
	Result  map[string]any `bson:"result,omitempty" json:"result,omitempty"`
	At      time.Time      `bson:"at" json:"at"`
}

// Conversation tracks one phone call from connect to disconnect.
type Conversation struct {
	ID         string `bson:"id" json:"id"`
	ClubID     string `bson:"club_id" json:"club_id"`
	CustomerID string `bson:"customer_id,omitempty" json:"customer_id,omitempty"`

	CallID      string `bson:"call_id" json:"call_id"`
	AssistantID string `bson:"assistant_id,omitempty" json:"assistant_id,omitempty"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`

	State      ConversationState `bson:"state" json:"state"`
	Transcript []TranscriptTurn  `bson:"transcript,omitempty" json:"transcript,omitempty"`
	Applied    []AppliedEvent    `bson:"applied,omitempty" json:"applied,omitempty"`

	Escalated bool   `bson:"escalated,omitempty" json:"escalated,omitempty"`
	Outcome   string `bson:"outcome,omitempty" json:"outcome,omitempty"`

	StartedAt time.Time  `bson:"started_at" json:"started_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// AppliedEventByID returns the applied-event record for the given event
// id, or nil if the event has not been applied.
func (c *Conversation) AppliedEventByID(eventID string) *AppliedEvent {
	for i := range c.Applied {
		if c.Applied[i].EventID == eventID {
			return &c.Applied[i]
		}
	}
	return nil
}
