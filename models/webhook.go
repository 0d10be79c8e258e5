package models

import (
	"encoding/json"
	"time"
)

// Webhook event kinds sent by the voice provider.
const (
	EventCallStarted      = "call.started"
	EventTranscriptUpdate = "transcript.update"
	EventFunctionCalled   = "function.called"
	EventCallEnded        = "call.ended"
)

// Assistant function names dispatched by the call-session machine.
const (
	FnCreateBooking     = "create_booking"
	FnCheckAvailability = "check_availability"
	FnCaptureLead       = "capture_lead"
	FnEscalateToManager = "escalate_to_manager"
	FnMembershipInfo    = "get_membership_info"
	FnBookingLink       = "get_booking_link"
)

// WebhookEvent is the envelope every voice-provider event arrives in.
type WebhookEvent struct {
	Kind      string          `json:"event_kind" binding:"required"`
	CallID    string          `json:"call_id" binding:"required"`
	EventID   string          `json:"event_id" binding:"required"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// CallStartedPayload accompanies call.started.
type CallStartedPayload struct {
	AssistantID  string `json:"assistant_id"`
	CallerNumber string `json:"caller_number"`
	ClubNumber   string `json:"club_number"`
}

// TranscriptPayload accompanies transcript.update.
type TranscriptPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FunctionCallPayload accompanies function.called.
type FunctionCallPayload struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// CallEndedPayload accompanies call.ended.
type CallEndedPayload struct {
	Reason      string  `json:"reason"`
	DurationSec int     `json:"duration_sec"`
	Cost        float64 `json:"cost"`
}
