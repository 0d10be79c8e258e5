package callsession

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clubvoice/models"
	"clubvoice/utils"
)

const clubCacheTTL = 10 * time.Minute

// HandleEvent applies one provider event to its conversation. Events
// are idempotent per event id: a replay returns the recorded result
// without reapplying side effects. All mutations for one event land in
// a single conversation update, so a handler failure leaves the
// recorded state untouched. Application is exclusive per call id, so a
// duplicate delivered concurrently serializes behind the first and
// finds its applied-event record.
func (s *DefaultService) HandleEvent(ctx context.Context, evt *models.WebhookEvent) (map[string]any, error) {
	unlock := s.calls.lock(evt.CallID)
	defer unlock()

	switch evt.Kind {
	case models.EventCallStarted:
		return s.handleCallStarted(ctx, evt)
	case models.EventTranscriptUpdate, models.EventFunctionCalled, models.EventCallEnded:
		return s.handleSessionEvent(ctx, evt)
	default:
		return nil, fmt.Errorf("unsupported event kind %q", evt.Kind)
	}
}

func (s *DefaultService) handleCallStarted(ctx context.Context, evt *models.WebhookEvent) (map[string]any, error) {
	existing, err := s.Conversations.GetByCallID(ctx, evt.CallID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up call %s: %w", evt.CallID, err)
	}
	if existing != nil {
		if ae := existing.AppliedEventByID(evt.EventID); ae != nil {
			return ae.Result, nil
		}
		utils.GetLogger().Warn("duplicate call.started for known call",
			zap.String("callID", evt.CallID), zap.String("eventID", evt.EventID))
		return map[string]any{"status": string(existing.State)}, nil
	}

	var p models.CallStartedPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid call.started payload: %w", err)
	}

	club, err := s.resolveClub(ctx, p.AssistantID, p.ClubNumber)
	if err != nil {
		return nil, err
	}

	now := s.now()
	customerID := ""
	if p.CallerNumber != "" {
		cust, err := s.ensureCustomer(ctx, club, p.CallerNumber, now)
		if err != nil {
			return nil, err
		}
		customerID = cust.ID
	}

	result := map[string]any{"status": string(models.ConversationInProgress)}
	if club.CustomGreeting != "" {
		result["greeting"] = club.CustomGreeting
	}

	conv := &models.Conversation{
		ID:          uuid.NewString(),
		ClubID:      club.ID,
		CustomerID:  customerID,
		CallID:      evt.CallID,
		AssistantID: p.AssistantID,
		Phone:       p.CallerNumber,
		State:       models.ConversationInProgress,
		Applied: []models.AppliedEvent{
			{EventID: evt.EventID, Kind: evt.Kind, Result: result, At: now},
		},
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation for call %s: %w", evt.CallID, err)
	}
	utils.GetLogger().Info("call started",
		zap.String("callID", evt.CallID), zap.String("clubID", club.ID))
	return result, nil
}

func (s *DefaultService) handleSessionEvent(ctx context.Context, evt *models.WebhookEvent) (map[string]any, error) {
	conv, err := s.Conversations.GetByCallID(ctx, evt.CallID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up call %s: %w", evt.CallID, err)
	}
	if conv == nil {
		return nil, &UnknownCallError{CallID: evt.CallID, Kind: evt.Kind}
	}
	if ae := conv.AppliedEventByID(evt.EventID); ae != nil {
		return ae.Result, nil
	}

	now := s.now()
	var result map[string]any

	switch evt.Kind {
	case models.EventTranscriptUpdate:
		result, err = s.applyTranscript(conv, evt, now)
	case models.EventFunctionCalled:
		result, err = s.applyFunctionCall(ctx, conv, evt)
	case models.EventCallEnded:
		result, err = s.applyCallEnded(conv, evt, now)
	}
	if err != nil {
		return nil, err
	}

	conv.Applied = append(conv.Applied, models.AppliedEvent{
		EventID: evt.EventID, Kind: evt.Kind, Result: result, At: now,
	})
	conv.UpdatedAt = now
	if err := s.Conversations.Update(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to persist conversation %s: %w", conv.ID, err)
	}
	return result, nil
}

// applyTranscript appends a turn. Transcript updates for a conversation
// that is not live are out of order; they are acknowledged and logged
// but change nothing.
func (s *DefaultService) applyTranscript(conv *models.Conversation, evt *models.WebhookEvent, now time.Time) (map[string]any, error) {
	var p models.TranscriptPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid transcript.update payload: %w", err)
	}
	if conv.State != models.ConversationInProgress {
		utils.GetLogger().Warn("ignoring out-of-order transcript update",
			zap.String("callID", conv.CallID), zap.String("state", string(conv.State)))
		return map[string]any{"status": "ignored", "reason": "out_of_order"}, nil
	}
	conv.Transcript = append(conv.Transcript, models.TranscriptTurn{
		Role: p.Role, Content: p.Content, At: now,
	})
	return map[string]any{"status": "ok"}, nil
}

// applyFunctionCall runs the named handler synchronously; the result is
// relayed back to the assistant in the webhook response.
func (s *DefaultService) applyFunctionCall(ctx context.Context, conv *models.Conversation, evt *models.WebhookEvent) (map[string]any, error) {
	var p models.FunctionCallPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid function.called payload: %w", err)
	}
	if conv.State != models.ConversationInProgress {
		utils.GetLogger().Warn("ignoring function call on non-live conversation",
			zap.String("callID", conv.CallID), zap.String("state", string(conv.State)),
			zap.String("function", p.Name))
		return map[string]any{"status": "ignored", "reason": "out_of_order"}, nil
	}

	club, err := s.Clubs.GetByID(ctx, conv.ClubID)
	if err != nil {
		return nil, fmt.Errorf("failed to load club %s: %w", conv.ClubID, err)
	}

	conv.State = models.ConversationFunctionPending
	result, err := s.dispatchFunction(ctx, conv, club, p)
	if err != nil {
		// Internal failure: nothing was persisted, the state transition
		// is abandoned with the rest of the event.
		return nil, err
	}
	conv.State = models.ConversationInProgress
	return result, nil
}

func (s *DefaultService) applyCallEnded(conv *models.Conversation, evt *models.WebhookEvent, now time.Time) (map[string]any, error) {
	var p models.CallEndedPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid call.ended payload: %w", err)
	}
	if conv.State == models.ConversationEnded {
		return map[string]any{"status": "ended"}, nil
	}
	conv.State = models.ConversationEnded
	conv.EndedAt = &now
	conv.Outcome = p.Reason
	utils.GetLogger().Info("call ended",
		zap.String("callID", conv.CallID),
		zap.String("reason", p.Reason),
		zap.Int("durationSec", p.DurationSec))
	return map[string]any{"status": "ended"}, nil
}

// resolveClub maps the provider's assistant id (or, failing that, the
// dialed club number) to a club, consulting the cache first.
func (s *DefaultService) resolveClub(ctx context.Context, assistantID, clubNumber string) (*models.Club, error) {
	if assistantID != "" {
		if club := s.cachedClub(ctx, "club:assistant:"+assistantID); club != nil {
			return club, nil
		}
		club, err := s.Clubs.GetByAssistantID(ctx, assistantID)
		if err == nil {
			s.cacheClub(ctx, "club:assistant:"+assistantID, club)
			return club, nil
		}
	}
	if clubNumber != "" {
		club, err := s.Clubs.GetByAssignedNumber(ctx, clubNumber)
		if err == nil {
			return club, nil
		}
	}
	return nil, fmt.Errorf("no club matches assistant %q or number %q", assistantID, clubNumber)
}

func (s *DefaultService) cachedClub(ctx context.Context, key string) *models.Club {
	if s.Cache == nil {
		return nil
	}
	raw, err := s.Cache.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var club models.Club
	if err := json.Unmarshal([]byte(raw), &club); err != nil {
		return nil
	}
	return &club
}

func (s *DefaultService) cacheClub(ctx context.Context, key string, club *models.Club) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(club)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, raw, clubCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache club", zap.String("key", key), zap.Error(err))
	}
}

// ensureCustomer returns the customer for the caller's number, creating
// a placeholder lead on first contact.
func (s *DefaultService) ensureCustomer(ctx context.Context, club *models.Club, phone string, now time.Time) (*models.Customer, error) {
	cust, err := s.Customers.GetByPhone(ctx, club.ID, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer by phone: %w", err)
	}
	if cust != nil {
		cust.LastContactAt = now
		cust.UpdatedAt = now
		if err := s.Customers.Update(ctx, cust); err != nil {
			return nil, fmt.Errorf("failed to touch customer %s: %w", cust.ID, err)
		}
		return cust, nil
	}
	cust = &models.Customer{
		ID:             uuid.NewString(),
		ClubID:         club.ID,
		Name:           "Unknown Caller",
		Phone:          phone,
		Status:         models.CustomerLead,
		Source:         "phone_call",
		FirstContactAt: now,
		LastContactAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Customers.Create(ctx, cust); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return cust, nil
}

func (s *DefaultService) GetByID(ctx context.Context, conversationID string) (*models.Conversation, error) {
	return s.Conversations.GetByID(ctx, conversationID)
}

func (s *DefaultService) List(ctx context.Context, clubID string, state models.ConversationState) ([]models.Conversation, error) {
	return s.Conversations.List(ctx, clubID, state)
}

func (s *DefaultService) CountByState(ctx context.Context, clubID string) (map[string]int64, error) {
	return s.Conversations.CountByState(ctx, clubID)
}
