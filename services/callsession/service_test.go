package callsession

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "clubvoice/database/repository/booking"
	notificationRepo "clubvoice/database/repository/notification"
	"clubvoice/models"
	"clubvoice/services/booking"
	"clubvoice/services/notification"
	"clubvoice/services/scheduling"
)

// In-memory repositories. The machine is exercised against the real
// booking service and notification dispatcher so function calls flow
// through the same paths production uses.

type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *memBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, assert.AnError
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) Update(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memBookingRepo) FindOverlapping(_ context.Context, clubID, resource string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ClubID != clubID || b.Resource != resource || b.ID == excludeID {
			continue
		}
		if !b.Active() || !b.Overlaps(start, end) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *memBookingRepo) CountActive(ctx context.Context, clubID, resource string, start, end time.Time) (int64, error) {
	overlapping, _ := r.FindOverlapping(ctx, clubID, resource, start, end, "")
	return int64(len(overlapping)), nil
}

func (r *memBookingRepo) List(_ context.Context, _ bookingRepo.ListFilter) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBookingRepo) CountByStatus(_ context.Context, _ string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

type memClubRepo struct {
	club *models.Club
}

func (r *memClubRepo) Create(context.Context, *models.Club) error { return nil }
func (r *memClubRepo) GetByID(_ context.Context, id string) (*models.Club, error) {
	if r.club.ID != id {
		return nil, assert.AnError
	}
	return r.club, nil
}
func (r *memClubRepo) GetByAssistantID(_ context.Context, assistantID string) (*models.Club, error) {
	if r.club.AssistantID != assistantID {
		return nil, assert.AnError
	}
	return r.club, nil
}
func (r *memClubRepo) GetByAssignedNumber(_ context.Context, number string) (*models.Club, error) {
	if r.club.AssignedNumber != number {
		return nil, assert.AnError
	}
	return r.club, nil
}
func (r *memClubRepo) Update(context.Context, *models.Club) error { return nil }
func (r *memClubRepo) List(context.Context) ([]models.Club, error) {
	return []models.Club{*r.club}, nil
}

type memCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]*models.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[string]*models.Customer)}
}

func (r *memCustomerRepo) Create(_ context.Context, c *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, id string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, assert.AnError
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomerRepo) GetByPhone(_ context.Context, clubID, phone string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ClubID == clubID && c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCustomerRepo) Update(_ context.Context, c *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *memCustomerRepo) List(_ context.Context, _ string, _ models.CustomerStatus) ([]models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

type memConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{conversations: make(map[string]*models.Conversation)}
}

func (r *memConversationRepo) Create(_ context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.conversations[c.ID] = &cp
	return nil
}

func (r *memConversationRepo) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, assert.AnError
	}
	cp := *c
	return &cp, nil
}

func (r *memConversationRepo) GetByCallID(_ context.Context, callID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conversations {
		if c.CallID == callID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memConversationRepo) Update(_ context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.conversations[c.ID] = &cp
	return nil
}

func (r *memConversationRepo) List(_ context.Context, _ string, _ models.ConversationState) ([]models.Conversation, error) {
	return nil, nil
}

func (r *memConversationRepo) CountByState(_ context.Context, _ string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*models.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{notifications: make(map[string]*models.Notification)}
}

func (r *memNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *memNotificationRepo) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, assert.AnError
	}
	cp := *n
	return &cp, nil
}

func (r *memNotificationRepo) Update(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *memNotificationRepo) List(_ context.Context, _ notificationRepo.ListFilter) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		out = append(out, *n)
	}
	return out, nil
}

func (r *memNotificationRepo) FindActiveByBooking(_ context.Context, bookingID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.BookingID == bookingID && n.Deliverable() {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) CountByStatus(_ context.Context, _ string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (r *memNotificationRepo) byType(typ models.NotificationType) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.Type == typ {
			out = append(out, *n)
		}
	}
	return out
}

type noopSender struct{}

func (noopSender) Send(context.Context, string, string) (notification.SendResult, error) {
	return notification.SendResult{Status: models.NotificationSent}, nil
}

type noopEnqueuer struct{}

func (noopEnqueuer) Enqueue(*asynq.Task, ...asynq.Option) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{}, nil
}

var sessionNow = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

func sessionClub() *models.Club {
	return &models.Club{
		ID:   "club-riverside",
		Name: "Riverside Padel",
		Resources: []models.Resource{
			{Name: "Court 1", Type: "padel_court", Capacity: 1},
		},
		OpeningHours: models.OpeningHours{
			"monday": {{Open: "08:00", Close: "22:00"}},
		},
		AssistantID:    "asst-riverside",
		AssignedNumber: "+46850001000",
		CustomGreeting: "Welcome to Riverside Padel!",
		ManagerName:    "Anna Berg",
		ManagerPhone:   "+46700000099",
		MembershipTiers: []models.MembershipTier{
			{Name: "Standard", Price: 499, Currency: "SEK", Period: "month"},
		},
	}
}

type fixture struct {
	svc           *DefaultService
	bookings      *memBookingRepo
	customers     *memCustomerRepo
	conversations *memConversationRepo
	notifications *memNotificationRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	club := sessionClub()
	bookings := newMemBookingRepo()
	customers := newMemCustomerRepo()
	conversations := newMemConversationRepo()
	notifications := newMemNotificationRepo()
	clubs := &memClubRepo{club: club}

	dispatcher := &notification.Dispatcher{
		Repo:     notifications,
		Sender:   noopSender{},
		Enqueuer: noopEnqueuer{},
		Policy:   notification.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: time.Minute},
		Now:      func() time.Time { return sessionNow },
		Jitter:   func(int64) int64 { return 0 },
	}

	bookingService := &booking.DefaultBookingService{
		Repo:     bookings,
		ClubRepo: clubs,
		Checker: scheduling.NewChecker(bookings, scheduling.Policy{
			SlotGranularity: 30 * time.Minute,
			MinDuration:     30 * time.Minute,
		}),
		Locks:    scheduling.NewLockTable(),
		Events:   dispatcher,
		Enqueuer: noopEnqueuer{},
		Now:      func() time.Time { return sessionNow },
	}

	svc, err := NewDefaultService(conversations, customers, clubs, bookingService, dispatcher, nil)
	require.NoError(t, err)
	svc.Now = func() time.Time { return sessionNow }

	return &fixture{
		svc:           svc,
		bookings:      bookings,
		customers:     customers,
		conversations: conversations,
		notifications: notifications,
	}
}

func event(t *testing.T, kind, callID, eventID string, payload any) *models.WebhookEvent {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &models.WebhookEvent{
		Kind:      kind,
		CallID:    callID,
		EventID:   eventID,
		Timestamp: sessionNow,
		Payload:   raw,
	}
}

func startCall(t *testing.T, f *fixture, callID string) *models.Conversation {
	t.Helper()
	_, err := f.svc.HandleEvent(context.Background(), event(t, models.EventCallStarted, callID, callID+"-start", models.CallStartedPayload{
		AssistantID:  "asst-riverside",
		CallerNumber: "+46700000001",
	}))
	require.NoError(t, err)
	conv, err := f.conversations.GetByCallID(context.Background(), callID)
	require.NoError(t, err)
	require.NotNil(t, conv)
	return conv
}

func functionEvent(t *testing.T, callID, eventID, name string, args map[string]any) *models.WebhookEvent {
	t.Helper()
	return event(t, models.EventFunctionCalled, callID, eventID, models.FunctionCallPayload{Name: name, Arguments: args})
}

func TestCallStartedCreatesConversationAndLead(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.HandleEvent(context.Background(), event(t, models.EventCallStarted, "call-1", "evt-1", models.CallStartedPayload{
		AssistantID:  "asst-riverside",
		CallerNumber: "+46700000001",
	}))
	require.NoError(t, err)
	assert.Equal(t, "in_progress", result["status"])
	assert.Equal(t, "Welcome to Riverside Padel!", result["greeting"])

	conv, err := f.conversations.GetByCallID(context.Background(), "call-1")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, models.ConversationInProgress, conv.State)
	assert.Equal(t, "+46700000001", conv.Phone)

	cust, err := f.customers.GetByPhone(context.Background(), "club-riverside", "+46700000001")
	require.NoError(t, err)
	require.NotNil(t, cust)
	assert.Equal(t, "Unknown Caller", cust.Name)
	assert.Equal(t, models.CustomerLead, cust.Status)
	assert.Equal(t, cust.ID, conv.CustomerID)
}

func TestEventsForUnknownCallRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.HandleEvent(context.Background(), event(t, models.EventTranscriptUpdate, "ghost-call", "evt-1", models.TranscriptPayload{
		Role: "customer", Content: "hello?",
	}))
	ue, ok := IsUnknownCall(err)
	require.True(t, ok, "expected UnknownCallError, got %v", err)
	assert.Equal(t, "ghost-call", ue.CallID)
}

func TestTranscriptAppendsInOrder(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")
	ctx := context.Background()

	_, err := f.svc.HandleEvent(ctx, event(t, models.EventTranscriptUpdate, "call-1", "evt-t1", models.TranscriptPayload{
		Role: "customer", Content: "I want to book a court",
	}))
	require.NoError(t, err)

	conv, _ := f.conversations.GetByCallID(ctx, "call-1")
	require.Len(t, conv.Transcript, 1)
	assert.Equal(t, "I want to book a court", conv.Transcript[0].Content)
}

func TestOutOfOrderTranscriptIgnoredButRecorded(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")
	ctx := context.Background()

	_, err := f.svc.HandleEvent(ctx, event(t, models.EventCallEnded, "call-1", "evt-end", models.CallEndedPayload{Reason: "hangup"}))
	require.NoError(t, err)

	result, err := f.svc.HandleEvent(ctx, event(t, models.EventTranscriptUpdate, "call-1", "evt-late", models.TranscriptPayload{
		Role: "customer", Content: "straggler",
	}))
	require.NoError(t, err)
	assert.Equal(t, "ignored", result["status"])

	conv, _ := f.conversations.GetByCallID(ctx, "call-1")
	assert.Empty(t, conv.Transcript)
	// The event is recorded, so a replay returns the same answer.
	require.NotNil(t, conv.AppliedEventByID("evt-late"))
}

func TestCreateBookingFunctionConfirmsAndNotifies(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")
	ctx := context.Background()

	result, err := f.svc.HandleEvent(ctx, functionEvent(t, "call-1", "evt-fn1", models.FnCreateBooking, map[string]any{
		"resource":      "Court 1",
		"start_time":    "2026-09-07 10:00",
		"end_time":      "2026-09-07 11:00",
		"customer_name": "Erik Lind",
	}))
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.NotEmpty(t, result["booking_id"])
	assert.NotEmpty(t, result["confirmation_code"])

	all, _ := f.bookings.List(ctx, bookingRepo.ListFilter{})
	require.Len(t, all, 1)
	assert.Equal(t, models.BookingConfirmed, all[0].Status)
	assert.Equal(t, models.SourcePhoneAI, all[0].Source)
	assert.Equal(t, "+46700000001", all[0].ContactPhone)

	confirmations := f.notifications.byType(models.NotifyBookingConfirmation)
	require.Len(t, confirmations, 1)
	assert.Contains(t, confirmations[0].Body, "Court 1")

	conv, _ := f.conversations.GetByCallID(ctx, "call-1")
	assert.Equal(t, models.ConversationInProgress, conv.State)
}

// An occupied slot comes back as a handled rejection with alternatives,
// and the conversation keeps going.
func TestCreateBookingConflictOffersAlternatives(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")
	ctx := context.Background()

	_, err := f.svc.HandleEvent(ctx, functionEvent(t, "call-1", "evt-fn1", models.FnCreateBooking, map[string]any{
		"resource":   "Court 1",
		"start_time": "2026-09-07 10:00",
		"end_time":   "2026-09-07 11:00",
	}))
	require.NoError(t, err)

	result, err := f.svc.HandleEvent(ctx, functionEvent(t, "call-1", "evt-fn2", models.FnCreateBooking, map[string]any{
		"resource":   "Court 1",
		"start_time": "2026-09-07 10:30",
		"end_time":   "2026-09-07 11:30",
	}))
	require.NoError(t, err)
	assert.Equal(t, false, result["success"])
	alts, ok := result["alternatives"].([]map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, alts)
	assert.Equal(t, "2026-09-07 11:00", alts[0]["start"])

	all, _ := f.bookings.List(ctx, bookingRepo.ListFilter{})
	assert.Len(t, all, 1)

	conv, _ := f.conversations.GetByCallID(ctx, "call-1")
	assert.Equal(t, models.ConversationInProgress, conv.State)
}

// Replaying an event id returns the recorded result and applies no new
// side effects.
func TestEventReplayIsIdempotent(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")
	ctx := context.Background()

	evt := functionEvent(t, "call-1", "evt-fn1", models.FnCreateBooking, map[string]any{
		"resource":   "Court 1",
		"start_time": "2026-09-07 10:00",
		"end_time":   "2026-09-07 11:00",
	})
	first, err := f.svc.HandleEvent(ctx, evt)
	require.NoError(t, err)
	require.Equal(t, true, first["success"])

	replay, err := f.svc.HandleEvent(ctx, evt)
	require.NoError(t, err)
	assert.Equal(t, first["booking_id"], replay["booking_id"])

	all, _ := f.bookings.List(ctx, bookingRepo.ListFilter{})
	assert.Len(t, all, 1)
	confirmations := f.notifications.byType(models.NotifyBookingConfirmation)
	assert.Len(t, confirmations, 1)
}

func TestCaptureLeadAdvancesFunnelAndAlertsManager(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")
	ctx := context.Background()

	result, err := f.svc.HandleEvent(ctx, functionEvent(t, "call-1", "evt-lead", models.FnCaptureLead, map[string]any{
		"name":          "Erik Lind",
		"email":         "erik@example.se",
		"interested_in": "padel membership",
	}))
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])

	cust, err := f.customers.GetByPhone(ctx, "club-riverside", "+46700000001")
	require.NoError(t, err)
	require.NotNil(t, cust)
	assert.Equal(t, "Erik Lind", cust.Name)
	assert.Equal(t, models.CustomerProspect, cust.Status)
	assert.Equal(t, "padel membership", cust.InterestedIn)

	alerts := f.notifications.byType(models.NotifyLeadAlert)
	require.Len(t, alerts, 1)
	assert.Equal(t, "+46700000099", alerts[0].RecipientPhone)
	assert.Contains(t, alerts[0].Body, "Erik Lind")
}

// Concurrent deliveries of one event id must collapse to a single
// application: one lead alert, one applied-event record, every caller
// seeing the same result.
func TestConcurrentDuplicateEventAppliedOnce(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")
	ctx := context.Background()

	evt := functionEvent(t, "call-1", "evt-dup", models.FnCaptureLead, map[string]any{
		"name":          "Erik Lind",
		"interested_in": "padel membership",
	})

	const workers = 8
	results := make([]map[string]any, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.HandleEvent(ctx, evt)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}

	alerts := f.notifications.byType(models.NotifyLeadAlert)
	assert.Len(t, alerts, 1)

	conv, _ := f.conversations.GetByCallID(ctx, "call-1")
	applied := 0
	for _, ae := range conv.Applied {
		if ae.EventID == "evt-dup" {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
}

func TestEscalationMarksConversationAndTextsManager(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")
	ctx := context.Background()

	result, err := f.svc.HandleEvent(ctx, functionEvent(t, "call-1", "evt-esc", models.FnEscalateToManager, map[string]any{
		"reason":  "refund request",
		"summary": "caller disputes last month's invoice",
	}))
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])

	conv, _ := f.conversations.GetByCallID(ctx, "call-1")
	assert.True(t, conv.Escalated)

	escalations := f.notifications.byType(models.NotifyEscalation)
	require.Len(t, escalations, 1)
	assert.Contains(t, escalations[0].Body, "refund request")
}

func TestMembershipInfoFunction(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")

	result, err := f.svc.HandleEvent(context.Background(), functionEvent(t, "call-1", "evt-mem", models.FnMembershipInfo, nil))
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	tiers, ok := result["tiers"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, tiers, 1)
	assert.Equal(t, "Standard", tiers[0]["name"])
}

func TestUnknownFunctionAcknowledged(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")

	result, err := f.svc.HandleEvent(context.Background(), functionEvent(t, "call-1", "evt-x", "order_pizza", nil))
	require.NoError(t, err)
	assert.Equal(t, false, result["success"])
	assert.Contains(t, fmt.Sprint(result["error"]), "order_pizza")
}

func TestCallEndedIsTerminal(t *testing.T) {
	f := newFixture(t)
	startCall(t, f, "call-1")
	ctx := context.Background()

	result, err := f.svc.HandleEvent(ctx, event(t, models.EventCallEnded, "call-1", "evt-end", models.CallEndedPayload{
		Reason: "completed", DurationSec: 240,
	}))
	require.NoError(t, err)
	assert.Equal(t, "ended", result["status"])

	conv, _ := f.conversations.GetByCallID(ctx, "call-1")
	assert.Equal(t, models.ConversationEnded, conv.State)
	require.NotNil(t, conv.EndedAt)
	assert.Equal(t, "completed", conv.Outcome)

	// A second call.ended with a fresh event id changes nothing.
	again, err := f.svc.HandleEvent(ctx, event(t, models.EventCallEnded, "call-1", "evt-end-2", models.CallEndedPayload{Reason: "hangup"}))
	require.NoError(t, err)
	assert.Equal(t, "ended", again["status"])
	conv, _ = f.conversations.GetByCallID(ctx, "call-1")
	assert.Equal(t, "completed", conv.Outcome)
}

func TestRepeatCallerIsRecognised(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	startCall(t, f, "call-1")
	_, err := f.svc.HandleEvent(ctx, event(t, models.EventCallEnded, "call-1", "evt-end", models.CallEndedPayload{Reason: "completed"}))
	require.NoError(t, err)

	startCall(t, f, "call-2")

	customers, err := f.customers.List(ctx, "club-riverside", "")
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}
