package notification

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clubvoice/config"
	notificationRepo "clubvoice/database/repository/notification"
	"clubvoice/models"
	"clubvoice/services/tasks"
	"clubvoice/utils"
)

// RetryPolicy bounds the dispatcher's backoff schedule.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// PolicyFromConfig builds the retry policy from the loaded app config.
func PolicyFromConfig() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: config.AppConfig.NotifyMaxAttempts,
		BaseDelay:   time.Duration(config.AppConfig.NotifyBaseDelaySec) * time.Second,
		MaxDelay:    time.Duration(config.AppConfig.NotifyMaxDelaySec) * time.Second,
	}
}

// Dispatcher is the production Service implementation. Delivery tasks
// carry no asynq-level retries; the Dispatcher schedules every retry
// itself so the full attempt history lives on the notification record.
type Dispatcher struct {
	Repo     notificationRepo.NotificationRepository
	Sender   Sender
	Enqueuer Enqueuer
	Policy   RetryPolicy

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
	// Jitter is overridable in tests; nil means rand.Int63n.
	Jitter func(n int64) int64
}

func NewDispatcher(repo notificationRepo.NotificationRepository, sender Sender, enq Enqueuer) (*Dispatcher, error) {
	if repo == nil || sender == nil || enq == nil {
		return nil, fmt.Errorf("notification dispatcher initialization error: repo, sender or enqueuer is nil")
	}
	return &Dispatcher{
		Repo:     repo,
		Sender:   sender,
		Enqueuer: enq,
		Policy:   PolicyFromConfig(),
	}, nil
}

func (d *Dispatcher) BookingConfirmed(ctx context.Context, club *models.Club, b *models.Booking) error {
	return d.queueBookingMessage(ctx, club, b, models.NotifyBookingConfirmation, confirmationBody(club, b))
}

func (d *Dispatcher) BookingModified(ctx context.Context, club *models.Club, b *models.Booking) error {
	return d.queueBookingMessage(ctx, club, b, models.NotifyBookingModification, modificationBody(club, b))
}

// BookingCancelled first cancels every notification for the booking
// that is still queued or retrying, then tells the customer.
func (d *Dispatcher) BookingCancelled(ctx context.Context, club *models.Club, b *models.Booking) error {
	pending, err := d.Repo.FindActiveByBooking(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("failed to look up pending notifications for booking %s: %w", b.ID, err)
	}
	for i := range pending {
		if _, err := d.Cancel(ctx, pending[i].ID); err != nil {
			utils.GetLogger().Error("failed to cancel pending notification",
				zap.String("notificationID", pending[i].ID), zap.Error(err))
		}
	}
	return d.queueBookingMessage(ctx, club, b, models.NotifyBookingCancellation, cancellationBody(club, b))
}

func (d *Dispatcher) QueueBookingReminder(ctx context.Context, club *models.Club, b *models.Booking) error {
	if !b.Active() {
		utils.GetLogger().Info("skipping reminder for inactive booking",
			zap.String("bookingID", b.ID), zap.String("status", string(b.Status)))
		return nil
	}
	return d.queueBookingMessage(ctx, club, b, models.NotifyBookingReminder, reminderBody(club, b))
}

func (d *Dispatcher) QueueEscalation(ctx context.Context, club *models.Club, conv *models.Conversation, reason, summary string) error {
	if club.ManagerPhone == "" {
		return fmt.Errorf("club %s has no manager phone for escalation", club.ID)
	}
	n := &models.Notification{
		ClubID:         club.ID,
		CustomerID:     conv.CustomerID,
		ConversationID: conv.ID,
		Type:           models.NotifyEscalation,
		RecipientName:  club.ManagerName,
		RecipientPhone: club.ManagerPhone,
		Body:           escalationBody(club, conv, reason, summary),
	}
	return d.queue(ctx, n)
}

func (d *Dispatcher) QueueLeadAlert(ctx context.Context, club *models.Club, cust *models.Customer) error {
	if club.ManagerPhone == "" {
		utils.GetLogger().Warn("club has no manager phone, dropping lead alert",
			zap.String("clubID", club.ID))
		return nil
	}
	n := &models.Notification{
		ClubID:         club.ID,
		CustomerID:     cust.ID,
		Type:           models.NotifyLeadAlert,
		RecipientName:  club.ManagerName,
		RecipientPhone: club.ManagerPhone,
		Body:           leadAlertBody(club, cust),
	}
	return d.queue(ctx, n)
}

// QueueBatch queues one notification per target. Targets fail
// independently; the returned error aggregates any queueing failures.
func (d *Dispatcher) QueueBatch(ctx context.Context, club *models.Club, typ models.NotificationType, body string, targets []Target) ([]models.Notification, error) {
	var queued []models.Notification
	var errs []error
	for _, t := range targets {
		if t.Phone == "" {
			errs = append(errs, fmt.Errorf("target %q has no phone", t.Name))
			continue
		}
		n := &models.Notification{
			ClubID:         club.ID,
			Type:           typ,
			RecipientName:  t.Name,
			RecipientPhone: t.Phone,
			Body:           body,
		}
		if err := d.queue(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("target %q: %w", t.Phone, err))
			continue
		}
		queued = append(queued, *n)
	}
	return queued, errors.Join(errs...)
}

// Deliver performs one delivery attempt against the SMS provider and
// advances the notification's state machine. The deliverable check runs
// here, at execution time, so a cancellation issued while a retry was
// sitting in the queue wins.
func (d *Dispatcher) Deliver(ctx context.Context, notificationID string) error {
	n, err := d.Repo.GetByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("failed to load notification %s: %w", notificationID, err)
	}
	if !n.Deliverable() {
		utils.GetLogger().Info("skipping delivery for non-deliverable notification",
			zap.String("notificationID", n.ID), zap.String("status", string(n.Status)))
		return nil
	}

	now := d.now()
	n.Attempts++
	n.LastAttemptAt = &now
	n.NextRetryAt = nil

	res, sendErr := d.Sender.Send(ctx, n.RecipientPhone, n.Body)
	if sendErr == nil {
		n.Status = res.Status
		if n.Status != models.NotificationDelivered {
			n.Status = models.NotificationSent
		}
		n.ProviderRef = res.ProviderRef
		n.ErrorMessage = ""
		n.UpdatedAt = now
		if err := d.Repo.Update(ctx, n); err != nil {
			return fmt.Errorf("failed to record delivery of notification %s: %w", n.ID, err)
		}
		return nil
	}

	n.ErrorMessage = sendErr.Error()
	n.UpdatedAt = now

	if permanent(sendErr) || n.Attempts >= n.MaxAttempts {
		n.Status = models.NotificationFailed
		if err := d.Repo.Update(ctx, n); err != nil {
			return fmt.Errorf("failed to record failure of notification %s: %w", n.ID, err)
		}
		utils.GetLogger().Warn("notification failed",
			zap.String("notificationID", n.ID),
			zap.Int("attempts", n.Attempts),
			zap.Bool("permanent", permanent(sendErr)),
			zap.Error(sendErr))
		return nil
	}

	delay := d.backoff(n.Attempts)
	next := now.Add(delay)
	n.Status = models.NotificationRetrying
	n.NextRetryAt = &next
	if err := d.Repo.Update(ctx, n); err != nil {
		return fmt.Errorf("failed to record retry of notification %s: %w", n.ID, err)
	}
	if err := d.enqueueDeliver(n.ID, delay); err != nil {
		return fmt.Errorf("failed to schedule retry for notification %s: %w", n.ID, err)
	}
	utils.GetLogger().Info("notification retry scheduled",
		zap.String("notificationID", n.ID),
		zap.Int("attempts", n.Attempts),
		zap.Duration("delay", delay))
	return nil
}

// Retry moves a failed notification back to queued with attempts reset.
func (d *Dispatcher) Retry(ctx context.Context, notificationID string) (*models.Notification, error) {
	n, err := d.Repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification %s: %w", notificationID, err)
	}
	if n.Status != models.NotificationFailed {
		return nil, fmt.Errorf("notification %s is %s, only failed notifications can be retried", n.ID, n.Status)
	}
	n.Status = models.NotificationQueued
	n.Attempts = 0
	n.ErrorMessage = ""
	n.NextRetryAt = nil
	n.UpdatedAt = d.now()
	if err := d.Repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to re-queue notification %s: %w", n.ID, err)
	}
	if err := d.enqueueDeliver(n.ID, 0); err != nil {
		return nil, fmt.Errorf("failed to schedule delivery for notification %s: %w", n.ID, err)
	}
	return n, nil
}

// Cancel stops a queued or retrying notification. Cancelling twice is a
// no-op success.
func (d *Dispatcher) Cancel(ctx context.Context, notificationID string) (*models.Notification, error) {
	n, err := d.Repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification %s: %w", notificationID, err)
	}
	if n.Status == models.NotificationCancelled {
		return n, nil
	}
	if !n.Deliverable() {
		return nil, fmt.Errorf("notification %s is %s and can no longer be cancelled", n.ID, n.Status)
	}
	n.Status = models.NotificationCancelled
	n.NextRetryAt = nil
	n.UpdatedAt = d.now()
	if err := d.Repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to cancel notification %s: %w", n.ID, err)
	}
	return n, nil
}

func (d *Dispatcher) GetByID(ctx context.Context, notificationID string) (*models.Notification, error) {
	return d.Repo.GetByID(ctx, notificationID)
}

func (d *Dispatcher) List(ctx context.Context, filter notificationRepo.ListFilter) ([]models.Notification, error) {
	return d.Repo.List(ctx, filter)
}

func (d *Dispatcher) CountByStatus(ctx context.Context, clubID string) (map[string]int64, error) {
	return d.Repo.CountByStatus(ctx, clubID)
}

func (d *Dispatcher) queueBookingMessage(ctx context.Context, club *models.Club, b *models.Booking, typ models.NotificationType, body string) error {
	if b.ContactPhone == "" {
		utils.GetLogger().Info("booking has no contact phone, skipping notification",
			zap.String("bookingID", b.ID), zap.String("type", string(typ)))
		return nil
	}
	n := &models.Notification{
		ClubID:         club.ID,
		CustomerID:     b.CustomerID,
		BookingID:      b.ID,
		ConversationID: b.ConversationID,
		Type:           typ,
		RecipientName:  b.ContactName,
		RecipientPhone: b.ContactPhone,
		Body:           body,
	}
	return d.queue(ctx, n)
}

func (d *Dispatcher) queue(ctx context.Context, n *models.Notification) error {
	now := d.now()
	n.ID = uuid.NewString()
	n.Channel = models.ChannelSMS
	n.Status = models.NotificationQueued
	n.MaxAttempts = d.policy().MaxAttempts
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := d.Repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to queue %s notification: %w", n.Type, err)
	}
	if err := d.enqueueDeliver(n.ID, 0); err != nil {
		// The record stays queued; a manual retry can pick it up.
		utils.GetLogger().Error("failed to enqueue notification delivery",
			zap.String("notificationID", n.ID), zap.Error(err))
	}
	return nil
}

func (d *Dispatcher) enqueueDeliver(notificationID string, delay time.Duration) error {
	task, opts, err := tasks.NewNotificationDeliverTask(notificationID, delay)
	if err != nil {
		return err
	}
	_, err = d.Enqueuer.Enqueue(task, opts...)
	return err
}

// backoff computes the delay before the next attempt: base doubled per
// attempt, capped, with up to 10% jitter on top.
func (d *Dispatcher) backoff(attempts int) time.Duration {
	p := d.policy()
	delay := p.BaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if j := int64(delay) / 10; j > 0 {
		delay += time.Duration(d.jitter(j))
	}
	return delay
}

// permanent reports whether the send error should not be retried.
// Provider rejections (4xx other than timeout/rate-limit) are final;
// everything else, including network errors, is treated as transient.
func permanent(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return !pe.Transient()
	}
	return false
}

func (d *Dispatcher) policy() RetryPolicy {
	p := d.Policy
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 30 * time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Minute
	}
	return p
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func (d *Dispatcher) jitter(n int64) int64 {
	if d.Jitter != nil {
		return d.Jitter(n)
	}
	return rand.Int63n(n)
}
