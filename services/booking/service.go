package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "clubvoice/database/repository/booking"
	clubRepo "clubvoice/database/repository/club"
	"clubvoice/models"
	"clubvoice/services/scheduling"
	"clubvoice/services/tasks"
	"clubvoice/utils"
)

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo     bookingRepo.BookingRepository
	ClubRepo clubRepo.ClubRepository
	Checker  *scheduling.Checker
	Locks    *scheduling.LockTable
	Events   LifecycleEvents
	Enqueuer Enqueuer

	// ReminderLead is how far before start the reminder SMS fires.
	// Zero disables reminders.
	ReminderLead time.Duration

	// AlternativeProbes is how many granularity boundaries are probed
	// when suggesting free slots. Zero means the default of 4.
	AlternativeProbes int

	// Now is the time source; overridable in tests.
	Now func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create validates the requested slot under the per-resource lock,
// persists the booking as confirmed and kicks off the downstream
// pipeline: lifecycle event, best-effort marketplace sync, reminder.
func (s *DefaultBookingService) Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	logger := utils.GetLogger()

	club, err := s.ClubRepo.GetByID(ctx, req.ClubID)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	b := &models.Booking{
		ID:             uuid.New().String(),
		ClubID:         club.ID,
		Resource:       req.Resource,
		CustomerID:     req.CustomerID,
		ConversationID: req.ConversationID,
		Start:          req.Start.UTC(),
		End:            req.End.UTC(),
		Status:         models.BookingConfirmed,
		Source:         req.Source,
		ContactName:    req.ContactName,
		ContactPhone:   req.ContactPhone,
		ContactEmail:   req.ContactEmail,
		Notes:          req.Notes,
	}
	if club.MarketplaceClubID != "" {
		b.SyncStatus = models.SyncPending
	}

	unlock := s.Locks.Lock(club.ID, req.Resource)
	defer unlock()

	if err := s.Checker.Check(ctx, club, b, "", s.now()); err != nil {
		return nil, err
	}

	now := s.now()
	b.ConfirmationCode = newConfirmationCode()
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.emitConfirmed(ctx, club, b)
	s.enqueueSync(b, logger)
	s.enqueueReminder(b, logger)
	return b, nil
}

// Modify re-validates the new interval with the booking itself excluded
// from the overlap query and updates it atomically under the resource
// lock. The original booking is untouched on conflict.
func (s *DefaultBookingService) Modify(ctx context.Context, bookingID string, newStart, newEnd time.Time) (*models.Booking, error) {
	logger := utils.GetLogger()

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("modify booking: %w", err)
	}
	if !b.Active() {
		return nil, fmt.Errorf("modify booking: booking %s is %s", bookingID, b.Status)
	}
	club, err := s.ClubRepo.GetByID(ctx, b.ClubID)
	if err != nil {
		return nil, fmt.Errorf("modify booking: %w", err)
	}

	unlock := s.Locks.Lock(b.ClubID, b.Resource)
	defer unlock()

	proposed := *b
	proposed.Start = newStart.UTC()
	proposed.End = newEnd.UTC()
	if err := s.Checker.Check(ctx, club, &proposed, b.ID, s.now()); err != nil {
		return nil, err
	}

	b.Start = proposed.Start
	b.End = proposed.End
	b.UpdatedAt = s.now()
	// The marketplace must learn the new interval, so a previously
	// synced booking goes back to pending and is re-pushed.
	if club.MarketplaceClubID != "" {
		b.SyncStatus = models.SyncPending
		if b.Status == models.BookingFailedToSync {
			b.Status = models.BookingConfirmed
		}
	}
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("modify booking: %w", err)
	}

	if s.Events != nil {
		if err := s.Events.BookingModified(ctx, club, b); err != nil {
			logger.Error("booking modified event failed", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	s.enqueueSync(b, logger)
	return b, nil
}

// Cancel soft-cancels the booking and frees its interval. Cancelling an
// already-cancelled booking returns the booking unchanged.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	logger := utils.GetLogger()

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	if b.Status == models.BookingCancelled {
		return b, nil
	}

	unlock := s.Locks.Lock(b.ClubID, b.Resource)
	defer unlock()

	now := s.now()
	b.Status = models.BookingCancelled
	b.CancellationReason = reason
	b.CancelledAt = &now
	b.UpdatedAt = now
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	s.enqueueCancelSync(b, logger)

	club, err := s.ClubRepo.GetByID(ctx, b.ClubID)
	if err != nil {
		logger.Error("cancel booking: club lookup failed", zap.String("clubID", b.ClubID), zap.Error(err))
		return b, nil
	}
	if s.Events != nil {
		if err := s.Events.BookingCancelled(ctx, club, b); err != nil {
			logger.Error("booking cancelled event failed", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	return b, nil
}

// Confirm moves a pending booking to confirmed.
func (s *DefaultBookingService) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	if b.Status == models.BookingConfirmed {
		return b, nil
	}
	if b.Status != models.BookingPending {
		return nil, fmt.Errorf("confirm booking: booking %s is %s", bookingID, b.Status)
	}
	b.Status = models.BookingConfirmed
	b.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}

	club, err := s.ClubRepo.GetByID(ctx, b.ClubID)
	if err == nil {
		s.emitConfirmed(ctx, club, b)
	}
	return b, nil
}

// Complete marks a confirmed booking as having taken place.
func (s *DefaultBookingService) Complete(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}
	if b.Status == models.BookingCompleted {
		return b, nil
	}
	if !b.Active() {
		return nil, fmt.Errorf("complete booking: booking %s is %s", bookingID, b.Status)
	}
	b.Status = models.BookingCompleted
	b.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}
	return b, nil
}

func (s *DefaultBookingService) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.Repo.GetByID(ctx, bookingID)
}

func (s *DefaultBookingService) List(ctx context.Context, filter bookingRepo.ListFilter) ([]models.Booking, error) {
	return s.Repo.List(ctx, filter)
}

// CheckAvailability runs the checker without mutating anything.
func (s *DefaultBookingService) CheckAvailability(ctx context.Context, clubID, resource string, start, end time.Time) (*AvailabilityResult, error) {
	club, err := s.ClubRepo.GetByID(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	now := s.now()
	probe := &models.Booking{ClubID: clubID, Resource: resource, Start: start.UTC(), End: end.UTC()}
	err = s.Checker.Check(ctx, club, probe, "", now)
	if err == nil {
		return &AvailabilityResult{Available: true}, nil
	}
	if ce, ok := scheduling.IsConflict(err); ok {
		return &AvailabilityResult{
			Available:    false,
			Reason:       ce.Error(),
			Conflicts:    ce.Conflicts,
			Alternatives: s.Checker.Alternatives(ctx, club, resource, start, end, s.alternativeProbes(), now),
		}, nil
	}
	if ie, ok := scheduling.IsInvalidSlot(err); ok {
		return &AvailabilityResult{Available: false, Reason: ie.Error()}, nil
	}
	return nil, err
}

func (s *DefaultBookingService) emitConfirmed(ctx context.Context, club *models.Club, b *models.Booking) {
	if s.Events == nil {
		return
	}
	if err := s.Events.BookingConfirmed(ctx, club, b); err != nil {
		utils.GetLogger().Error("booking confirmed event failed",
			zap.String("bookingID", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) enqueueSync(b *models.Booking, logger *zap.Logger) {
	if s.Enqueuer == nil || b.SyncStatus != models.SyncPending {
		return
	}
	task, opts, err := tasks.NewMarketplaceSyncTask(b.ID)
	if err == nil {
		_, err = s.Enqueuer.Enqueue(task, opts...)
	}
	if err != nil {
		logger.Error("failed to enqueue marketplace sync", zap.String("bookingID", b.ID), zap.Error(err))
	}
}

// enqueueCancelSync schedules removal of a cancelled booking from the
// marketplace. Only a booking that actually made it there needs one.
func (s *DefaultBookingService) enqueueCancelSync(b *models.Booking, logger *zap.Logger) {
	if s.Enqueuer == nil || b.SyncStatus != models.SyncDone || b.MarketplaceRef == "" {
		return
	}
	task, opts, err := tasks.NewMarketplaceCancelTask(b.ID)
	if err == nil {
		_, err = s.Enqueuer.Enqueue(task, opts...)
	}
	if err != nil {
		logger.Error("failed to enqueue marketplace cancel", zap.String("bookingID", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) enqueueReminder(b *models.Booking, logger *zap.Logger) {
	if s.Enqueuer == nil || s.ReminderLead <= 0 {
		return
	}
	fireAt := b.Start.Add(-s.ReminderLead)
	if !fireAt.After(s.now()) {
		return
	}
	task, opts, err := tasks.NewBookingReminderTask(b.ID, fireAt)
	if err == nil {
		_, err = s.Enqueuer.Enqueue(task, opts...)
	}
	if err != nil {
		logger.Error("failed to enqueue booking reminder", zap.String("bookingID", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) alternativeProbes() int {
	if s.AlternativeProbes > 0 {
		return s.AlternativeProbes
	}
	return 4
}

func newConfirmationCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return strings.ToUpper(uuid.New().String()[:8])
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
