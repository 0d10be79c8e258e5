package marketplace

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingRepo "clubvoice/database/repository/booking"
	clubRepo "clubvoice/database/repository/club"
	"clubvoice/models"
	"clubvoice/utils"
)

// Syncer replicates local bookings to the marketplace in the background.
// Sync is best effort: the local booking stays confirmed either way, and
// a failed booking is marked failed_to_sync so it still holds its slot.
type Syncer struct {
	Bookings bookingRepo.BookingRepository
	Clubs    clubRepo.ClubRepository
	Client   Client
}

func NewSyncer(bookings bookingRepo.BookingRepository, clubs clubRepo.ClubRepository, client Client) (*Syncer, error) {
	if bookings == nil || clubs == nil || client == nil {
		return nil, fmt.Errorf("marketplace syncer initialization error: repo or client is nil")
	}
	return &Syncer{Bookings: bookings, Clubs: clubs, Client: client}, nil
}

// ProcessSync pushes one booking. Returning an error lets the task
// queue retry; every retry starts from the record's current state, so a
// booking that was cancelled in the meantime is simply skipped.
func (s *Syncer) ProcessSync(ctx context.Context, bookingID string) error {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s for sync: %w", bookingID, err)
	}
	if !b.Active() {
		utils.GetLogger().Info("skipping marketplace sync for inactive booking",
			zap.String("bookingID", b.ID), zap.String("status", string(b.Status)))
		return nil
	}
	if b.SyncStatus == models.SyncDone || b.SyncStatus == models.SyncNotRequired {
		return nil
	}

	club, err := s.Clubs.GetByID(ctx, b.ClubID)
	if err != nil {
		return fmt.Errorf("failed to load club %s for sync: %w", b.ClubID, err)
	}
	if club.MarketplaceClubID == "" {
		b.SyncStatus = models.SyncNotRequired
		b.UpdatedAt = time.Now().UTC()
		return s.Bookings.Update(ctx, b)
	}

	ref, syncErr := s.Client.SyncBooking(ctx, club, b)
	now := time.Now().UTC()
	if syncErr != nil {
		b.SyncStatus = models.SyncFailed
		if b.Status == models.BookingConfirmed {
			b.Status = models.BookingFailedToSync
		}
		b.UpdatedAt = now
		if err := s.Bookings.Update(ctx, b); err != nil {
			utils.GetLogger().Error("failed to record marketplace sync failure",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
		return fmt.Errorf("marketplace sync of booking %s failed: %w", b.ID, syncErr)
	}

	b.SyncStatus = models.SyncDone
	b.MarketplaceRef = ref
	if b.Status == models.BookingFailedToSync {
		b.Status = models.BookingConfirmed
	}
	b.UpdatedAt = now
	if err := s.Bookings.Update(ctx, b); err != nil {
		return fmt.Errorf("failed to record marketplace sync of booking %s: %w", b.ID, err)
	}
	utils.GetLogger().Info("booking synced to marketplace",
		zap.String("bookingID", b.ID), zap.String("marketplaceRef", ref))
	return nil
}

// ProcessCancel removes one cancelled booking from the marketplace.
// State is re-checked at execution time: only a booking that is still
// cancelled locally and still holds a marketplace reference is removed.
func (s *Syncer) ProcessCancel(ctx context.Context, bookingID string) error {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s for marketplace cancel: %w", bookingID, err)
	}
	if b.Status != models.BookingCancelled {
		utils.GetLogger().Info("skipping marketplace cancel for non-cancelled booking",
			zap.String("bookingID", b.ID), zap.String("status", string(b.Status)))
		return nil
	}
	if b.SyncStatus != models.SyncDone || b.MarketplaceRef == "" {
		return nil
	}

	club, err := s.Clubs.GetByID(ctx, b.ClubID)
	if err != nil {
		return fmt.Errorf("failed to load club %s for marketplace cancel: %w", b.ClubID, err)
	}
	if err := s.Client.CancelBooking(ctx, club, b); err != nil {
		return fmt.Errorf("marketplace cancel of booking %s failed: %w", b.ID, err)
	}

	ref := b.MarketplaceRef
	b.SyncStatus = models.SyncNotRequired
	b.MarketplaceRef = ""
	b.UpdatedAt = time.Now().UTC()
	if err := s.Bookings.Update(ctx, b); err != nil {
		return fmt.Errorf("failed to record marketplace cancel of booking %s: %w", b.ID, err)
	}
	utils.GetLogger().Info("booking removed from marketplace",
		zap.String("bookingID", b.ID), zap.String("marketplaceRef", ref))
	return nil
}
