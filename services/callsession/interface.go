package callsession

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	clubRepo "clubvoice/database/repository/club"
	conversationRepo "clubvoice/database/repository/conversation"
	customerRepo "clubvoice/database/repository/customer"
	"clubvoice/models"
	"clubvoice/services/booking"
	"clubvoice/services/notification"
)

// Service is the call-session state machine. HandleEvent applies one
// voice-provider event and returns the payload the webhook responds
// with; for function.called events that payload is the function result
// the assistant consumes live.
type Service interface {
	HandleEvent(ctx context.Context, evt *models.WebhookEvent) (map[string]any, error)

	GetByID(ctx context.Context, conversationID string) (*models.Conversation, error)
	List(ctx context.Context, clubID string, state models.ConversationState) ([]models.Conversation, error)
	CountByState(ctx context.Context, clubID string) (map[string]int64, error)
}

// DefaultService is the production implementation.
type DefaultService struct {
	Conversations conversationRepo.ConversationRepository
	Customers     customerRepo.CustomerRepository
	Clubs         clubRepo.ClubRepository
	Bookings      booking.BookingService
	Notifier      notification.Service

	// Cache speeds up club resolution on call.started; nil disables it.
	Cache *redis.Client

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time

	calls callLocks
}

func NewDefaultService(
	conversations conversationRepo.ConversationRepository,
	customers customerRepo.CustomerRepository,
	clubs clubRepo.ClubRepository,
	bookings booking.BookingService,
	notifier notification.Service,
	cache *redis.Client,
) (*DefaultService, error) {
	if conversations == nil || customers == nil || clubs == nil || bookings == nil || notifier == nil {
		return nil, fmt.Errorf("call session service initialization error: missing dependency")
	}
	return &DefaultService{
		Conversations: conversations,
		Customers:     customers,
		Clubs:         clubs,
		Bookings:      bookings,
		Notifier:      notifier,
		Cache:         cache,
	}, nil
}

func (s *DefaultService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
