package conversationRepo

import (
	"context"

	"clubvoice/models"
)

// ConversationRepository provides access to call-session records.
type ConversationRepository interface {
	Create(ctx context.Context, c *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	// GetByCallID returns nil, nil when the provider call id is unknown.
	GetByCallID(ctx context.Context, callID string) (*models.Conversation, error)
	Update(ctx context.Context, c *models.Conversation) error
	List(ctx context.Context, clubID string, state models.ConversationState) ([]models.Conversation, error)
	CountByState(ctx context.Context, clubID string) (map[string]int64, error)
}
