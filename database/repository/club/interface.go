package clubRepo

import (
	"context"

	"clubvoice/models"
)

// ClubRepository provides access to club records.
type ClubRepository interface {
	Create(ctx context.Context, c *models.Club) error
	GetByID(ctx context.Context, id string) (*models.Club, error)
	GetByAssistantID(ctx context.Context, assistantID string) (*models.Club, error)
	GetByAssignedNumber(ctx context.Context, number string) (*models.Club, error)
	Update(ctx context.Context, c *models.Club) error
	List(ctx context.Context) ([]models.Club, error)
}
