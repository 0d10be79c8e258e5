package customerRepo

import (
	"context"

	"clubvoice/models"
)

// CustomerRepository provides access to customer records.
type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	// GetByPhone returns nil, nil when no customer with that phone
	// exists for the club.
	GetByPhone(ctx context.Context, clubID, phone string) (*models.Customer, error)
	Update(ctx context.Context, c *models.Customer) error
	List(ctx context.Context, clubID string, status models.CustomerStatus) ([]models.Customer, error)
}
