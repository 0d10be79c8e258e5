package customerRepo

import (
	"context"
	"fmt"
	"time"

	"clubvoice/database"
	"clubvoice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCustomerRepo implements CustomerRepository using MongoDB.
type MongoCustomerRepo struct {
	coll *mongo.Collection
}

// NewMongoCustomerRepo constructs a new instance of MongoCustomerRepo.
func NewMongoCustomerRepo() CustomerRepository {
	return &MongoCustomerRepo{
		coll: database.DB().Collection("customers"),
	}
}

func (repo *MongoCustomerRepo) Create(ctx context.Context, c *models.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("error creating customer: %w", err)
	}
	return nil
}

func (repo *MongoCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Customer
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("customer with id %s not found", id)
		}
		return nil, fmt.Errorf("error fetching customer %s: %w", id, err)
	}
	return &c, nil
}

func (repo *MongoCustomerRepo) GetByPhone(ctx context.Context, clubID, phone string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Customer
	err := repo.coll.FindOne(ctx, bson.M{"club_id": clubID, "phone": phone}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching customer by phone: %w", err)
	}
	return &c, nil
}

func (repo *MongoCustomerRepo) Update(ctx context.Context, c *models.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": c.ID}, bson.M{"$set": c})
	if err != nil {
		return fmt.Errorf("error updating customer %s: %w", c.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("customer with id %s not found", c.ID)
	}
	return nil
}

func (repo *MongoCustomerRepo) List(ctx context.Context, clubID string, status models.CustomerStatus) ([]models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"club_id": clubID}
	if status != "" {
		filter["status"] = string(status)
	}
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing customers: %w", err)
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	for cursor.Next(ctx) {
		var c models.Customer
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("error decoding customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return customers, nil
}
