package clubRepo

import (
	"context"
	"fmt"
	"time"

	"clubvoice/database"
	"clubvoice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoClubRepo implements ClubRepository using MongoDB.
type MongoClubRepo struct {
	coll *mongo.Collection
}

// NewMongoClubRepo constructs a new instance of MongoClubRepo.
func NewMongoClubRepo() ClubRepository {
	return &MongoClubRepo{
		coll: database.DB().Collection("clubs"),
	}
}

func (repo *MongoClubRepo) Create(ctx context.Context, c *models.Club) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("error creating club: %w", err)
	}
	return nil
}

func (repo *MongoClubRepo) findOne(ctx context.Context, filter bson.M, desc string) (*models.Club, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Club
	if err := repo.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("club %s not found", desc)
		}
		return nil, fmt.Errorf("error fetching club %s: %w", desc, err)
	}
	return &c, nil
}

func (repo *MongoClubRepo) GetByID(ctx context.Context, id string) (*models.Club, error) {
	return repo.findOne(ctx, bson.M{"id": id}, fmt.Sprintf("with id %s", id))
}

func (repo *MongoClubRepo) GetByAssistantID(ctx context.Context, assistantID string) (*models.Club, error) {
	return repo.findOne(ctx, bson.M{"assistant_id": assistantID}, fmt.Sprintf("with assistant %s", assistantID))
}

func (repo *MongoClubRepo) GetByAssignedNumber(ctx context.Context, number string) (*models.Club, error) {
	return repo.findOne(ctx, bson.M{"assigned_number": number}, fmt.Sprintf("with number %s", number))
}

func (repo *MongoClubRepo) Update(ctx context.Context, c *models.Club) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": c.ID}, bson.M{"$set": c})
	if err != nil {
		return fmt.Errorf("error updating club %s: %w", c.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("club with id %s not found", c.ID)
	}
	return nil
}

func (repo *MongoClubRepo) List(ctx context.Context) ([]models.Club, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error listing clubs: %w", err)
	}
	defer cursor.Close(ctx)

	var clubs []models.Club
	for cursor.Next(ctx) {
		var c models.Club
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("error decoding club: %w", err)
		}
		clubs = append(clubs, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return clubs, nil
}
