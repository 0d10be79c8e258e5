package conversationRepo

import (
	"context"
	"fmt"
	"time"

	"clubvoice/database"
	"clubvoice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConversationRepo implements ConversationRepository using MongoDB.
type MongoConversationRepo struct {
	coll *mongo.Collection
}

// NewMongoConversationRepo constructs a new instance of MongoConversationRepo.
func NewMongoConversationRepo() ConversationRepository {
	return &MongoConversationRepo{
		coll: database.DB().Collection("conversations"),
	}
}

func (repo *MongoConversationRepo) Create(ctx context.Context, c *models.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("error creating conversation: %w", err)
	}
	return nil
}

func (repo *MongoConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Conversation
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("conversation with id %s not found", id)
		}
		return nil, fmt.Errorf("error fetching conversation %s: %w", id, err)
	}
	return &c, nil
}

func (repo *MongoConversationRepo) GetByCallID(ctx context.Context, callID string) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Conversation
	err := repo.coll.FindOne(ctx, bson.M{"call_id": callID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching conversation by call id: %w", err)
	}
	return &c, nil
}

func (repo *MongoConversationRepo) Update(ctx context.Context, c *models.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": c.ID}, bson.M{"$set": c})
	if err != nil {
		return fmt.Errorf("error updating conversation %s: %w", c.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("conversation with id %s not found", c.ID)
	}
	return nil
}

func (repo *MongoConversationRepo) List(ctx context.Context, clubID string, state models.ConversationState) ([]models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"club_id": clubID}
	if state != "" {
		filter["state"] = string(state)
	}
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	for cursor.Next(ctx) {
		var c models.Conversation
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("error decoding conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return conversations, nil
}

func (repo *MongoConversationRepo) CountByState(ctx context.Context, clubID string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"club_id": clubID}}},
		{{Key: "$group", Value: bson.M{"_id": "$state", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating conversation counts: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("error decoding count row: %w", err)
		}
		counts[row.ID] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return counts, nil
}
