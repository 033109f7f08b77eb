package history

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"FlousWise/internal/faults"
	"FlousWise/internal/models"
)

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a MongoStore over the given database and collection.
func NewMongoStore(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{collection: client.Database(database).Collection(collection)}
}

var _ Store = (*MongoStore)(nil)

// Append inserts one message.
func (s *MongoStore) Append(ctx context.Context, msg *models.ChatMessage) error {
	if _, err := s.collection.InsertOne(ctx, msg); err != nil {
		return &faults.HistoryWriteError{ConversationID: msg.ConversationID, Err: err}
	}
	return nil
}

// History returns a conversation's messages, oldest first.
// The userID filter keeps one user from reading another's conversation even
// if the conversation ID leaks.
func (s *MongoStore) History(ctx context.Context, userID, conversationID string, limit int) ([]models.ChatMessage, error) {
	filter := bson.M{"userId": userID, "conversationId": conversationID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode chat history: %w", err)
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}

// ListConversations groups the user's messages by conversation and keeps the
// latest message of each as its summary, newest conversation first.
func (s *MongoStore) ListConversations(ctx context.Context, userID string, limit int) ([]models.ConversationSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":             "$conversationId",
			"latestMessage":   bson.M{"$first": "$message"},
			"latestRole":      bson.M{"$first": "$role"},
			"latestTimestamp": bson.M{"$first": "$timestamp"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "latestTimestamp", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []models.ConversationSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	return summaries, nil
}
