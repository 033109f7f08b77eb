package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"FlousWise/internal/database/kafka"
	"FlousWise/internal/history"
	"FlousWise/internal/models"
	"FlousWise/internal/rag/pipeline"
	"FlousWise/pkg/logger"
)

// EventPublisher is the chat event surface. Nil-able: a missing Kafka setup
// disables events without touching the query path.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.ChatEvent) error
}

// QueryAnswer is what the API layer returns for one answered question.
type QueryAnswer struct {
	ConversationID string
	Answer         string
	Degraded       bool
	Degradations   []string
}

// Service ties the query pipeline to chat history and event publishing.
// History writes and event publishing are best-effort: the user gets the
// answer even when the bookkeeping around it fails.
type Service struct {
	queries   *pipeline.QueryPipeline
	store     history.Store
	publisher EventPublisher
	log       *logger.Logger
}

// New creates the app service. publisher may be nil.
func New(queries *pipeline.QueryPipeline, store history.Store, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{queries: queries, store: store, publisher: publisher, log: log}
}

// Query answers one question. An empty conversationID starts a new
// conversation with a fresh ID.
func (s *Service) Query(ctx context.Context, userID, token, question, conversationID string) (*QueryAnswer, error) {
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	result, err := s.queries.Query(ctx, userID, token, question)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	s.appendMessage(ctx, &models.ChatMessage{
		UserID:         userID,
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Message:        question,
		Timestamp:      now,
	})
	s.appendMessage(ctx, &models.ChatMessage{
		UserID:         userID,
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Message:        result.Answer,
		Timestamp:      now.Add(time.Millisecond),
	})

	s.publishEvent(ctx, &models.ChatEvent{
		UserID:         userID,
		ConversationID: conversationID,
		QuestionLength: len(question),
		AnswerLength:   len(result.Answer),
		Timestamp:      now,
	})

	return &QueryAnswer{
		ConversationID: conversationID,
		Answer:         result.Answer,
		Degraded:       result.Degraded(),
		Degradations:   result.Degradations,
	}, nil
}

// appendMessage writes one history entry, logging instead of failing.
func (s *Service) appendMessage(ctx context.Context, msg *models.ChatMessage) {
	if err := s.store.Append(ctx, msg); err != nil {
		s.log.WithPayload(map[string]interface{}{
			"conversation_id": msg.ConversationID,
			"error":           err.Error(),
		}).Warn("History write failed, answer already delivered")
	}
}

// publishEvent emits the chat event, logging instead of failing.
func (s *Service) publishEvent(ctx context.Context, event *models.ChatEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithPayload(map[string]interface{}{
			"conversation_id": event.ConversationID,
			"error":           err.Error(),
		}).Warn("Chat event publish failed")
	}
}

// History returns one conversation's messages, oldest first.
func (s *Service) History(ctx context.Context, userID, conversationID string, limit int) ([]models.ChatMessage, error) {
	return s.store.History(ctx, userID, conversationID, limit)
}

// Conversations lists the user's conversations, most recent first.
func (s *Service) Conversations(ctx context.Context, userID string, limit int) ([]models.ConversationSummary, error) {
	return s.store.ListConversations(ctx, userID, limit)
}

// compile-time check to ensure the Kafka publisher satisfies EventPublisher
var _ EventPublisher = (*kafka.ChatPublisher)(nil)
