package history

import (
	"context"

	"FlousWise/internal/models"
)

// Store is the chat history surface. History is append-only: messages are
// never updated or deleted, and a conversation is just the set of messages
// sharing a conversation ID.
type Store interface {
	// Append writes one message. Failures are reported as
	// faults.HistoryWriteError; callers treat them as best-effort.
	Append(ctx context.Context, msg *models.ChatMessage) error

	// History returns the messages of one conversation in ascending
	// timestamp order, capped at limit when limit > 0.
	History(ctx context.Context, userID, conversationID string, limit int) ([]models.ChatMessage, error)

	// ListConversations returns one summary per conversation of the user,
	// most recently active first, capped at limit when limit > 0.
	ListConversations(ctx context.Context, userID string, limit int) ([]models.ConversationSummary, error)
}
