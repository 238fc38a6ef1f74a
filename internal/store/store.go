package store

import (
	"context"
	"time"
)

// Message is a persisted chat record. The JSON shape matches the
// chat_message wire payload exactly; the bson tags serve the
// document-store backend.
type Message struct {
	ID        string    `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"timestamp" bson:"timestamp"`
}

// HistoryStore is the durable, bounded message log. Implementations keep
// at most the configured capacity of most-recent messages, evicting
// oldest first.
type HistoryStore interface {
	// Append durably adds one message, then trims the log to capacity.
	Append(ctx context.Context, msg Message) error

	// Recent returns up to limit most-recent messages, ordered oldest to
	// newest in the return value regardless of how the backend fetches them.
	Recent(ctx context.Context, limit int) ([]Message, error)

	// Clear removes all messages. Clearing an empty log is not an error.
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
