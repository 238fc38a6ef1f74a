package core

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/store"
)

// legacyPrefix matches the old client wire format that embedded the user
// name ahead of the content. Only this exact historical shape is
// stripped; the pattern is deliberately not generalized.
var legacyPrefix = regexp.MustCompile(`(?i)^user name is .*\ncontent is `)

// ChatService orchestrates presence, history, and broadcast fan-out. Its
// methods are invoked concurrently by the transport layer, one goroutine
// pair per connection; the registry and hub serialize internally.
type ChatService struct {
	registry *SessionRegistry
	hub      *Hub
	history  store.HistoryStore
	limit    int
	log      *zerolog.Logger
}

// NewChatService wires the service with its collaborators. The history
// store is injected so tests can substitute fakes.
func NewChatService(registry *SessionRegistry, hub *Hub, history store.HistoryStore, limit int, logger *zerolog.Logger) *ChatService {
	return &ChatService{
		registry: registry,
		hub:      hub,
		history:  history,
		limit:    limit,
		log:      logger,
	}
}

// Connect attaches a live connection. Nothing is announced to other
// connections until the client joins with a name.
func (s *ChatService) Connect(c *Client) {
	s.registry.OnConnect(c.ID)
	s.hub.Register(c)
	s.log.Debug().Str("conn_id", c.ID).Msg("client connected")
}

// Join sets the display name for connID and announces the arrival plus
// the new online count to everyone. A join for an already-gone
// connection is silently dropped.
func (s *ChatService) Join(connID, requested string) {
	name, ok := s.registry.Join(connID, requested)
	if !ok {
		return
	}
	s.log.Debug().Str("conn_id", connID).Str("username", name).Msg("client joined")
	s.hub.BroadcastAll(Event{Kind: EventUserJoined, Username: name})
	s.broadcastCount()
}

// Typing relays a typing indicator verbatim to every connection except
// the sender. No registry mutation, no persistence.
func (s *ChatService) Typing(connID string, payload json.RawMessage) {
	s.hub.BroadcastOthers(Event{Kind: EventTyping, Payload: payload}, connID)
}

// Rename updates the display name for connID and announces the change to
// everyone. The old name is taken from the payload, matching what the
// sender's UI displayed.
func (s *ChatService) Rename(connID, oldName, newName string) {
	s.registry.Rename(connID, newName)
	s.hub.BroadcastAll(Event{Kind: EventUserChangedName, OldUsername: oldName, NewUsername: newName})
}

// Submit runs the message pipeline: resolve the author, normalize the
// content, assign id and timestamp, persist, then fan out to the other
// connections. A storage failure is reported to the sender alone and
// leaves the service usable for subsequent messages.
func (s *ChatService) Submit(ctx context.Context, connID, rawContent, fallbackName string) {
	author := s.registry.Name(connID)
	if author == "" {
		author = fallbackName
	}
	if author == "" {
		author = DefaultName
	}

	msg := Message{
		ID:        uuid.NewString(),
		Username:  author,
		Content:   normalizeContent(rawContent),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := s.history.Append(ctx, recordFromMessage(msg)); err != nil {
		s.log.Error().Err(err).Str("conn_id", connID).Msg("append message")
		s.hub.Unicast(Event{
			Kind:  EventChatError,
			Error: fmt.Sprintf("failed to process message: %v", err),
		}, connID)
		return
	}

	s.hub.BroadcastOthers(Event{Kind: EventChatMessage, Message: msg}, connID)
}

// Disconnect detaches the connection. If it had declared a display name,
// the departure and the new online count are announced exactly once.
func (s *ChatService) Disconnect(connID string) {
	s.hub.Unregister(connID)
	name, hadName := s.registry.Disconnect(connID)
	s.log.Debug().Str("conn_id", connID).Str("username", name).Msg("client disconnected")
	if !hadName {
		return
	}
	s.hub.BroadcastAll(Event{Kind: EventUserLeft, Username: name})
	s.broadcastCount()
}

// History returns the persisted log, oldest first, bounded by the
// configured capacity. This read path bypasses the live fan-out.
func (s *ChatService) History(ctx context.Context) ([]Message, error) {
	records, err := s.history.Recent(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	messages := make([]Message, 0, len(records))
	for _, r := range records {
		messages = append(messages, messageFromRecord(r))
	}
	return messages, nil
}

// ClearHistory empties the persisted log.
func (s *ChatService) ClearHistory(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *ChatService) broadcastCount() {
	s.hub.BroadcastAll(Event{Kind: EventUserCount, Count: s.registry.OnlineCount()})
}

// normalizeContent trims surrounding whitespace and strips the legacy
// client prefix, if present, from the start of the content.
func normalizeContent(raw string) string {
	trimmed := strings.TrimSpace(raw)
	return legacyPrefix.ReplaceAllString(trimmed, "")
}

func recordFromMessage(m Message) store.Message {
	return store.Message{
		ID:        m.ID,
		Username:  m.Username,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func messageFromRecord(r store.Message) Message {
	return Message{
		ID:        r.ID,
		Username:  r.Username,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}
