package http

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/config"
	"github.com/relaychat/relaychat-server/internal/core"
	"github.com/relaychat/relaychat-server/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubStore is an in-memory HistoryStore for handler tests.
type stubStore struct {
	mu        sync.Mutex
	messages  []store.Message
	recentErr error
	clearErr  error
	cleared   int
}

func (f *stubStore) Append(_ context.Context, msg store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *stubStore) Recent(_ context.Context, limit int) ([]store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	msgs := f.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]store.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *stubStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared++
	f.messages = nil
	return nil
}

func (f *stubStore) Close() error { return nil }

func newChatService(hs store.HistoryStore) *core.ChatService {
	logger := zerolog.Nop()
	return core.NewChatService(core.NewSessionRegistry(), core.NewHub(), hs, 100, &logger)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	return cfg
}
