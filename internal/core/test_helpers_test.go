package core

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/store"
)

// fakeStore is an in-memory HistoryStore for service tests. Setting
// appendErr or clearErr makes the corresponding operation fail.
type fakeStore struct {
	mu        sync.Mutex
	appended  []store.Message
	appendErr error
	clearErr  error
}

func (f *fakeStore) Append(_ context.Context, msg store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, msg)
	return nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.appended
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]store.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *fakeStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.appended = nil
	return nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) records() []store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Message, len(f.appended))
	copy(out, f.appended)
	return out
}

func newTestService(hs store.HistoryStore) *ChatService {
	logger := zerolog.Nop()
	return NewChatService(NewSessionRegistry(), NewHub(), hs, 100, &logger)
}

// mustEvent drains ch until an event of the wanted kind shows up.
// Service calls are synchronous, so the event is already buffered.
func mustEvent(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()

	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		default:
			t.Fatalf("expected event kind %v not received", kind)
			return Event{}
		}
	}
}

// mustNoEvent asserts that no event of the given kind is buffered.
func mustNoEvent(t *testing.T, ch <-chan Event, kind EventKind) {
	t.Helper()

	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				t.Fatalf("unexpected event kind %v received: %+v", kind, ev)
			}
		default:
			return
		}
	}
}

func drain(ch <-chan Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
