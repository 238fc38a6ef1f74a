// Package file persists the history log as a single JSON array file.
// The in-memory slice is the source of truth; the file mirrors it and is
// rewritten in full on every mutation.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/store"
)

// Store implements store.HistoryStore over a flat JSON file. A single
// mutex covers both the in-memory mutation and the flush to disk, so
// concurrent appends cannot interleave and corrupt the file or skip
// trimming.
type Store struct {
	mu       sync.Mutex
	path     string
	capacity int
	messages []store.Message
	log      *zerolog.Logger
}

// New opens (or creates) the store at path, loading the newest capacity
// entries from an existing file. A missing or unreadable file starts the
// log empty rather than failing startup.
func New(path string, capacity int, logger *zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	s := &Store{path: path, capacity: capacity, log: logger}
	s.load()
	return s, nil
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("failed to read history file, starting empty")
		}
		return
	}

	var messages []store.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("corrupt history file, starting empty")
		return
	}
	if len(messages) > s.capacity {
		messages = messages[len(messages)-s.capacity:]
	}
	s.messages = messages
}

// Append adds one message and trims the log to the newest capacity
// entries. The in-memory state is committed only after the flush
// succeeds, so a failed append leaves the store unchanged.
func (s *Store) Append(_ context.Context, msg store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(s.messages, msg)
	if len(next) > s.capacity {
		next = next[len(next)-s.capacity:]
	}
	if err := s.flush(next); err != nil {
		return fmt.Errorf("flush history: %w", err)
	}
	s.messages = next
	return nil
}

// flush writes the whole log through a temp file and renames it over the
// previous one, so a failed write never corrupts the on-disk state.
func (s *Store) flush(messages []store.Message) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Recent returns up to limit most-recent messages, oldest first. A
// limit <= 0 returns the whole log.
func (s *Store) Recent(_ context.Context, limit int) ([]store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]store.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Clear removes all messages and deletes the file. The in-memory state
// is emptied only once the file is gone, so a failed delete cannot leave
// a half-cleared view. Clearing an already-empty log is not an error.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove history file: %w", err)
	}
	s.messages = nil
	return nil
}

// Close is a no-op; every mutation already flushed to disk.
func (s *Store) Close() error {
	return nil
}
