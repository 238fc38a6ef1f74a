// Package sqlite persists the history log in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/relaychat/relaychat-server/internal/store"
)

// Store implements store.HistoryStore over SQLite. The AUTOINCREMENT seq
// column breaks ordering ties between rows created within the same
// second; append and trim run in one transaction.
type Store struct {
	db       *sql.DB
	capacity int
}

// New opens the database at dbPath and applies the schema.
func New(dbPath string, capacity int) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, capacity: capacity}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS messages (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		username   TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
	`
	_, err := s.db.Exec(query)
	return err
}

// Append inserts the message and deletes any rows that fall outside the
// newest capacity entries, both in one transaction.
func (s *Store) Append(ctx context.Context, msg store.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO messages (id, username, content, created_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert, msg.ID, msg.Username, msg.Content, msg.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	trim := `
	DELETE FROM messages
	WHERE seq NOT IN (
		SELECT seq FROM messages ORDER BY created_at DESC, seq DESC LIMIT ?
	)`
	if _, err := tx.ExecContext(ctx, trim, s.capacity); err != nil {
		return fmt.Errorf("trim messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Recent fetches the newest rows first and reverses them, returning up
// to limit messages ordered oldest to newest.
func (s *Store) Recent(ctx context.Context, limit int) ([]store.Message, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}

	query := `
	SELECT id, username, content, created_at
	FROM messages
	ORDER BY created_at DESC, seq DESC
	LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []store.Message
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.Username, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Newest-first from the query; the contract is oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Clear deletes all rows. Clearing an empty table is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
