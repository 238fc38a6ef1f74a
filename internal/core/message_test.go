package core

import (
	"testing"
	"time"
)

func TestMessageTimestampFormat(t *testing.T) {
	m := Message{CreatedAt: time.Date(2024, 5, 1, 12, 0, 3, 0, time.UTC)}
	if got := m.Timestamp(); got != "2024-05-01T12:00:03Z" {
		t.Fatalf("unexpected timestamp %q", got)
	}

	// Sub-second precision and offsets are normalized away.
	loc := time.FixedZone("UTC+2", 2*3600)
	m = Message{CreatedAt: time.Date(2024, 5, 1, 14, 0, 3, 999_000_000, loc)}
	if got := m.Timestamp(); got != "2024-05-01T12:00:03Z" {
		t.Fatalf("unexpected timestamp %q", got)
	}
}
