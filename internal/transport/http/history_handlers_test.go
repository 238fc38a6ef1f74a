package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/proto"
	"github.com/relaychat/relaychat-server/internal/store"
)

func TestGetHistoryReturnsOldestFirst(t *testing.T) {
	hs := &stubStore{messages: []store.Message{
		{
			ID:        "id-1",
			Username:  "alice",
			Content:   "first",
			CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:        "id-2",
			Username:  "bob",
			Content:   "second",
			CreatedAt: time.Date(2024, 5, 1, 12, 0, 5, 0, time.UTC),
		},
	}}
	server := NewServer(newChatService(hs), testConfig(), zerologNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/get_history", nil)
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got []proto.ChatMessage
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].ID != "id-1" || got[1].ID != "id-2" {
		t.Fatalf("expected oldest-first order, got %+v", got)
	}
	if got[0].Timestamp != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp %q", got[0].Timestamp)
	}
}

func TestGetHistoryStorageError(t *testing.T) {
	hs := &stubStore{recentErr: errors.New("backend down")}
	server := NewServer(newChatService(hs), testConfig(), zerologNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/get_history", nil)
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestClearHistorySuccess(t *testing.T) {
	hs := &stubStore{messages: []store.Message{{ID: "id-1"}}}
	server := NewServer(newChatService(hs), testConfig(), zerologNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clear_history", nil)
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("expected success status, got %+v", resp)
	}
	if hs.cleared != 1 {
		t.Fatalf("expected one clear call, got %d", hs.cleared)
	}
}

func TestClearHistoryFailure(t *testing.T) {
	hs := &stubStore{clearErr: errors.New("delete failed")}
	server := NewServer(newChatService(hs), testConfig(), zerologNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clear_history", nil)
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "error" || resp.Message == "" {
		t.Fatalf("expected error status with message, got %+v", resp)
	}
}

func zerologNop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
