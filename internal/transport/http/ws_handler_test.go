package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/relaychat/relaychat-server/internal/proto"
)

type outboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// readUntil drains frames from conn until one of the wanted type arrives.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, wantType string) outboundFrame {
	t.Helper()

	for {
		var frame outboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read while waiting for %q: %v", wantType, err)
		}
		if frame.Type == wantType {
			return frame
		}
	}
}

func dial(t *testing.T, ctx context.Context, baseURL string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

func join(t *testing.T, ctx context.Context, conn *websocket.Conn, username string) {
	t.Helper()

	err := wsjson.Write(ctx, conn, proto.Inbound{
		Type: proto.InboundTypeJoin,
		Data: json.RawMessage(`{"username":"` + username + `"}`),
	})
	if err != nil {
		t.Fatalf("write join: %v", err)
	}
	// The join announcement goes to everyone including the joiner, so
	// reading it back confirms the server registered the connection.
	frame := readUntil(t, ctx, conn, proto.OutboundTypeUserJoined)
	var ev proto.UserEvent
	if err := json.Unmarshal(frame.Data, &ev); err != nil {
		t.Fatalf("decode user_joined: %v", err)
	}
	if ev.Username != username {
		t.Fatalf("expected user_joined for %q, got %q", username, ev.Username)
	}
}

func TestWebSocketChatFlow(t *testing.T) {
	hs := &stubStore{}
	server := NewServer(newChatService(hs), testConfig(), zerologNop())
	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bob := dial(t, ctx, ts.URL)
	join(t, ctx, bob, "bob")

	alice := dial(t, ctx, ts.URL)
	join(t, ctx, alice, "alice")

	// Bob observes alice's arrival and the updated online count.
	readUntil(t, ctx, bob, proto.OutboundTypeUserJoined)
	countFrame := readUntil(t, ctx, bob, proto.OutboundTypeUserCount)
	var count proto.UserCount
	if err := json.Unmarshal(countFrame.Data, &count); err != nil {
		t.Fatalf("decode user_count: %v", err)
	}
	if count.Count != 2 {
		t.Fatalf("expected 2 online, got %d", count.Count)
	}

	// Alice sends a message in the legacy format; bob receives it cleaned.
	err := wsjson.Write(ctx, alice, proto.Inbound{
		Type: proto.InboundTypeSendMessage,
		Data: json.RawMessage(`{"content":"user name is Bob\ncontent is Hello"}`),
	})
	if err != nil {
		t.Fatalf("write send_message: %v", err)
	}

	msgFrame := readUntil(t, ctx, bob, proto.OutboundTypeChatMessage)
	var msg proto.ChatMessage
	if err := json.Unmarshal(msgFrame.Data, &msg); err != nil {
		t.Fatalf("decode chat_message: %v", err)
	}
	if msg.Content != "Hello" {
		t.Fatalf("expected stripped content, got %q", msg.Content)
	}
	if msg.Username != "alice" {
		t.Fatalf("expected author alice, got %q", msg.Username)
	}
	if msg.ID == "" || !strings.HasSuffix(msg.Timestamp, "Z") {
		t.Fatalf("malformed message envelope: %+v", msg)
	}

	if len(hs.messages) != 1 {
		t.Fatalf("expected one persisted message, got %d", len(hs.messages))
	}
}

func TestWebSocketUnknownTypeReportsErrorToSenderOnly(t *testing.T) {
	hs := &stubStore{}
	server := NewServer(newChatService(hs), testConfig(), zerologNop())
	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, ts.URL)
	join(t, ctx, conn, "alice")

	err := wsjson.Write(ctx, conn, proto.Inbound{Type: "frobnicate"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	frame := readUntil(t, ctx, conn, proto.OutboundTypeChatError)
	var chatErr proto.ChatError
	if err := json.Unmarshal(frame.Data, &chatErr); err != nil {
		t.Fatalf("decode chat_error: %v", err)
	}
	if !strings.Contains(chatErr.Message, "frobnicate") {
		t.Fatalf("expected the unknown type in the error, got %q", chatErr.Message)
	}
}

func TestWebSocketTypingRelay(t *testing.T) {
	hs := &stubStore{}
	server := NewServer(newChatService(hs), testConfig(), zerologNop())
	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bob := dial(t, ctx, ts.URL)
	join(t, ctx, bob, "bob")
	alice := dial(t, ctx, ts.URL)
	join(t, ctx, alice, "alice")

	err := wsjson.Write(ctx, alice, proto.Inbound{
		Type: proto.InboundTypeTyping,
		Data: json.RawMessage(`{"username":"alice","isTyping":true}`),
	})
	if err != nil {
		t.Fatalf("write typing: %v", err)
	}

	frame := readUntil(t, ctx, bob, proto.OutboundTypeTyping)
	if string(frame.Data) != `{"username":"alice","isTyping":true}` {
		t.Fatalf("expected verbatim typing payload, got %s", frame.Data)
	}

	if len(hs.messages) != 0 {
		t.Fatal("typing must not be persisted")
	}
}
