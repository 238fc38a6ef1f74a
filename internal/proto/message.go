package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin           = "join"
	InboundTypeTyping         = "typing"
	InboundTypeChangeUsername = "change_username"
	InboundTypeSendMessage    = "send_message"

	OutboundTypeUserJoined      = "user_joined"
	OutboundTypeUserLeft        = "user_left"
	OutboundTypeUserChangedName = "user_changed_name"
	OutboundTypeUserCount       = "user_count"
	OutboundTypeTyping          = "typing"
	OutboundTypeChatMessage     = "chat_message"
	OutboundTypeChatError       = "chat_error"
)

// JoinData announces the client's display name.
type JoinData struct {
	Username string `json:"username"`
}

// ChangeUsernameData requests a display name change.
type ChangeUsernameData struct {
	OldUsername string `json:"oldUsername"`
	NewUsername string `json:"newUsername"`
}

// SendMessageData is a chat message from the client. Username is a
// fallback used only when the connection never joined.
type SendMessageData struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// UserEvent carries the name behind user_joined and user_left.
type UserEvent struct {
	Username string `json:"username"`
}

// NameChange carries a user_changed_name announcement.
type NameChange struct {
	OldUsername string `json:"oldUsername"`
	NewUsername string `json:"newUsername"`
}

// UserCount carries the number of named connections currently online.
type UserCount struct {
	Count int `json:"count"`
}

// ChatMessage is the wire shape of a persisted message, shared by the
// chat_message event and the history endpoint.
type ChatMessage struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ChatError reports a submission failure to the failing sender.
type ChatError struct {
	Message string `json:"message"`
}
