package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUserJoined notifies clients that a user declared a display name.
	EventUserJoined EventKind = iota
	// EventUserLeft notifies clients that a named user disconnected.
	EventUserLeft
	// EventUserChangedName notifies clients about a display name change.
	EventUserChangedName
	// EventUserCount carries the current number of named connections.
	EventUserCount
	// EventTyping relays a typing indicator payload verbatim.
	EventTyping
	// EventChatMessage carries a persisted chat message.
	EventChatMessage
	// EventChatError reports a submission failure to the failing sender only.
	EventChatError
)

// Event is sent to clients to describe what happened in the system. Only
// the fields relevant to the Kind are populated.
type Event struct {
	Kind        EventKind
	Username    string
	OldUsername string
	NewUsername string
	Count       int
	Message     Message
	Payload     json.RawMessage // verbatim typing payload
	Error       string
}
