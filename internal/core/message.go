package core

import "time"

// Message is the domain model for a chat message. All fields are fixed at
// creation time: the id is assigned by the server, never by a client, and
// the creation instant is UTC with second precision.
type Message struct {
	ID        string
	Username  string
	Content   string
	CreatedAt time.Time
}

// Timestamp renders the creation instant as ISO-8601 UTC with a trailing "Z".
func (m Message) Timestamp() string {
	return m.CreatedAt.UTC().Truncate(time.Second).Format(time.RFC3339)
}
