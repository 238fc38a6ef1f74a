package core

// Client is one live connection as seen by the core layer. The ID is
// opaque and stable for the connection's lifetime; events queued on the
// Events channel are drained by the transport's write loop.
type Client struct {
	ID     string
	Events chan Event
}

// NewClient constructs a client with an initialized event buffer.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan Event, 16),
	}
}
