package core

import "sync"

// DefaultName is the display name used when a client joins without one.
const DefaultName = "anonymous"

// SessionRegistry maps live connection ids to display names. Presence is
// inherently ephemeral, so the state is process-lifetime only. All methods
// are safe for concurrent use.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]string
}

// NewSessionRegistry constructs an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]string)}
}

// OnConnect registers a connection with no display name yet. Registering
// the same id twice resets its name.
func (r *SessionRegistry) OnConnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = ""
}

// Join sets the display name for connID, substituting DefaultName for an
// empty request. An unknown id is ignored: the connection may already be
// gone by the time the join arrives. Returns the resolved name and
// whether the session existed.
func (r *SessionRegistry) Join(connID, requested string) (string, bool) {
	name := requested
	if name == "" {
		name = DefaultName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[connID]; !ok {
		return "", false
	}
	r.sessions[connID] = name
	return name, true
}

// Rename updates the display name for connID. Unknown ids are a no-op.
func (r *SessionRegistry) Rename(connID, newName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[connID]; !ok {
		return
	}
	r.sessions[connID] = newName
}

// Disconnect removes the connection and reports the display name it had.
// The second return is false if the connection never joined.
func (r *SessionRegistry) Disconnect(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.sessions[connID]
	delete(r.sessions, connID)
	return name, ok && name != ""
}

// Name returns the display name for connID, empty if unnamed or unknown.
func (r *SessionRegistry) Name(connID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[connID]
}

// OnlineCount counts connections that have declared a display name. It is
// recomputed on every call so it never serves a stale value.
func (r *SessionRegistry) OnlineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, name := range r.sessions {
		if name != "" {
			count++
		}
	}
	return count
}
