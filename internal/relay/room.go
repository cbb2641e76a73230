// Package relay implements the chat relay core: the wire codec, the session
// registry, broadcast fan-out, and per-connection session handling.
package relay

import (
	"log"
	"sort"
	"sync"
)

// Room is the single implicit chat room: the registry of live sessions and
// the owner of broadcast fan-out. All membership state lives behind one lock,
// and the lock is never held across transport I/O.
type Room struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	picker ColorPicker
	logger *log.Logger
}

// Option configures a Room.
type Option func(*Room)

// WithColorPicker overrides the default round-robin palette picker.
func WithColorPicker(picker ColorPicker) Option {
	return func(r *Room) {
		if picker != nil {
			r.picker = picker
		}
	}
}

// WithLogger sets the logger used for fan-out and session diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(r *Room) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRoom constructs an empty chat room.
func NewRoom(opts ...Option) *Room {
	r := &Room{
		sessions: make(map[string]*Session),
		picker:   newRoundRobinColorPicker(nil),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register assigns the session its color and stores it. Allocation and the
// map insert share one critical section so concurrent joins never observe a
// torn registry. Returns the assigned color.
func (r *Room) Register(s *Session) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Color = r.picker.Next()
	r.sessions[s.ID] = s
	return s.Color
}

// Unregister removes the session if present and reports whether it actually
// was. Callers announce a departure only on true; that keeps a duplicate
// cleanup from broadcasting a second leave notice.
func (r *Room) Unregister(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

// Usernames returns a sorted point-in-time copy of the connected usernames.
func (r *Room) Usernames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.sessions))
	for _, s := range r.sessions {
		names = append(names, s.Username)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Count returns the number of registered sessions.
func (r *Room) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// snapshot copies the live sessions so fan-out can iterate without the lock.
func (r *Room) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}
