package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Registry maps authenticated users to their live connections and is the
// single source of truth for presence. A user is online iff their
// connection set is non-empty; multiple concurrent connections per user
// are valid and every push to a user fans out to all of them.
//
// All state lives behind one mutex. Handlers never touch the raw maps:
// registration, lookups and broadcast all go through this type so that
// connect/disconnect cannot interleave inconsistently with "who is
// online" reads.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]map[string]*Connection // userID -> connID -> connection
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]map[string]*Connection)}
}

// Register adds conn under userID. Idempotent for the same connection.
// Returns true when the user transitioned from offline to online. The
// connection's write loop is owned by whoever created it; the registry
// only tracks membership.
func (r *Registry) Register(userID int64, conn *Connection) (cameOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.conns[userID]
	if set == nil {
		set = make(map[string]*Connection)
		r.conns[userID] = set
		cameOnline = true
	}
	set[conn.ID] = conn
	return cameOnline
}

// Unregister removes conn from userID's set. Returns true when the set
// became empty, i.e. the user went offline.
func (r *Registry) Unregister(userID int64, conn *Connection) (wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.conns[userID]
	if set == nil {
		return false
	}
	delete(set, conn.ID)
	if len(set) == 0 {
		delete(r.conns, userID)
		return true
	}
	return false
}

// IsOnline reports whether userID has at least one live connection.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}

// ConnectionsOf returns a snapshot of userID's live connections.
func (r *Registry) ConnectionsOf(userID int64) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Connection, 0, len(set))
	for _, conn := range set {
		out = append(out, conn)
	}
	return out
}

// FanOut delivers payload to every live connection of userID and returns
// how many sends were accepted.
func (r *Registry) FanOut(userID int64, payload []byte) int {
	delivered := 0
	for _, conn := range r.ConnectionsOf(userID) {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// BroadcastAll delivers payload to every connection of every user.
func (r *Registry) BroadcastAll(payload []byte) int {
	r.mu.RLock()
	all := make([]*Connection, 0, len(r.conns))
	for _, set := range r.conns {
		for _, conn := range set {
			all = append(all, conn)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range all {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates every tracked connection and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Connection, 0, len(r.conns))
	for _, set := range r.conns {
		for _, conn := range set {
			all = append(all, conn)
		}
	}
	r.conns = make(map[int64]map[string]*Connection)
	r.mu.Unlock()

	for _, conn := range all {
		conn.Close(websocket.CloseGoingAway, "registry shutdown")
	}
}
