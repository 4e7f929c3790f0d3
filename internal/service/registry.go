package service

import (
	"log"
	"sync"
)

// RoomClient is one live websocket connection as the registry sees it.
// Send is the connection's buffered outbound channel; the registry closes
// it exactly once, on Unregister.
type RoomClient struct {
	ID     string
	UserID string
	Send   chan []byte
}

// SessionRegistry is the single source of truth for which connections are
// viewing which chat session. The two membership maps are mutual inverses;
// every mutation updates both under one lock. Constructed once per server
// process, torn down on shutdown.
type SessionRegistry struct {
	mu      sync.RWMutex
	clients map[string]*RoomClient          // connID -> client
	rooms   map[string]map[string]struct{}  // sessionID -> set of connIDs
	current map[string]string               // connID -> sessionID
	done    chan struct{}
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		clients: make(map[string]*RoomClient),
		rooms:   make(map[string]map[string]struct{}),
		current: make(map[string]string),
		done:    make(chan struct{}),
	}
}

// Register makes a connection known. It belongs to no session until Join.
func (r *SessionRegistry) Register(client *RoomClient) {
	r.mu.Lock()
	r.clients[client.ID] = client
	total := len(r.clients)
	r.mu.Unlock()
	log.Printf("[WS] %s connected (total: %d)", client.ID, total)
}

// Unregister purges a connection: leaves its room, forgets it, closes its
// send channel. Must run exactly once per connection or member counts go
// stale and the push-notification decision is corrupted.
func (r *SessionRegistry) Unregister(connID string) {
	r.mu.Lock()
	client, ok := r.clients[connID]
	if ok {
		r.leaveLocked(connID)
		delete(r.clients, connID)
		close(client.Send)
	}
	total := len(r.clients)
	r.mu.Unlock()
	if ok {
		log.Printf("[WS] %s disconnected (total: %d)", connID, total)
	}
}

// Join moves a connection into a session's room. A connection belongs to
// at most one session: joining implicitly leaves the previous room.
func (r *SessionRegistry) Join(connID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, known := r.clients[connID]; !known {
		return
	}
	r.leaveLocked(connID)

	members := r.rooms[sessionID]
	if members == nil {
		members = make(map[string]struct{})
		r.rooms[sessionID] = members
	}
	members[connID] = struct{}{}
	r.current[connID] = sessionID
}

// Leave removes a connection from its current room. Idempotent: a
// connection with no room is a no-op, not an error.
func (r *SessionRegistry) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID)
}

func (r *SessionRegistry) leaveLocked(connID string) {
	sessionID, ok := r.current[connID]
	if !ok {
		return
	}
	delete(r.current, connID)
	if members := r.rooms[sessionID]; members != nil {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, sessionID)
		}
	}
}

func (r *SessionRegistry) MemberCount(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[sessionID])
}

// IsEmpty is true when the session has no members or is unknown.
func (r *SessionRegistry) IsEmpty(sessionID string) bool {
	return r.MemberCount(sessionID) == 0
}

// Broadcast sends payload to every member of a session's room, optionally
// excluding one connection. Slow clients are skipped, not waited for.
func (r *SessionRegistry) Broadcast(sessionID string, payload []byte, excludeConnID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for connID := range r.rooms[sessionID] {
		if connID == excludeConnID {
			continue
		}
		client := r.clients[connID]
		if client == nil {
			continue
		}
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// Shutdown closes every remaining send channel.
func (r *SessionRegistry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.done:
		return
	default:
	}
	close(r.done)
	for id, client := range r.clients {
		delete(r.clients, id)
		delete(r.current, id)
		close(client.Send)
	}
	r.rooms = make(map[string]map[string]struct{})
}
