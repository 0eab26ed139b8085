package websocket

import (
	"log"
	"sync"
)

// Event is the outbound frame broadcast to every member of a room, the sender
// included. Timestamp is the store-assigned timestamp in RFC 3339 form.
type Event struct {
	Message   string `json:"message"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}

// Group maps room names to the set of currently connected sessions and fans
// events out to them. It is constructed once per service instance and passed
// to every session; membership is the only shared mutable state in the chat
// core.
type Group struct {
	mu    sync.RWMutex
	rooms map[string]map[*Session]bool
}

func NewGroup() *Group {
	return &Group{
		rooms: make(map[string]map[*Session]bool),
	}
}

// Join adds a session to a room's member set. Joining twice is a no-op.
func (g *Group) Join(room string, s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rooms[room] == nil {
		g.rooms[room] = make(map[*Session]bool)
	}
	g.rooms[room][s] = true

	log.Printf("Session joined room %q, members: %d", room, len(g.rooms[room]))
}

// Leave removes a session from a room's member set. Safe to call for a
// session that never joined. Empty rooms are dropped from the registry.
func (g *Group) Leave(room string, s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	members, ok := g.rooms[room]
	if !ok {
		return
	}
	if _, ok := members[s]; !ok {
		return
	}

	delete(members, s)
	log.Printf("Session left room %q, members: %d", room, len(members))

	if len(members) == 0 {
		delete(g.rooms, room)
	}
}

// Publish delivers an event to every current member of a room. Publishes for
// a room are serialized, so every member observes that room's events in the
// same order. A member whose send buffer is full is dropped and closed; that
// never fails the publish.
func (g *Group) Publish(room string, ev Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for s := range g.rooms[room] {
		if !s.enqueue(ev) {
			delete(g.rooms[room], s)
			go s.close()
			log.Printf("Dropped unresponsive session from room %q", room)
		}
	}
	if len(g.rooms[room]) == 0 {
		delete(g.rooms, room)
	}
}

// MemberCount reports the current size of a room's member set
func (g *Group) MemberCount(room string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms[room])
}
