package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lms-backend/internal/model"

	"github.com/gorilla/websocket"
)

// newTestConn returns the server side of a live websocket connection.
func newTestConn(t *testing.T) *websocket.Conn {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case conn := <-connCh:
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server connection")
		return nil
	}
}

func newTestSession(t *testing.T, g *Group, username, room string) *Session {
	t.Helper()
	user := &model.User{ID: username + "-id", Username: username}
	return newSession(g, newTestConn(t), user, room, nil)
}

func TestGroup_JoinLeave(t *testing.T) {
	g := NewGroup()
	s := newTestSession(t, g, "alice", "room_a")

	g.Join("room_a", s)
	g.Join("room_a", s) // joining twice is a no-op
	if got := g.MemberCount("room_a"); got != 1 {
		t.Errorf("expected 1 member, got %d", got)
	}

	g.Leave("room_b", s) // never joined room_b
	if got := g.MemberCount("room_a"); got != 1 {
		t.Errorf("expected 1 member after unrelated leave, got %d", got)
	}

	g.Leave("room_a", s)
	if got := g.MemberCount("room_a"); got != 0 {
		t.Errorf("expected 0 members, got %d", got)
	}

	// Empty rooms are dropped from the registry
	g.mu.RLock()
	_, exists := g.rooms["room_a"]
	g.mu.RUnlock()
	if exists {
		t.Error("expected empty room to be removed")
	}

	g.Leave("room_a", s) // leaving again is safe
}

func TestGroup_PublishOrder(t *testing.T) {
	g := NewGroup()
	s1 := newTestSession(t, g, "alice", "room_a")
	s2 := newTestSession(t, g, "bob", "room_a")

	g.Join("room_a", s1)
	g.Join("room_a", s2)

	events := []Event{
		{Message: "first", User: "alice", Timestamp: "t1"},
		{Message: "second", User: "bob", Timestamp: "t2"},
		{Message: "third", User: "alice", Timestamp: "t3"},
	}
	for _, ev := range events {
		g.Publish("room_a", ev)
	}

	for _, s := range []*Session{s1, s2} {
		for i, want := range events {
			select {
			case got := <-s.send:
				if got.Message != want.Message {
					t.Errorf("event %d: expected %q, got %q", i, want.Message, got.Message)
				}
			default:
				t.Fatalf("event %d: nothing buffered for session", i)
			}
		}
	}
}

func TestGroup_PublishSkipsOtherRooms(t *testing.T) {
	g := NewGroup()
	s1 := newTestSession(t, g, "alice", "room_a")
	s2 := newTestSession(t, g, "bob", "room_b")

	g.Join("room_a", s1)
	g.Join("room_b", s2)

	g.Publish("room_a", Event{Message: "hello"})

	if len(s1.send) != 1 {
		t.Errorf("expected 1 buffered event for room member, got %d", len(s1.send))
	}
	if len(s2.send) != 0 {
		t.Errorf("expected 0 buffered events for other room, got %d", len(s2.send))
	}
}

func TestGroup_PublishDropsUnresponsiveMember(t *testing.T) {
	g := NewGroup()
	healthy := newTestSession(t, g, "alice", "room_a")
	stuck := newTestSession(t, g, "bob", "room_a")

	g.Join("room_a", healthy)
	g.Join("room_a", stuck)

	// Fill the outbound buffer so the next publish cannot be enqueued
	for stuck.enqueue(Event{Message: "filler"}) {
	}

	g.Publish("room_a", Event{Message: "hello"})

	if got := g.MemberCount("room_a"); got != 1 {
		t.Errorf("expected stuck session to be dropped, member count = %d", got)
	}

	select {
	case ev := <-healthy.send:
		if ev.Message != "hello" {
			t.Errorf("expected %q, got %q", "hello", ev.Message)
		}
	default:
		t.Error("expected healthy session to receive the event")
	}
}

func TestGroup_PublishToUnknownRoom(t *testing.T) {
	g := NewGroup()
	// Must not panic or create the room
	g.Publish("nope", Event{Message: "hello"})
	if got := g.MemberCount("nope"); got != 0 {
		t.Errorf("expected 0 members, got %d", got)
	}
}
