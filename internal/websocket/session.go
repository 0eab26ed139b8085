package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"lms-backend/internal/model"
	"lms-backend/internal/service"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// inboundFrame is the only client payload the session accepts. Any other
// field is ignored.
type inboundFrame struct {
	Message string `json:"message"`
}

// Session owns one websocket connection bound to a single room. The read
// pump processes frames one at a time: a frame is persisted and broadcast
// before the next frame is read.
type Session struct {
	group *Group
	conn  *websocket.Conn
	send  chan Event

	user *model.User
	room string

	chat service.ChatService

	closeOnce sync.Once
}

func newSession(group *Group, conn *websocket.Conn, user *model.User, room string, chat service.ChatService) *Session {
	return &Session{
		group: group,
		conn:  conn,
		send:  make(chan Event, 64),
		user:  user,
		room:  room,
		chat:  chat,
	}
}

// enqueue offers an event to the session's outbound buffer without blocking.
// A false return means the session is too far behind to keep.
func (s *Session) enqueue(ev Event) bool {
	select {
	case s.send <- ev:
		return true
	default:
		return false
	}
}

// close tears down the transport; the read pump unblocks and runs cleanup.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
}

// readPump reads client frames until the transport closes. Leaving the group
// happens here exactly once, whatever caused the exit.
func (s *Session) readPump() {
	defer func() {
		s.group.Leave(s.room, s)
		s.close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error in room %q: %v", s.room, err)
			}
			break
		}

		// Malformed and empty frames are dropped without closing the
		// connection.
		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Message == "" {
			continue
		}
		if s.user == nil {
			continue
		}

		// Persist first; the broadcast carries the store-assigned timestamp.
		msg, err := s.chat.SaveMessage(s.room, s.user.ID, frame.Message)
		if err != nil {
			log.Printf("Dropping message for room %q: %v", s.room, err)
			continue
		}

		s.group.Publish(s.room, Event{
			Message:   msg.Content,
			User:      s.user.Username,
			Timestamp: msg.Timestamp.Format(time.RFC3339Nano),
		})
	}
}

// writePump drains the outbound buffer to the connection and keeps the peer
// alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case ev := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
