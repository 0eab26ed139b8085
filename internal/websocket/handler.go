package websocket

import (
	"log"
	"net/http"
	"time"

	"lms-backend/internal/repository"
	"lms-backend/internal/service"
	"lms-backend/internal/util"

	"github.com/gorilla/websocket"
)

// Application close codes surfaced to clients on failed connects
const (
	CloseMissingToken = 4001
	CloseInvalidToken = 4002
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development, restrict in production
		return true
	},
}

// Handler upgrades room-scoped chat connections
type Handler struct {
	group     *Group
	chat      service.ChatService
	users     repository.UserRepository
	jwtSecret string
}

func NewHandler(group *Group, chat service.ChatService, users repository.UserRepository, jwtSecret string) *Handler {
	return &Handler{
		group:     group,
		chat:      chat,
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// ServeWS authenticates the bearer token from the `token` query parameter and
// binds the connection to the room named in the path. The session is
// registered in the broadcast group before the first frame is read, so no
// broadcast published after a successful connect can be missed.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request, roomName string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		closeWithCode(conn, CloseMissingToken, "missing token")
		return
	}

	claims, err := util.ValidateToken(token, h.jwtSecret)
	if err != nil {
		closeWithCode(conn, CloseInvalidToken, "invalid token")
		return
	}

	// A validated token always references an existing user; failure here is
	// an internal fault, not a credential error.
	user, err := h.users.FindByID(claims.UserID)
	if err != nil {
		log.Printf("Token resolved to unknown user %s: %v", claims.UserID, err)
		closeWithCode(conn, websocket.CloseInternalServerErr, "unknown user")
		return
	}

	sess := newSession(h.group, conn, user, roomName, h.chat)
	h.group.Join(roomName, sess)

	go sess.writePump()
	sess.readPump()
}

func closeWithCode(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}
