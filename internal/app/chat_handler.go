package app

import (
	"net/http"
	"strconv"

	"lms-backend/internal/service"
	"lms-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListRooms returns rooms where the caller is a participant
// GET /api/v1/chat/rooms
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, _ := c.Get("userID")

	rooms, err := h.chatService.RoomsForUser(userID.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Rooms retrieved", gin.H{"rooms": rooms})
}

// GetRoom returns one room with its participants; participants only
// GET /api/v1/chat/rooms/:roomName
func (h *ChatHandler) GetRoom(c *gin.Context) {
	userID, _ := c.Get("userID")

	room, err := h.chatService.RoomDetail(userID.(string), c.Param("roomName"))
	if err != nil {
		if err == service.ErrRoomNotFound {
			util.NotFound(c, err.Error())
			return
		}
		util.Forbidden(c, err.Error())
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Room retrieved", gin.H{"room": room})
}

// GetRoomHistory returns a room's messages in ascending timestamp order;
// participants only. Timestamps here and in the live broadcast come from the
// same store clock.
// GET /api/v1/chat/rooms/:roomName/messages?limit=50&offset=0
func (h *ChatHandler) GetRoomHistory(c *gin.Context) {
	userID, _ := c.Get("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.chatService.RoomHistory(userID.(string), c.Param("roomName"), limit, offset)
	if err != nil {
		if err == service.ErrRoomNotFound {
			util.NotFound(c, err.Error())
			return
		}
		util.Forbidden(c, err.Error())
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Messages retrieved", gin.H{"messages": messages})
}

type CreateRoomRequest struct {
	Name         string   `json:"name" binding:"required,max=255"`
	IsPrivate    bool     `json:"is_private"`
	Participants []string `json:"participants"`
}

// CreateRoom creates a private or ad-hoc room with an explicit name
// POST /api/v1/chat/rooms
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	userID, _ := c.Get("userID")

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	// The creator is always a participant
	participants := append([]string{userID.(string)}, req.Participants...)

	room, err := h.chatService.CreateRoom(req.Name, req.IsPrivate, participants)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Room created", gin.H{"room": room})
}
