package app

import (
	"net/http"
	"strconv"

	"lms-backend/internal/service"
	"lms-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotifications returns the caller's notifications, newest first
// GET /api/v1/notifications?limit=20&offset=0
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, _ := c.Get("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, err := h.notificationService.GetNotifications(userID.(string), limit, offset)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notifications retrieved", gin.H{"notifications": notifications})
}

// GetUnreadNotifications returns the caller's unread notifications
// GET /api/v1/notifications/unread
func (h *NotificationHandler) GetUnreadNotifications(c *gin.Context) {
	userID, _ := c.Get("userID")

	notifications, err := h.notificationService.GetUnreadNotifications(userID.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread notifications retrieved", gin.H{"notifications": notifications})
}

// GetUnreadCount returns the caller's unread notification count
// GET /api/v1/notifications/unread/count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, _ := c.Get("userID")

	count, err := h.notificationService.GetUnreadCount(userID.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread count retrieved", gin.H{"count": count})
}

// MarkAsRead marks one of the caller's notifications read
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := h.notificationService.MarkAsRead(c.Param("id"), userID.(string)); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllAsRead marks all the caller's notifications read
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := h.notificationService.MarkAllAsRead(userID.(string)); err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "All notifications marked as read", nil)
}

// DeleteNotification deletes one of the caller's notifications
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := h.notificationService.DeleteNotification(c.Param("id"), userID.(string)); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notification deleted", nil)
}
