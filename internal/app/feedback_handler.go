package app

import (
	"net/http"
	"strconv"

	"lms-backend/internal/service"
	"lms-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

type SubmitFeedbackRequest struct {
	CourseID string  `json:"course_id" binding:"required"`
	Rating   int     `json:"rating" binding:"required,min=1,max=5"`
	Comment  *string `json:"comment"`
}

// SubmitFeedback records a student's course rating
// POST /api/v1/feedback/feedbacks
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")

	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	feedback, err := h.feedbackService.SubmitFeedback(userID.(string), role.(string), req.CourseID, req.Rating, req.Comment)
	if err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Feedback submitted", gin.H{"feedback": feedback})
}

// ListFeedback lists feedback filtered by the caller's role
// GET /api/v1/feedback/feedbacks
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")

	feedbacks, err := h.feedbackService.ListFeedback(userID.(string), role.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Feedback retrieved", gin.H{"feedbacks": feedbacks})
}

type PostStatusUpdateRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostStatusUpdate records a student status update
// POST /api/v1/feedback/status-updates
func (h *FeedbackHandler) PostStatusUpdate(c *gin.Context) {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")

	var req PostStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	update, err := h.feedbackService.PostStatusUpdate(userID.(string), role.(string), req.Content)
	if err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Status update posted", gin.H{"status_update": update})
}

// ListStatusUpdates lists updates, optionally for a specific student
// GET /api/v1/feedback/status-updates?student_id=xxx&limit=50&offset=0
func (h *FeedbackHandler) ListStatusUpdates(c *gin.Context) {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	updates, err := h.feedbackService.ListStatusUpdates(userID.(string), role.(string), c.Query("student_id"), limit, offset)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Status updates retrieved", gin.H{"status_updates": updates})
}

// DeleteStatusUpdate removes the caller's own status update
// DELETE /api/v1/feedback/status-updates/:id
func (h *FeedbackHandler) DeleteStatusUpdate(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := h.feedbackService.DeleteStatusUpdate(c.Param("id"), userID.(string)); err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Status update deleted", nil)
}
