package app

import (
	"net/http"
	"strconv"

	"lms-backend/internal/service"
	"lms-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courseService service.CourseService
}

func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

// CreateCourse creates a course (teachers only)
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")

	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	course, err := h.courseService.CreateCourse(userID.(string), role.(string), req.Title, req.Description)
	if err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Course created", gin.H{"course": course})
}

// ListCourses lists courses filtered by the caller's role
// GET /api/v1/courses?limit=50&offset=0
func (h *CourseHandler) ListCourses(c *gin.Context) {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	courses, err := h.courseService.ListCourses(userID.(string), role.(string), limit, offset)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Courses retrieved", gin.H{"courses": courses})
}

// GetCourse returns one course with teacher, materials and enrollments
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.GetCourse(c.Param("id"))
	if err != nil {
		util.NotFound(c, err.Error())
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Course retrieved", gin.H{"course": course})
}

// DeleteCourse deletes a course owned by the caller
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := h.courseService.DeleteCourse(c.Param("id"), userID.(string)); err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Course deleted", nil)
}

type EnrollRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

// Enroll enrolls the calling student in a course
// POST /api/v1/enrollments
func (h *CourseHandler) Enroll(c *gin.Context) {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	enrollment, err := h.courseService.Enroll(req.CourseID, userID.(string), role.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Enrolled successfully", gin.H{"enrollment": enrollment})
}

// ListEnrollments lists enrollments filtered by the caller's role
// GET /api/v1/enrollments
func (h *CourseHandler) ListEnrollments(c *gin.Context) {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")

	enrollments, err := h.courseService.ListEnrollments(userID.(string), role.(string))
	if err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Enrollments retrieved", gin.H{"enrollments": enrollments})
}

type AddMaterialRequest struct {
	Title   string `json:"title"`
	FileURL string `json:"file_url" binding:"required"`
}

// AddMaterial attaches a material URL to a course owned by the caller
// POST /api/v1/courses/:id/materials
func (h *CourseHandler) AddMaterial(c *gin.Context) {
	userID, _ := c.Get("userID")

	var req AddMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	material, err := h.courseService.AddMaterial(c.Param("id"), userID.(string), req.Title, req.FileURL)
	if err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Material added", gin.H{"material": material})
}

// ListMaterials lists a course's materials
// GET /api/v1/courses/:id/materials
func (h *CourseHandler) ListMaterials(c *gin.Context) {
	materials, err := h.courseService.ListMaterials(c.Param("id"))
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Materials retrieved", gin.H{"materials": materials})
}

// DeleteMaterial removes a material from a course owned by the caller
// DELETE /api/v1/courses/:id/materials/:materialID
func (h *CourseHandler) DeleteMaterial(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := h.courseService.DeleteMaterial(c.Param("materialID"), c.Param("id"), userID.(string)); err != nil {
		util.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Material deleted", nil)
}
