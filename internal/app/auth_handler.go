package app

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"lms-backend/internal/service"
	"lms-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService service.AuthService
	jwtSecret   string
}

func NewAuthHandler(authService service.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErr validator.ValidationErrors
		if errors.As(err, &validationErr) {
			for _, fieldErr := range validationErr {
				if fieldErr.Field() == "Password" && fieldErr.Tag() == "min" {
					util.BadRequest(c, "Password must be at least 8 characters")
					return
				}
				if fieldErr.Field() == "Email" {
					util.BadRequest(c, "Invalid email format")
					return
				}
			}
		}
		util.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Register(req)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Registration successful", resp)
}

// Login handles user login with username or email
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		util.Unauthorized(c, err.Error())
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Login successful", resp)
}

// GetMe handles getting current user info
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetMe(userID.(string))
	if err != nil {
		util.NotFound(c, "User not found")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved successfully", gin.H{"user": user})
}

// GetUser returns a user's public profile
// GET /api/v1/users/:id
func (h *AuthHandler) GetUser(c *gin.Context) {
	user, err := h.authService.GetUser(c.Param("id"))
	if err != nil {
		util.NotFound(c, err.Error())
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved successfully", gin.H{"user": user})
}

// SearchUsers handles searching users by keyword (teachers only)
// GET /api/v1/users/search?q=keyword&limit=20&offset=0
func (h *AuthHandler) SearchUsers(c *gin.Context) {
	role, _ := c.Get("role")

	keyword := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.authService.SearchUsers(role.(string), keyword, limit, offset)
	if err != nil {
		util.Forbidden(c, err.Error())
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", gin.H{
		"users": users,
		"total": len(users),
	})
}

// AuthMiddleware validates the JWT bearer token and stores the caller's
// identity in the request context
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			util.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(parts[1], h.jwtSecret)
		if err != nil {
			util.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole is the single authorization-policy step for role-gated
// endpoints; handlers behind it can assume the role holds.
func (h *AuthHandler) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole, exists := c.Get("role")
		if !exists {
			util.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		if callerRole != role {
			util.Forbidden(c, "Access denied: "+role+" role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
