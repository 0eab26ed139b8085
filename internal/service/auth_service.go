package service

import (
	"errors"
	"strings"
	"time"

	"lms-backend/internal/model"
	"lms-backend/internal/repository"
	"lms-backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(req RegisterRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*AuthResponse, error)
	GetMe(userID string) (*model.User, error)
	GetUser(userID string) (*model.User, error)
	SearchUsers(requesterRole, keyword string, limit, offset int) ([]model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiryHours int) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: time.Duration(jwtExpiryHours) * time.Hour,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"` // username or email
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *authService) Register(req RegisterRequest) (*AuthResponse, error) {
	if req.Role != model.RoleStudent && req.Role != model.RoleTeacher {
		return nil, errors.New("role must be student or teacher")
	}

	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, errors.New("username already taken")
	}
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := util.GenerateToken(user.ID, user.Username, user.Role, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// Login accepts a username or an email in the username field
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	var user *model.User
	var err error

	if strings.Contains(req.Username, "@") {
		user, err = s.userRepo.FindByEmail(req.Username)
	} else {
		user, err = s.userRepo.FindByUsername(req.Username)
	}
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	token, err := util.GenerateToken(user.ID, user.Username, user.Role, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) GetMe(userID string) (*model.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *authService) GetUser(userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return user, nil
}

// SearchUsers lets teachers look up students and other teachers by username
// or email. Keyword must be at least 2 characters.
func (s *authService) SearchUsers(requesterRole, keyword string, limit, offset int) ([]model.User, error) {
	if requesterRole != model.RoleTeacher {
		return nil, errors.New("only teachers can search users")
	}

	keyword = strings.TrimSpace(keyword)
	if len(keyword) < 2 {
		return []model.User{}, nil
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return s.userRepo.SearchUsers(keyword, limit, offset)
}
