package service

import (
	"testing"

	"lms-backend/internal/model"
	"lms-backend/internal/repository"
	"lms-backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()
	return NewAuthService(repository.NewUserRepository(db), "test-secret", 24)
}

func TestAuthService_Register(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newAuthService(t, db)

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Register(RegisterRequest{
			Username: "admin", Email: "admin@example.com", Password: "password123", Role: "admin",
		})
		assert.Error(t, err)
	})

	t.Run("registers and returns a usable token", func(t *testing.T) {
		resp, err := svc.Register(RegisterRequest{
			Username: "alice", Email: "alice@example.com", Password: "password123", Role: model.RoleStudent,
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.User.Username)
		assert.NotEqual(t, "password123", resp.User.PasswordHash, "password must not be stored in clear")

		claims, err := util.ValidateToken(resp.Token, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)
		assert.Equal(t, model.RoleStudent, claims.Role)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.Register(RegisterRequest{
			Username: "alice", Email: "alice2@example.com", Password: "password123", Role: model.RoleStudent,
		})
		assert.Error(t, err)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(RegisterRequest{
			Username: "alice2", Email: "alice@example.com", Password: "password123", Role: model.RoleStudent,
		})
		assert.Error(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "password123", Role: model.RoleStudent,
	})
	require.NoError(t, err)

	t.Run("by username", func(t *testing.T) {
		resp, err := svc.Login(LoginRequest{Username: "alice", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("by email", func(t *testing.T) {
		resp, err := svc.Login(LoginRequest{Username: "alice@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(LoginRequest{Username: "alice", Password: "wrong-password"})
		assert.Error(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(LoginRequest{Username: "nobody", Password: "password123"})
		assert.Error(t, err)
	})
}

func TestAuthService_SearchUsers(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newAuthService(t, db)

	newTestUser(t, db, "alice", model.RoleStudent)
	newTestUser(t, db, "alicia", model.RoleStudent)
	newTestUser(t, db, "bob", model.RoleStudent)

	t.Run("teacher only", func(t *testing.T) {
		_, err := svc.SearchUsers(model.RoleStudent, "ali", 20, 0)
		assert.Error(t, err)
	})

	t.Run("keyword under 2 characters matches nothing", func(t *testing.T) {
		users, err := svc.SearchUsers(model.RoleTeacher, "a", 20, 0)
		require.NoError(t, err)
		assert.Empty(t, users)

		users, err = svc.SearchUsers(model.RoleTeacher, "  a  ", 20, 0)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("matches case-insensitively", func(t *testing.T) {
		users, err := svc.SearchUsers(model.RoleTeacher, "ALI", 20, 0)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}
