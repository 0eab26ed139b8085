package service

import (
	"testing"
	"time"

	"lms-backend/internal/model"
	"lms-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceTestDB creates an in-memory SQLite database for testing.
func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Single connection, or each pooled connection sees its own empty
	// in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.CourseMaterial{},
		&model.Feedback{},
		&model.StatusUpdate{},
		&model.Notification{},
		&model.ChatRoom{},
		&model.Message{},
	))

	return db
}

func newTestUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newChatService(t *testing.T, db *gorm.DB) (ChatService, repository.ChatRepository) {
	t.Helper()

	chatRepo := repository.NewChatRepository(db, nil)
	userRepo := repository.NewUserRepository(db)
	return NewChatService(chatRepo, userRepo), chatRepo
}

func TestChatService_SaveMessage(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, chatRepo := newChatService(t, db)

	alice := newTestUser(t, db, "alice", model.RoleStudent)
	_, err := chatRepo.EnsureRoom("general", false)
	require.NoError(t, err)

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := svc.SaveMessage("general", alice.ID, "")
		assert.Error(t, err)
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := svc.SaveMessage("no_such_room", alice.ID, "hello")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("persists with store timestamp", func(t *testing.T) {
		msg, err := svc.SaveMessage("general", alice.ID, "hello")
		require.NoError(t, err)

		assert.Equal(t, "hello", msg.Content)
		assert.Equal(t, alice.ID, msg.SenderID)
		assert.False(t, msg.Timestamp.IsZero())
		assert.WithinDuration(t, time.Now(), msg.Timestamp, 5*time.Second)

		var count int64
		require.NoError(t, db.Model(&model.Message{}).Where("id = ?", msg.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestChatService_RoomHistory(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, chatRepo := newChatService(t, db)

	alice := newTestUser(t, db, "alice", model.RoleStudent)
	bob := newTestUser(t, db, "bob", model.RoleStudent)

	room, err := chatRepo.EnsureRoom("general", false)
	require.NoError(t, err)
	require.NoError(t, chatRepo.AddParticipant(room.ID, alice.ID))

	for _, content := range []string{"one", "two", "three"} {
		_, err := svc.SaveMessage("general", alice.ID, content)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("unknown room", func(t *testing.T) {
		_, err := svc.RoomHistory(alice.ID, "no_such_room", 50, 0)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("non-participant rejected", func(t *testing.T) {
		_, err := svc.RoomHistory(bob.ID, "general", 50, 0)
		assert.Error(t, err)
	})

	t.Run("ascending order for participant", func(t *testing.T) {
		messages, err := svc.RoomHistory(alice.ID, "general", 50, 0)
		require.NoError(t, err)
		require.Len(t, messages, 3)

		assert.Equal(t, "one", messages[0].Content)
		assert.Equal(t, "two", messages[1].Content)
		assert.Equal(t, "three", messages[2].Content)
	})
}

func TestChatService_RoomDetail(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, chatRepo := newChatService(t, db)

	alice := newTestUser(t, db, "alice", model.RoleStudent)
	bob := newTestUser(t, db, "bob", model.RoleStudent)

	room, err := chatRepo.EnsureRoom("general", false)
	require.NoError(t, err)
	require.NoError(t, chatRepo.AddParticipant(room.ID, alice.ID))

	detail, err := svc.RoomDetail(alice.ID, "general")
	require.NoError(t, err)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, alice.ID, detail.Participants[0].ID)

	_, err = svc.RoomDetail(bob.ID, "general")
	assert.Error(t, err)
}

func TestChatService_CreateRoom(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := newChatService(t, db)

	alice := newTestUser(t, db, "alice", model.RoleStudent)
	bob := newTestUser(t, db, "bob", model.RoleStudent)

	t.Run("name required", func(t *testing.T) {
		_, err := svc.CreateRoom("", true, []string{alice.ID})
		assert.Error(t, err)
	})

	t.Run("creates private room with participants", func(t *testing.T) {
		room, err := svc.CreateRoom("study-group", true, []string{alice.ID, bob.ID})
		require.NoError(t, err)

		assert.True(t, room.IsPrivate)
		assert.Len(t, room.Participants, 2)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := svc.CreateRoom("study-group", true, []string{alice.ID})
		assert.Error(t, err)
	})

	t.Run("unknown participants skipped", func(t *testing.T) {
		room, err := svc.CreateRoom("pair", true, []string{alice.ID, "no-such-user"})
		require.NoError(t, err)
		assert.Len(t, room.Participants, 1)
	})
}

func TestChatService_EnsureDefaultRoom(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := newChatService(t, db)

	require.NoError(t, svc.EnsureDefaultRoom())
	require.NoError(t, svc.EnsureDefaultRoom())

	var count int64
	require.NoError(t, db.Model(&model.ChatRoom{}).Where("name = ?", model.DefaultRoomName).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
