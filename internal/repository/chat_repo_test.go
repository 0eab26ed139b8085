package repository

import (
	"testing"
	"time"

	"lms-backend/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupChatTestDB creates an in-memory SQLite database for testing.
func setupChatTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// The pool must stay on a single connection or each connection gets its
	// own empty in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.User{}, &model.Course{}, &model.ChatRoom{}, &model.Message{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         model.RoleStudent,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestChatRoom_CourseRoomNameDerivation(t *testing.T) {
	db := setupChatTestDB(t)

	teacher := createTestUser(t, db, "teacher1")
	course := &model.Course{Title: "Algebra", TeacherID: teacher.ID}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	room := &model.ChatRoom{CourseID: &course.ID}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("failed to create room: %v", err)
	}

	want := "course_" + course.ID
	if room.Name != want {
		t.Errorf("expected derived name %q, got %q", want, room.Name)
	}

	var found model.ChatRoom
	if err := db.First(&found, "id = ?", room.ID).Error; err != nil {
		t.Fatalf("failed to find room: %v", err)
	}
	if found.Name != want {
		t.Errorf("expected stored name %q, got %q", want, found.Name)
	}
}

func TestChatRepository_EnsureRoom(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewChatRepository(db, nil)

	room, err := repo.EnsureRoom("dashboard_chat", false)
	if err != nil {
		t.Fatalf("EnsureRoom() error = %v", err)
	}
	if room.Name != "dashboard_chat" {
		t.Errorf("expected name %q, got %q", "dashboard_chat", room.Name)
	}

	t.Run("idempotent", func(t *testing.T) {
		again, err := repo.EnsureRoom("dashboard_chat", false)
		if err != nil {
			t.Fatalf("EnsureRoom() error = %v", err)
		}
		if again.ID != room.ID {
			t.Errorf("expected same room ID %q, got %q", room.ID, again.ID)
		}

		var count int64
		if err := db.Model(&model.ChatRoom{}).Where("name = ?", "dashboard_chat").Count(&count).Error; err != nil {
			t.Fatalf("failed to count rooms: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 room, got %d", count)
		}
	})
}

func TestChatRepository_RoomExists(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewChatRepository(db, nil)

	exists, err := repo.RoomExists("nope")
	if err != nil {
		t.Fatalf("RoomExists() error = %v", err)
	}
	if exists {
		t.Error("expected room to not exist")
	}

	if _, err := repo.EnsureRoom("general", false); err != nil {
		t.Fatalf("EnsureRoom() error = %v", err)
	}

	exists, err = repo.RoomExists("general")
	if err != nil {
		t.Fatalf("RoomExists() error = %v", err)
	}
	if !exists {
		t.Error("expected room to exist")
	}
}

func TestChatRepository_AppendMessage(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewChatRepository(db, nil)

	user := createTestUser(t, db, "alice")
	room, err := repo.EnsureRoom("general", false)
	if err != nil {
		t.Fatalf("EnsureRoom() error = %v", err)
	}

	before := time.Now()
	msg, err := repo.AppendMessage(room.ID, user.ID, "hello")
	if err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}

	if msg.Content != "hello" {
		t.Errorf("expected content %q, got %q", "hello", msg.Content)
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected store-assigned timestamp, got zero")
	}
	if msg.Timestamp.Before(before.Add(-time.Second)) {
		t.Errorf("timestamp %v is before the insert", msg.Timestamp)
	}
	if msg.Sender.Username != "alice" {
		t.Errorf("expected sender %q, got %q", "alice", msg.Sender.Username)
	}

	// The row is durable before anyone can broadcast it
	var found model.Message
	if err := db.First(&found, "id = ?", msg.ID).Error; err != nil {
		t.Fatalf("failed to find message: %v", err)
	}
}

func TestChatRepository_FindMessagesByRoom(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewChatRepository(db, nil)

	user := createTestUser(t, db, "bob")
	room, err := repo.EnsureRoom("general", false)
	if err != nil {
		t.Fatalf("EnsureRoom() error = %v", err)
	}
	other, err := repo.EnsureRoom("other", false)
	if err != nil {
		t.Fatalf("EnsureRoom() error = %v", err)
	}

	for _, content := range []string{"first", "second", "third"} {
		if _, err := repo.AppendMessage(room.ID, user.ID, content); err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
		// Distinct timestamps keep the ordering assertion meaningful
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := repo.AppendMessage(other.ID, user.ID, "elsewhere"); err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}

	messages, err := repo.FindMessagesByRoom(room.ID, 50, 0)
	if err != nil {
		t.Fatalf("FindMessagesByRoom() error = %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}

	want := []string{"first", "second", "third"}
	for i, msg := range messages {
		if msg.Content != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], msg.Content)
		}
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].Timestamp.Before(messages[i-1].Timestamp) {
			t.Errorf("messages out of ascending timestamp order at index %d", i)
		}
	}

	t.Run("offset", func(t *testing.T) {
		page, err := repo.FindMessagesByRoom(room.ID, 50, 1)
		if err != nil {
			t.Fatalf("FindMessagesByRoom() error = %v", err)
		}
		if len(page) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(page))
		}
		if page[0].Content != "second" {
			t.Errorf("expected %q, got %q", "second", page[0].Content)
		}
	})
}

func TestChatRepository_Participants(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewChatRepository(db, nil)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	room, err := repo.EnsureRoom("general", false)
	if err != nil {
		t.Fatalf("EnsureRoom() error = %v", err)
	}

	if err := repo.AddParticipant(room.ID, alice.ID); err != nil {
		t.Fatalf("AddParticipant() error = %v", err)
	}

	isMember, err := repo.IsParticipant(room.ID, alice.ID)
	if err != nil {
		t.Fatalf("IsParticipant() error = %v", err)
	}
	if !isMember {
		t.Error("expected alice to be a participant")
	}

	isMember, err = repo.IsParticipant(room.ID, bob.ID)
	if err != nil {
		t.Fatalf("IsParticipant() error = %v", err)
	}
	if isMember {
		t.Error("expected bob to not be a participant")
	}

	rooms, err := repo.FindRoomsByParticipant(alice.ID)
	if err != nil {
		t.Fatalf("FindRoomsByParticipant() error = %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(rooms))
	}
	if rooms[0].ID != room.ID {
		t.Errorf("expected room %q, got %q", room.ID, rooms[0].ID)
	}

	rooms, err = repo.FindRoomsByParticipant(bob.ID)
	if err != nil {
		t.Fatalf("FindRoomsByParticipant() error = %v", err)
	}
	if len(rooms) != 0 {
		t.Errorf("expected 0 rooms for non-participant, got %d", len(rooms))
	}
}
