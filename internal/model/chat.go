package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRoom is either a private room (explicitly named by the caller) or a
// course-wide room shared by everyone enrolled in the course.
type ChatRoom struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	CourseID  *string   `gorm:"type:uuid;index" json:"course_id,omitempty"`
	IsPrivate bool      `gorm:"default:false" json:"is_private"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Course       *Course `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Participants []User  `gorm:"many2many:chat_room_participants;" json:"participants,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *ChatRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave derives the room name for course-bound rooms that were created
// without one. Private rooms must be named by the caller.
func (r *ChatRoom) BeforeSave(tx *gorm.DB) error {
	if r.Name == "" && r.CourseID != nil {
		r.Name = "course_" + *r.CourseID
	}
	return nil
}

// TableName specifies the table name
func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// DefaultRoomName is the well-known room guaranteed to exist after startup.
const DefaultRoomName = "dashboard_chat"

// Message is a persisted chat message. Timestamp is assigned by the store on
// insert and is the canonical ordering key for a room's history.
type Message struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	RoomID    string    `gorm:"type:uuid;not null;index" json:"room_id"`
	SenderID  string    `gorm:"type:uuid;not null;index" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`

	// Relationships
	Room   ChatRoom `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
	Sender User     `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`
}

// BeforeCreate hook to generate UUID
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Message) TableName() string {
	return "messages"
}
