package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	Username       string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"type:varchar(255);not null" json:"-"`
	Role           string    `gorm:"type:varchar(10);not null" json:"role"` // student, teacher
	Bio            *string   `gorm:"type:text" json:"bio,omitempty"`
	ProfilePicture *string   `gorm:"type:text" json:"profile_picture,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)
