package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is a student's rating of a course, one per student per course.
type Feedback struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	StudentID string    `gorm:"type:uuid;not null;uniqueIndex:idx_student_course" json:"student_id"`
	CourseID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_student_course" json:"course_id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5 stars
	Comment   *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Student User   `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
	Course  Course `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
}

// BeforeCreate hook to generate UUID
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Feedback) TableName() string {
	return "feedbacks"
}

type StatusUpdate struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	StudentID string    `gorm:"type:uuid;not null;index" json:"student_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Student User `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
}

// BeforeCreate hook to generate UUID
func (s *StatusUpdate) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (StatusUpdate) TableName() string {
	return "status_updates"
}
