package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	TeacherID   string    `gorm:"type:uuid;not null;index" json:"teacher_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Teacher     User             `gorm:"foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	Enrollments []Enrollment     `gorm:"foreignKey:CourseID" json:"enrollments,omitempty"`
	Materials   []CourseMaterial `gorm:"foreignKey:CourseID" json:"materials,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Course) TableName() string {
	return "courses"
}

type Enrollment struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	CourseID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_course_student" json:"course_id"`
	StudentID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_course_student" json:"student_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"date_enrolled"`

	// Relationships
	Course  Course `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Student User   `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
}

// BeforeCreate hook to generate UUID
func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Enrollment) TableName() string {
	return "enrollments"
}

// CourseMaterial references supplementary material for a course. Files are
// hosted elsewhere; only the URL is stored.
type CourseMaterial struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CourseID  string    `gorm:"type:uuid;not null;index" json:"course_id"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	FileURL   string    `gorm:"type:text;not null" json:"file_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
}

// BeforeCreate hook to generate UUID
func (m *CourseMaterial) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (CourseMaterial) TableName() string {
	return "course_materials"
}
