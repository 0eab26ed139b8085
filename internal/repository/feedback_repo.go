package repository

import (
	"lms-backend/internal/model"

	"gorm.io/gorm"
)

type FeedbackRepository interface {
	CreateFeedback(feedback *model.Feedback) error
	FeedbackExists(studentID, courseID string) (bool, error)
	FindFeedbackByStudent(studentID string) ([]model.Feedback, error)
	FindFeedbackByCourseTeacher(teacherID string) ([]model.Feedback, error)
	FindFeedbackByCourse(courseID string) ([]model.Feedback, error)

	CreateStatusUpdate(update *model.StatusUpdate) error
	FindStatusUpdateByID(id string) (*model.StatusUpdate, error)
	FindStatusUpdatesByStudent(studentID string) ([]model.StatusUpdate, error)
	FindAllStatusUpdates(limit, offset int) ([]model.StatusUpdate, error)
	DeleteStatusUpdate(id string) error
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) CreateFeedback(feedback *model.Feedback) error {
	return r.db.Create(feedback).Error
}

func (r *feedbackRepository) FeedbackExists(studentID, courseID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Feedback{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *feedbackRepository) FindFeedbackByStudent(studentID string) ([]model.Feedback, error) {
	var feedbacks []model.Feedback
	err := r.db.
		Preload("Student").
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

// FindFeedbackByCourseTeacher returns feedback left on any of the teacher's courses
func (r *feedbackRepository) FindFeedbackByCourseTeacher(teacherID string) ([]model.Feedback, error) {
	var feedbacks []model.Feedback
	err := r.db.
		Preload("Student").
		Preload("Course").
		Joins("JOIN courses ON courses.id = feedbacks.course_id").
		Where("courses.teacher_id = ?", teacherID).
		Order("feedbacks.created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

func (r *feedbackRepository) FindFeedbackByCourse(courseID string) ([]model.Feedback, error) {
	var feedbacks []model.Feedback
	err := r.db.
		Preload("Student").
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

func (r *feedbackRepository) CreateStatusUpdate(update *model.StatusUpdate) error {
	return r.db.Create(update).Error
}

func (r *feedbackRepository) FindStatusUpdateByID(id string) (*model.StatusUpdate, error) {
	var update model.StatusUpdate
	err := r.db.Preload("Student").Where("id = ?", id).First(&update).Error
	if err != nil {
		return nil, err
	}
	return &update, nil
}

func (r *feedbackRepository) FindStatusUpdatesByStudent(studentID string) ([]model.StatusUpdate, error) {
	var updates []model.StatusUpdate
	err := r.db.
		Preload("Student").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&updates).Error
	return updates, err
}

func (r *feedbackRepository) FindAllStatusUpdates(limit, offset int) ([]model.StatusUpdate, error) {
	var updates []model.StatusUpdate
	err := r.db.
		Preload("Student").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&updates).Error
	return updates, err
}

func (r *feedbackRepository) DeleteStatusUpdate(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.StatusUpdate{}).Error
}
