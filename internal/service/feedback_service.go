package service

import (
	"errors"
	"fmt"

	"lms-backend/internal/model"
	"lms-backend/internal/repository"

	"gorm.io/gorm"
)

type FeedbackService interface {
	SubmitFeedback(studentID, studentRole, courseID string, rating int, comment *string) (*model.Feedback, error)
	ListFeedback(requesterID, requesterRole string) ([]model.Feedback, error)

	PostStatusUpdate(studentID, studentRole, content string) (*model.StatusUpdate, error)
	ListStatusUpdates(requesterID, requesterRole, studentID string, limit, offset int) ([]model.StatusUpdate, error)
	DeleteStatusUpdate(updateID, requesterID string) error
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
	courseRepo   repository.CourseRepository
	notification NotificationService
}

func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	courseRepo repository.CourseRepository,
	notification NotificationService,
) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		courseRepo:   courseRepo,
		notification: notification,
	}
}

func (s *feedbackService) SubmitFeedback(studentID, studentRole, courseID string, rating int, comment *string) (*model.Feedback, error) {
	if studentRole != model.RoleStudent {
		return nil, errors.New("only students can submit feedback")
	}
	if rating < 1 || rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}

	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		return nil, errors.New("course not found")
	}

	exists, err := s.feedbackRepo.FeedbackExists(studentID, courseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("you already submitted feedback for this course")
	}

	feedback := &model.Feedback{
		StudentID: studentID,
		CourseID:  courseID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.feedbackRepo.CreateFeedback(feedback); err != nil {
		return nil, err
	}

	if s.notification != nil {
		_ = s.notification.Notify(course.TeacherID,
			fmt.Sprintf("New feedback on %s: %d stars", course.Title, rating))
	}

	return feedback, nil
}

// ListFeedback applies the role filter: students see their own feedback,
// teachers see feedback on their courses.
func (s *feedbackService) ListFeedback(requesterID, requesterRole string) ([]model.Feedback, error) {
	switch requesterRole {
	case model.RoleStudent:
		return s.feedbackRepo.FindFeedbackByStudent(requesterID)
	case model.RoleTeacher:
		return s.feedbackRepo.FindFeedbackByCourseTeacher(requesterID)
	default:
		return nil, errors.New("unknown role")
	}
}

func (s *feedbackService) PostStatusUpdate(studentID, studentRole, content string) (*model.StatusUpdate, error) {
	if studentRole != model.RoleStudent {
		return nil, errors.New("only students can post status updates")
	}
	if content == "" {
		return nil, errors.New("content is required")
	}

	update := &model.StatusUpdate{StudentID: studentID, Content: content}
	if err := s.feedbackRepo.CreateStatusUpdate(update); err != nil {
		return nil, err
	}
	return update, nil
}

// ListStatusUpdates returns updates for an explicit student when requested,
// otherwise the student's own updates, or everything for teachers.
func (s *feedbackService) ListStatusUpdates(requesterID, requesterRole, studentID string, limit, offset int) ([]model.StatusUpdate, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	if studentID != "" {
		return s.feedbackRepo.FindStatusUpdatesByStudent(studentID)
	}
	if requesterRole == model.RoleStudent {
		return s.feedbackRepo.FindStatusUpdatesByStudent(requesterID)
	}
	return s.feedbackRepo.FindAllStatusUpdates(limit, offset)
}

func (s *feedbackService) DeleteStatusUpdate(updateID, requesterID string) error {
	update, err := s.feedbackRepo.FindStatusUpdateByID(updateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("status update not found")
		}
		return err
	}
	if update.StudentID != requesterID {
		return errors.New("you can only delete your own status updates")
	}
	return s.feedbackRepo.DeleteStatusUpdate(updateID)
}
