package service

import (
	"errors"
	"fmt"

	"lms-backend/internal/model"
	"lms-backend/internal/repository"

	"gorm.io/gorm"
)

type CourseService interface {
	CreateCourse(teacherID, teacherRole, title, description string) (*model.Course, error)
	GetCourse(id string) (*model.Course, error)
	ListCourses(requesterID, requesterRole string, limit, offset int) ([]model.Course, error)
	DeleteCourse(courseID, requesterID string) error

	Enroll(courseID, studentID, studentRole string) (*model.Enrollment, error)
	ListEnrollments(requesterID, requesterRole string) ([]model.Enrollment, error)

	AddMaterial(courseID, requesterID, title, fileURL string) (*model.CourseMaterial, error)
	ListMaterials(courseID string) ([]model.CourseMaterial, error)
	DeleteMaterial(materialID, courseID, requesterID string) error
}

type courseService struct {
	courseRepo   repository.CourseRepository
	chatRepo     repository.ChatRepository
	notification NotificationService
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	chatRepo repository.ChatRepository,
	notification NotificationService,
) CourseService {
	return &courseService{
		courseRepo:   courseRepo,
		chatRepo:     chatRepo,
		notification: notification,
	}
}

// CreateCourse creates a course and its course-wide chat room
func (s *courseService) CreateCourse(teacherID, teacherRole, title, description string) (*model.Course, error) {
	if teacherRole != model.RoleTeacher {
		return nil, errors.New("only teachers can create courses")
	}
	if title == "" {
		return nil, errors.New("title is required")
	}

	course := &model.Course{
		Title:       title,
		Description: description,
		TeacherID:   teacherID,
	}
	if err := s.courseRepo.Create(course); err != nil {
		return nil, err
	}

	// Every course gets a course-wide room; the name derives from the course
	// ID in the model hook.
	room := &model.ChatRoom{CourseID: &course.ID, IsPrivate: false}
	if err := s.chatRepo.CreateRoom(room); err != nil {
		return nil, err
	}
	if err := s.chatRepo.AddParticipant(room.ID, teacherID); err != nil {
		return nil, err
	}

	return course, nil
}

func (s *courseService) GetCourse(id string) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("course not found")
		}
		return nil, err
	}
	return course, nil
}

// ListCourses applies the role filter: teachers see their own courses,
// students and everyone else see all courses.
func (s *courseService) ListCourses(requesterID, requesterRole string, limit, offset int) ([]model.Course, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	if requesterRole == model.RoleTeacher {
		return s.courseRepo.FindByTeacher(requesterID, limit, offset)
	}
	return s.courseRepo.FindAll(limit, offset)
}

func (s *courseService) DeleteCourse(courseID, requesterID string) error {
	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		return errors.New("course not found")
	}
	if course.TeacherID != requesterID {
		return errors.New("you can only delete your own courses")
	}
	return s.courseRepo.Delete(courseID)
}

// Enroll enrolls a student, adds them to the course chat room and notifies
// the teacher.
func (s *courseService) Enroll(courseID, studentID, studentRole string) (*model.Enrollment, error) {
	if studentRole != model.RoleStudent {
		return nil, errors.New("only students can enroll in courses")
	}

	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		return nil, errors.New("course not found")
	}

	exists, err := s.courseRepo.EnrollmentExists(courseID, studentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("you are already enrolled in this course")
	}

	enrollment := &model.Enrollment{CourseID: courseID, StudentID: studentID}
	if err := s.courseRepo.CreateEnrollment(enrollment); err != nil {
		return nil, err
	}

	// Membership in the course room follows enrollment
	room, err := s.chatRepo.EnsureRoom("course_"+courseID, false)
	if err == nil {
		_ = s.chatRepo.AddParticipant(room.ID, studentID)
	}

	if s.notification != nil {
		_ = s.notification.Notify(course.TeacherID,
			fmt.Sprintf("A new student enrolled in %s", course.Title))
	}

	return enrollment, nil
}

// ListEnrollments applies the role filter: students see their own
// enrollments, teachers see enrollments in their courses.
func (s *courseService) ListEnrollments(requesterID, requesterRole string) ([]model.Enrollment, error) {
	switch requesterRole {
	case model.RoleStudent:
		return s.courseRepo.FindEnrollmentsByStudent(requesterID)
	case model.RoleTeacher:
		return s.courseRepo.FindEnrollmentsByTeacher(requesterID)
	default:
		return nil, errors.New("unknown role")
	}
}

func (s *courseService) AddMaterial(courseID, requesterID, title, fileURL string) (*model.CourseMaterial, error) {
	if fileURL == "" {
		return nil, errors.New("file_url is required")
	}

	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		return nil, errors.New("course not found")
	}
	if course.TeacherID != requesterID {
		return nil, errors.New("you can only add materials to your own courses")
	}

	material := &model.CourseMaterial{
		CourseID: courseID,
		Title:    title,
		FileURL:  fileURL,
	}
	if err := s.courseRepo.CreateMaterial(material); err != nil {
		return nil, err
	}
	return material, nil
}

func (s *courseService) ListMaterials(courseID string) ([]model.CourseMaterial, error) {
	return s.courseRepo.FindMaterialsByCourse(courseID)
}

func (s *courseService) DeleteMaterial(materialID, courseID, requesterID string) error {
	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		return errors.New("course not found")
	}
	if course.TeacherID != requesterID {
		return errors.New("you can only delete materials from your own courses")
	}
	return s.courseRepo.DeleteMaterial(materialID)
}
