package repository

import (
	"lms-backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(course *model.Course) error
	FindByID(id string) (*model.Course, error)
	FindAll(limit, offset int) ([]model.Course, error)
	FindByTeacher(teacherID string, limit, offset int) ([]model.Course, error)
	Update(course *model.Course) error
	Delete(id string) error

	CreateEnrollment(enrollment *model.Enrollment) error
	EnrollmentExists(courseID, studentID string) (bool, error)
	FindEnrollmentsByStudent(studentID string) ([]model.Enrollment, error)
	FindEnrollmentsByTeacher(teacherID string) ([]model.Enrollment, error)

	CreateMaterial(material *model.CourseMaterial) error
	FindMaterialsByCourse(courseID string) ([]model.CourseMaterial, error)
	DeleteMaterial(id string) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(course *model.Course) error {
	return r.db.Create(course).Error
}

func (r *courseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.db.
		Preload("Teacher").
		Preload("Materials").
		Preload("Enrollments.Student").
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindAll(limit, offset int) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.
		Preload("Teacher").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) FindByTeacher(teacherID string, limit, offset int) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.
		Preload("Teacher").
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) Update(course *model.Course) error {
	return r.db.Save(course).Error
}

func (r *courseRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Course{}).Error
}

func (r *courseRepository) CreateEnrollment(enrollment *model.Enrollment) error {
	return r.db.Create(enrollment).Error
}

func (r *courseRepository) EnrollmentExists(courseID, studentID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *courseRepository) FindEnrollmentsByStudent(studentID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.
		Preload("Course.Teacher").
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// FindEnrollmentsByTeacher returns enrollments in any of the teacher's courses
func (r *courseRepository) FindEnrollmentsByTeacher(teacherID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.
		Preload("Course").
		Preload("Student").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.teacher_id = ?", teacherID).
		Order("enrollments.enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *courseRepository) CreateMaterial(material *model.CourseMaterial) error {
	return r.db.Create(material).Error
}

func (r *courseRepository) FindMaterialsByCourse(courseID string) ([]model.CourseMaterial, error) {
	var materials []model.CourseMaterial
	err := r.db.
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&materials).Error
	return materials, err
}

func (r *courseRepository) DeleteMaterial(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.CourseMaterial{}).Error
}
