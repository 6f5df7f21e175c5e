package repository

import (
	"context"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// CourseRepository gives read access to the course structure
type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) GetCourse(ctx context.Context, id uint) (*courseModels.Course, error) {
	var c courseModels.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err, "course")
	}
	return &c, nil
}

func (r *CourseRepository) ListModules(ctx context.Context, courseID uint) ([]courseModels.Module, error) {
	var modules []courseModels.Module
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("order_index asc, id asc").
		Find(&modules).Error
	return modules, err
}

func (r *CourseRepository) ListLessons(ctx context.Context, courseID uint) ([]courseModels.Lesson, error) {
	var lessons []courseModels.Lesson
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("module_id asc, order_index asc, id asc").
		Find(&lessons).Error
	return lessons, err
}

func (r *CourseRepository) GetLesson(ctx context.Context, id uint) (*courseModels.Lesson, error) {
	var l courseModels.Lesson
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, translate(err, "lesson")
	}
	return &l, nil
}

func (r *CourseRepository) ListOptions(ctx context.Context, lessonID uint) ([]courseModels.AssessmentOption, error) {
	var options []courseModels.AssessmentOption
	err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("order_index asc, id asc").
		Find(&options).Error
	return options, err
}

func (r *CourseRepository) CountAttempts(ctx context.Context, enrollmentID, lessonID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&courseModels.AssessmentAttempt{}).
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		Count(&count).Error
	return count, err
}

func (r *CourseRepository) CreateAttempt(ctx context.Context, a *courseModels.AssessmentAttempt) error {
	return r.db.WithContext(ctx).Create(a).Error
}
