package repository

import (
	"context"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *courseModels.Enrollment) error {
	return translate(r.db.WithContext(ctx).Create(e).Error, "enrollment")
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id uint) (*courseModels.Enrollment, error) {
	var e courseModels.Enrollment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, translate(err, "enrollment")
	}
	return &e, nil
}

func (r *EnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*courseModels.Enrollment, error) {
	var e courseModels.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&e).Error
	if err != nil {
		return nil, translate(err, "enrollment")
	}
	return &e, nil
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]courseModels.Enrollment, error) {
	var enrollments []courseModels.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) ListCompleted(ctx context.Context) ([]courseModels.Enrollment, error) {
	var enrollments []courseModels.Enrollment
	err := r.db.WithContext(ctx).
		Where("completed = ?", true).
		Order("id asc").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id uint, progress int) error {
	return r.db.WithContext(ctx).Model(&courseModels.Enrollment{}).
		Where("id = ?", id).
		Update("progress", progress).Error
}

// MarkCompleted flips completed to true only if it is still false and reports
// whether this call performed the transition.
func (r *EnrollmentRepository) MarkCompleted(ctx context.Context, id uint, progress int, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&courseModels.Enrollment{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"progress":     progress,
			"completed":    true,
			"completed_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
