package repository

import (
	"context"

	courseModels "lms/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LessonProgressRepository struct {
	db *gorm.DB
}

func NewLessonProgressRepository(db *gorm.DB) *LessonProgressRepository {
	return &LessonProgressRepository{db: db}
}

func (r *LessonProgressRepository) Get(ctx context.Context, enrollmentID, lessonID uint) (*courseModels.LessonProgress, error) {
	var lp courseModels.LessonProgress
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&lp).Error
	if err != nil {
		return nil, translate(err, "lesson progress")
	}
	return &lp, nil
}

// Upsert inserts lp or, when a row for (enrollment, lesson) exists, overwrites
// only the named columns. Callers leave "completed" out of columns unless it is
// being set to true, which keeps completion forward-only under concurrent writes.
func (r *LessonProgressRepository) Upsert(ctx context.Context, lp *courseModels.LessonProgress, columns []string) (*courseModels.LessonProgress, error) {
	columns = append(columns, "updated_at")
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(lp).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, lp.EnrollmentID, lp.LessonID)
}

func (r *LessonProgressRepository) ListByEnrollment(ctx context.Context, enrollmentID uint) ([]courseModels.LessonProgress, error) {
	var records []courseModels.LessonProgress
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("lesson_id asc").
		Find(&records).Error
	return records, err
}

// ListScoredAssessments returns the ASSESSMENT progress rows of an enrollment that carry a score
func (r *LessonProgressRepository) ListScoredAssessments(ctx context.Context, enrollmentID uint) ([]courseModels.LessonProgress, error) {
	var records []courseModels.LessonProgress
	err := r.db.WithContext(ctx).
		Select("lesson_progress.*").
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id AND lessons.deleted_at IS NULL").
		Where("lesson_progress.enrollment_id = ? AND lessons.type = ? AND lesson_progress.score IS NOT NULL",
			enrollmentID, courseModels.LessonAssessment).
		Find(&records).Error
	return records, err
}

// CompletedLessonIDs returns the ids of every completed lesson of the enrollment
func (r *LessonProgressRepository) CompletedLessonIDs(ctx context.Context, enrollmentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&courseModels.LessonProgress{}).
		Where("enrollment_id = ? AND completed = ?", enrollmentID, true).
		Pluck("lesson_id", &ids).Error
	return ids, err
}
