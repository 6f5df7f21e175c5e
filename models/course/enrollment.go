package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID    uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	Progress    int        `json:"progress" gorm:"default:0"` // Completion percentage (0-100)
	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
}

// LessonProgress is the per-lesson interaction state of an enrollment.
// Completed only ever moves from false to true.
type LessonProgress struct {
	gorm.Model
	EnrollmentID uint       `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_progress_enrollment_lesson"`
	LessonID     uint       `json:"lesson_id" gorm:"not null;uniqueIndex:idx_progress_enrollment_lesson"`
	Completed    bool       `json:"completed" gorm:"default:false"`
	LastPlayed   float64    `json:"last_played" gorm:"default:0"` // seconds watched
	Passed       bool       `json:"passed" gorm:"default:false"`
	Score        *float64   `json:"score"`
	CompletedAt  *time.Time `json:"completed_at"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
