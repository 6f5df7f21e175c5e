package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson types
const (
	LessonVideo      = "VIDEO"
	LessonReading    = "READING"
	LessonAssessment = "ASSESSMENT"
)

// Lesson is a single unit of content within a module
type Lesson struct {
	gorm.Model
	CourseID     uint     `json:"course_id" gorm:"index;not null"`
	ModuleID     uint     `json:"module_id" gorm:"index;not null"`
	Title        string   `json:"title"`
	Type         string   `json:"type" gorm:"type:varchar(20);default:'READING'"`
	Duration     *int     `json:"duration"`      // seconds, VIDEO only
	PassingScore *float64 `json:"passing_score"` // ASSESSMENT only, falls back to the configured pass score
	VideoURL     string   `json:"video_url"`
	TextContent  string   `json:"text_content" gorm:"type:text"`
	OrderIndex   int      `json:"order_index" gorm:"default:0"`
}

// AssessmentOption is one selectable answer of an ASSESSMENT lesson
type AssessmentOption struct {
	gorm.Model
	LessonID   uint   `json:"lesson_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"-" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
}

// AssessmentAttempt records one graded submission of an ASSESSMENT lesson
type AssessmentAttempt struct {
	gorm.Model
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	EnrollmentID    uint           `json:"enrollment_id" gorm:"index;not null"`
	LessonID        uint           `json:"lesson_id" gorm:"index;not null"`
	SelectedOptions datatypes.JSON `json:"selected_options"`
	Score           float64        `json:"score"`
	Passed          bool           `json:"passed" gorm:"default:false"`
	AttemptNumber   int            `json:"attempt_number" gorm:"default:1"`
}
