// Package testutil holds fixtures shared by the service and controller tests.
package testutil

import (
	"testing"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated, isolated in-memory SQLite database
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// LessonSpec describes a lesson to seed
type LessonSpec struct {
	Type     string
	Duration *int
}

// Video, Reading and Assessment are shorthands for LessonSpec
func Video(seconds int) LessonSpec { return LessonSpec{Type: courseModels.LessonVideo, Duration: &seconds} }
func Reading() LessonSpec          { return LessonSpec{Type: courseModels.LessonReading} }
func Assessment() LessonSpec       { return LessonSpec{Type: courseModels.LessonAssessment} }

// Fixture is a seeded learner enrolled in a course
type Fixture struct {
	User       models.User
	Course     courseModels.Course
	Modules    []courseModels.Module
	Lessons    [][]courseModels.Lesson // indexed by module, then lesson
	Enrollment courseModels.Enrollment
}

// Seed creates a learner, a published course whose modules contain the given
// lessons, and an enrollment of the learner in that course.
func Seed(t *testing.T, db *gorm.DB, modules ...[]LessonSpec) *Fixture {
	t.Helper()
	f := &Fixture{
		User: models.User{Name: "Ada Lovelace", Email: uuid.NewString() + "@example.com"},
		Course: courseModels.Course{
			Title:       "Analytical Engines",
			Author:      "Babbage Institute",
			Status:      "ACTIVE",
			IsPublished: true,
		},
	}
	require.NoError(t, db.Create(&f.User).Error)
	require.NoError(t, db.Create(&f.Course).Error)

	for i, specs := range modules {
		module := courseModels.Module{CourseID: f.Course.ID, Title: "Module", OrderIndex: i}
		require.NoError(t, db.Create(&module).Error)
		f.Modules = append(f.Modules, module)

		var lessons []courseModels.Lesson
		for j, spec := range specs {
			lesson := courseModels.Lesson{
				CourseID:   f.Course.ID,
				ModuleID:   module.ID,
				Title:      "Lesson",
				Type:       spec.Type,
				Duration:   spec.Duration,
				OrderIndex: j,
			}
			require.NoError(t, db.Create(&lesson).Error)
			lessons = append(lessons, lesson)
		}
		f.Lessons = append(f.Lessons, lessons)
	}

	f.Enrollment = courseModels.Enrollment{UserID: f.User.ID, CourseID: f.Course.ID}
	require.NoError(t, db.Create(&f.Enrollment).Error)
	return f
}

// CompleteEnrollment marks the fixture's enrollment as completed directly in the store
func (f *Fixture) CompleteEnrollment(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Model(&f.Enrollment).Updates(map[string]interface{}{
		"completed": true,
		"progress":  100,
	}).Error)
	f.Enrollment.Completed = true
	f.Enrollment.Progress = 100
}
