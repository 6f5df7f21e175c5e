// Package progress is the completion state machine: it records lesson
// interactions, derives module and course completion, and announces the first
// completion of a course on the event bus.
package progress

import (
	"context"
	"errors"
	"time"

	"lms/apperrors"
	courseModels "lms/models/course"
	"lms/services/events"
	"lms/services/notification"

	"go.uber.org/zap"
)

// videoCompletionPercent of a video's duration must be watched before it counts as complete
const videoCompletionPercent = 98

type enrollmentStore interface {
	Create(ctx context.Context, e *courseModels.Enrollment) error
	GetByID(ctx context.Context, id uint) (*courseModels.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*courseModels.Enrollment, error)
	ListByUser(ctx context.Context, userID uint) ([]courseModels.Enrollment, error)
	UpdateProgress(ctx context.Context, id uint, progress int) error
	MarkCompleted(ctx context.Context, id uint, progress int, at time.Time) (bool, error)
}

type lessonProgressStore interface {
	Get(ctx context.Context, enrollmentID, lessonID uint) (*courseModels.LessonProgress, error)
	Upsert(ctx context.Context, lp *courseModels.LessonProgress, columns []string) (*courseModels.LessonProgress, error)
	ListByEnrollment(ctx context.Context, enrollmentID uint) ([]courseModels.LessonProgress, error)
	CompletedLessonIDs(ctx context.Context, enrollmentID uint) ([]uint, error)
}

type courseStore interface {
	GetCourse(ctx context.Context, id uint) (*courseModels.Course, error)
	ListModules(ctx context.Context, courseID uint) ([]courseModels.Module, error)
	ListLessons(ctx context.Context, courseID uint) ([]courseModels.Lesson, error)
	GetLesson(ctx context.Context, id uint) (*courseModels.Lesson, error)
	ListOptions(ctx context.Context, lessonID uint) ([]courseModels.AssessmentOption, error)
	CountAttempts(ctx context.Context, enrollmentID, lessonID uint) (int64, error)
	CreateAttempt(ctx context.Context, a *courseModels.AssessmentAttempt) error
}

type publisher interface {
	Publish(ctx context.Context, e events.Event)
}

type notifier interface {
	Notify(ctx context.Context, userID uint, msg notification.Message) error
}

// LessonEvent is one learner interaction with a lesson. Nil fields were not reported.
type LessonEvent struct {
	Position *float64 // seconds watched
	Duration *int     // used when the lesson has no stored duration
	Complete bool     // explicit completion request
	Passed   *bool
	Score    *float64
	Override bool // skip the watch threshold of a video
}

type Tracker struct {
	enrollments enrollmentStore
	progress    lessonProgressStore
	courses     courseStore
	bus         publisher
	notifier    notifier
	passScore   float64
	log         *zap.Logger
	now         func() time.Time
}

func NewTracker(
	enrollments enrollmentStore,
	progress lessonProgressStore,
	courses courseStore,
	bus publisher,
	notifier notifier,
	passScore float64,
	log *zap.Logger,
) *Tracker {
	return &Tracker{
		enrollments: enrollments,
		progress:    progress,
		courses:     courses,
		bus:         bus,
		notifier:    notifier,
		passScore:   passScore,
		log:         log,
		now:         time.Now,
	}
}

// ownedEnrollment loads an enrollment and checks that it belongs to learnerID
func (t *Tracker) ownedEnrollment(ctx context.Context, learnerID, enrollmentID uint) (*courseModels.Enrollment, error) {
	e, err := t.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.UserID != learnerID {
		return nil, apperrors.Forbidden("enrollment does not belong to this learner")
	}
	return e, nil
}

func (t *Tracker) courseLesson(ctx context.Context, e *courseModels.Enrollment, lessonID uint) (*courseModels.Lesson, error) {
	lesson, err := t.courses.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != e.CourseID {
		return nil, apperrors.NotFound("lesson not found in this course")
	}
	return lesson, nil
}

func validateEvent(ev LessonEvent) error {
	if ev.Position != nil && *ev.Position < 0 {
		return apperrors.Validation("position must not be negative")
	}
	if ev.Duration != nil && *ev.Duration <= 0 {
		return apperrors.Validation("duration must be positive")
	}
	if ev.Score != nil && (*ev.Score < 0 || *ev.Score > 100) {
		return apperrors.Validation("score must be between 0 and 100")
	}
	return nil
}

// VideoThreshold is floor(98% of duration) in whole seconds
func VideoThreshold(duration int) int {
	return duration * videoCompletionPercent / 100
}

// eligible decides whether ev completes lesson given the stored record (nil if none)
func eligible(lesson *courseModels.Lesson, existing *courseModels.LessonProgress, ev LessonEvent) bool {
	switch lesson.Type {
	case courseModels.LessonVideo:
		if ev.Override {
			return true
		}
		duration := lesson.Duration
		if duration == nil {
			duration = ev.Duration
		}
		if duration == nil || *duration <= 0 {
			return false
		}
		var position float64
		switch {
		case ev.Position != nil:
			position = *ev.Position
		case existing != nil:
			position = existing.LastPlayed
		}
		return position >= float64(VideoThreshold(*duration))
	case courseModels.LessonAssessment:
		if ev.Passed != nil && *ev.Passed {
			return true
		}
		return ev.Complete && ev.Passed == nil && existing != nil && existing.Passed
	default:
		return ev.Complete
	}
}

// RecordLessonEvent applies ev to the learner's progress on lessonID and
// re-derives course completion. Completion of a lesson is never undone.
func (t *Tracker) RecordLessonEvent(ctx context.Context, learnerID, enrollmentID, lessonID uint, ev LessonEvent) (*courseModels.LessonProgress, error) {
	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	e, err := t.ownedEnrollment(ctx, learnerID, enrollmentID)
	if err != nil {
		return nil, err
	}
	lesson, err := t.courseLesson(ctx, e, lessonID)
	if err != nil {
		return nil, err
	}

	existing, err := t.progress.Get(ctx, e.ID, lesson.ID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		existing = nil
	}

	now := t.now()
	record := &courseModels.LessonProgress{EnrollmentID: e.ID, LessonID: lesson.ID}
	var columns []string
	if ev.Position != nil {
		record.LastPlayed = *ev.Position
		columns = append(columns, "last_played")
	}
	if ev.Passed != nil {
		record.Passed = *ev.Passed
		columns = append(columns, "passed")
	}
	if ev.Score != nil {
		record.Score = ev.Score
		columns = append(columns, "score")
	}
	// "completed" is only ever written as true so a concurrent writer cannot reset it
	if eligible(lesson, existing, ev) && (existing == nil || !existing.Completed) {
		record.Completed = true
		record.CompletedAt = &now
		columns = append(columns, "completed", "completed_at")
	}

	saved, err := t.progress.Upsert(ctx, record, columns)
	if err != nil {
		return nil, err
	}

	if err := t.refreshEnrollment(ctx, e, now); err != nil {
		return nil, err
	}
	return saved, nil
}

// refreshEnrollment recomputes the aggregate progress of e and, on its first
// transition into completed, publishes CourseCompleted.
func (t *Tracker) refreshEnrollment(ctx context.Context, e *courseModels.Enrollment, now time.Time) error {
	summary, err := t.summarize(ctx, e)
	if err != nil {
		return err
	}

	if summary.Completed && !e.Completed {
		transitioned, err := t.enrollments.MarkCompleted(ctx, e.ID, summary.Progress, now)
		if err != nil {
			return err
		}
		if transitioned {
			t.log.Info("course completed",
				zap.Uint("enrollmentId", e.ID),
				zap.Uint("userId", e.UserID),
				zap.Uint("courseId", e.CourseID))
			t.bus.Publish(ctx, events.CourseCompleted{
				EnrollmentID: e.ID,
				UserID:       e.UserID,
				CourseID:     e.CourseID,
				CompletedAt:  now,
			})
		}
		return nil
	}

	if summary.Progress != e.Progress {
		return t.enrollments.UpdateProgress(ctx, e.ID, summary.Progress)
	}
	return nil
}

func (t *Tracker) summarize(ctx context.Context, e *courseModels.Enrollment) (*Summary, error) {
	modules, err := t.courses.ListModules(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}
	lessons, err := t.courses.ListLessons(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}
	completedIDs, err := t.progress.CompletedLessonIDs(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return Summarize(modules, lessons, completedIDs), nil
}
