package progress

import (
	"context"
	"errors"
	"fmt"

	"lms/apperrors"
	"lms/models"
	courseModels "lms/models/course"
	"lms/repository"
	"lms/services/notification"

	"go.uber.org/zap"
)

// EnrollInCourse enrolls the learner in a published course
func (t *Tracker) EnrollInCourse(ctx context.Context, userID, courseID uint) (*courseModels.Enrollment, error) {
	course, err := t.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, apperrors.NotFound("course not found or not published")
	}

	e := &courseModels.Enrollment{UserID: userID, CourseID: course.ID}
	if err := t.enrollments.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.PreconditionFailed("already enrolled in this course")
		}
		return nil, err
	}

	err = t.notifier.Notify(ctx, userID, notification.Message{
		Type:       models.NotificationEnrollment,
		Title:      "Enrollment confirmed",
		Message:    fmt.Sprintf("You are now enrolled in %s. Happy learning!", course.Title),
		ActionText: "Start learning",
		ImageURL:   course.ThumbnailURL,
		Data:       map[string]interface{}{"courseId": course.ID, "enrollmentId": e.ID},
	})
	if err != nil {
		t.log.Warn("enrollment notification failed", zap.Uint("enrollmentId", e.ID), zap.Error(err))
	}
	return e, nil
}

func (t *Tracker) ListEnrollments(ctx context.Context, userID uint) ([]courseModels.Enrollment, error) {
	return t.enrollments.ListByUser(ctx, userID)
}

// CourseProgress is the read model behind a learner's course page
type CourseProgress struct {
	Enrolled     bool                          `json:"enrolled"`
	EnrollmentID uint                          `json:"enrollment_id,omitempty"`
	Progress     int                           `json:"progress"`
	Completed    bool                          `json:"completed"`
	Lessons      []courseModels.LessonProgress `json:"lessons"`
	Modules      []ModuleSummary               `json:"modules"`
}

// GetCourseProgress projects the learner's state in a course without mutating
// it. A learner who is not enrolled gets Enrolled=false rather than an error.
func (t *Tracker) GetCourseProgress(ctx context.Context, learnerID, courseID uint) (*CourseProgress, error) {
	if _, err := t.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	e, err := t.enrollments.GetByUserAndCourse(ctx, learnerID, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &CourseProgress{Enrolled: false, Lessons: []courseModels.LessonProgress{}, Modules: []ModuleSummary{}}, nil
		}
		return nil, err
	}

	records, err := t.progress.ListByEnrollment(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	summary, err := t.summarize(ctx, e)
	if err != nil {
		return nil, err
	}

	return &CourseProgress{
		Enrolled:     true,
		EnrollmentID: e.ID,
		Progress:     e.Progress,
		Completed:    e.Completed,
		Lessons:      records,
		Modules:      summary.Modules,
	}, nil
}
