package certificate

import (
	"context"
	"errors"
	"testing"
	"time"

	"lms/models"
	"lms/repository"
	"lms/services/events"
	"lms/services/progress"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func completedEvent(f *testutil.Fixture) events.CourseCompleted {
	return events.CourseCompleted{
		EnrollmentID: f.Enrollment.ID,
		UserID:       f.User.ID,
		CourseID:     f.Course.ID,
		CompletedAt:  time.Now(),
	}
}

func TestLessonEventsIssueCertificate(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, []testutil.LessonSpec{testutil.Video(300), testutil.Reading()})
	ctx := context.Background()

	renderer := &fakeRenderer{}
	svc := newService(db, renderer, nil, Options{})
	n := &fakeNotifier{}
	bus := events.NewBus(zap.NewNop())
	bus.Subscribe(events.TypeCourseCompleted, "certificate-issuer", svc.HandleCourseCompleted)
	bus.Subscribe(events.TypeCourseCompleted, "completion-notifier", NewCompletionNotifier(
		repository.NewCertificateRepository(db), repository.NewCourseRepository(db), n, "https://lms.example.com",
	).HandleCourseCompleted)

	tracker := progress.NewTracker(
		repository.NewEnrollmentRepository(db),
		repository.NewLessonProgressRepository(db),
		repository.NewCourseRepository(db),
		bus, n, 70, zap.NewNop(),
	)

	watched := 295.0
	lp, err := tracker.RecordLessonEvent(ctx, f.User.ID, f.Enrollment.ID, f.Lessons[0][0].ID, progress.LessonEvent{Position: &watched})
	require.NoError(t, err)
	assert.True(t, lp.Completed)

	_, err = tracker.RecordLessonEvent(ctx, f.User.ID, f.Enrollment.ID, f.Lessons[0][1].ID, progress.LessonEvent{Complete: true})
	require.NoError(t, err)

	cp, err := tracker.GetCourseProgress(ctx, f.User.ID, f.Course.ID)
	require.NoError(t, err)
	assert.True(t, cp.Completed)
	assert.Equal(t, 100, cp.Progress)
	assert.True(t, cp.Modules[0].Completed)

	cert, err := repository.NewCertificateRepository(db).GetByUserAndCourse(ctx, f.User.ID, f.Course.ID)
	require.NoError(t, err)
	require.NotNil(t, cert.DurationMinutes)
	assert.Equal(t, 10, *cert.DurationMinutes)
	assert.Nil(t, cert.Grade)
	assert.True(t, cert.HasAssets())

	require.Len(t, n.sent, 1)
	assert.Equal(t, models.NotificationCompletion, n.sent[0].Type)
	assert.Contains(t, n.sent[0].Link, cert.VerificationCode)

	// replaying the last event neither re-issues nor re-notifies
	_, err = tracker.RecordLessonEvent(ctx, f.User.ID, f.Enrollment.ID, f.Lessons[0][1].ID, progress.LessonEvent{Complete: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, countCertificates(t, db))
	assert.Len(t, n.sent, 1)
	assert.Equal(t, 1, renderer.calls)
}

func TestIssuanceFailureDoesNotFailLessonEvent(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, []testutil.LessonSpec{testutil.Reading()})
	ctx := context.Background()

	bus := events.NewBus(zap.NewNop())
	bus.Subscribe(events.TypeCourseCompleted, "failing", func(ctx context.Context, e events.Event) error {
		return errors.New("issuer unavailable")
	})
	tracker := progress.NewTracker(
		repository.NewEnrollmentRepository(db),
		repository.NewLessonProgressRepository(db),
		repository.NewCourseRepository(db),
		bus, &fakeNotifier{}, 70, zap.NewNop(),
	)

	lp, err := tracker.RecordLessonEvent(ctx, f.User.ID, f.Enrollment.ID, f.Lessons[0][0].ID, progress.LessonEvent{Complete: true})
	require.NoError(t, err)
	assert.True(t, lp.Completed)

	// the batch driver picks the enrollment up later
	report, err := newService(db, &fakeRenderer{}, nil, Options{}).ReissueCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Issued)
}
