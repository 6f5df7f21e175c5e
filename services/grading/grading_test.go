package grading

import (
	"context"
	"testing"

	courseModels "lms/models/course"
	"lms/repository"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanScore(t *testing.T) {
	grade := MeanScore([]float64{80, 90, 100})
	require.NotNil(t, grade)
	assert.Equal(t, 90.00, *grade)

	grade = MeanScore([]float64{70, 75, 71})
	require.NotNil(t, grade)
	assert.Equal(t, 72.0, *grade)

	assert.Nil(t, MeanScore(nil))
}

func TestEstimateDuration(t *testing.T) {
	six := 600
	d := EstimateDuration([]courseModels.Lesson{
		{Type: courseModels.LessonVideo, Duration: &six},
		{Type: courseModels.LessonReading},
	})
	require.NotNil(t, d)
	assert.Equal(t, 15, d.Minutes)
	assert.Equal(t, 0.25, d.Hours)

	assert.Nil(t, EstimateDuration(nil))
}

func TestEstimateDurationRoundsVideoMinutes(t *testing.T) {
	ninety := 90   // 1.5 min rounds to 2
	eightyNine := 89 // 1.48 min rounds to 1
	d := EstimateDuration([]courseModels.Lesson{
		{Type: courseModels.LessonVideo, Duration: &ninety},
		{Type: courseModels.LessonVideo, Duration: &eightyNine},
		{Type: courseModels.LessonVideo},
		{Type: courseModels.LessonAssessment},
	})
	require.NotNil(t, d)
	assert.Equal(t, 8, d.Minutes)
	assert.Equal(t, 0.13, d.Hours)
}

func TestComputeGradeFromStore(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, []testutil.LessonSpec{testutil.Assessment(), testutil.Assessment(), testutil.Assessment()})
	progress := repository.NewLessonProgressRepository(db)
	ctx := context.Background()

	calc := NewGradeCalculator(progress)
	grade, err := calc.ComputeGrade(ctx, f.Enrollment.ID)
	require.NoError(t, err)
	assert.Nil(t, grade)

	for i, s := range []float64{80, 90, 100} {
		score := s
		_, err := progress.Upsert(ctx, &courseModels.LessonProgress{
			EnrollmentID: f.Enrollment.ID, LessonID: f.Lessons[0][i].ID, Score: &score,
		}, []string{"score"})
		require.NoError(t, err)
	}

	grade, err = calc.ComputeGrade(ctx, f.Enrollment.ID)
	require.NoError(t, err)
	require.NotNil(t, grade)
	assert.Equal(t, 90.0, *grade)
}

func TestComputeDurationFromStore(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, []testutil.LessonSpec{testutil.Video(300), testutil.Reading()})
	est := NewDurationEstimator(repository.NewCourseRepository(db))

	d, err := est.ComputeDuration(context.Background(), f.Course.ID)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 10, d.Minutes)
	assert.Equal(t, 0.17, d.Hours)

	d, err = est.ComputeDuration(context.Background(), f.Course.ID+1)
	require.NoError(t, err)
	assert.Nil(t, d)
}
