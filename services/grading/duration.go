package grading

import (
	"context"
	"math"

	courseModels "lms/models/course"
)

// NonVideoLessonMinutes is the flat estimate for every lesson that is not a video
const NonVideoLessonMinutes = 5

type lessonSource interface {
	ListLessons(ctx context.Context, courseID uint) ([]courseModels.Lesson, error)
}

// Duration is an estimated course length
type Duration struct {
	Minutes int
	Hours   float64
}

// DurationEstimator sums lesson metadata into a course duration
type DurationEstimator struct {
	courses lessonSource
}

func NewDurationEstimator(courses lessonSource) *DurationEstimator {
	return &DurationEstimator{courses: courses}
}

// ComputeDuration returns nil when the course has no lessons
func (d *DurationEstimator) ComputeDuration(ctx context.Context, courseID uint) (*Duration, error) {
	lessons, err := d.courses.ListLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return EstimateDuration(lessons), nil
}

// EstimateDuration counts round(seconds/60) minutes per video lesson and a flat
// five minutes for every other lesson.
func EstimateDuration(lessons []courseModels.Lesson) *Duration {
	if len(lessons) == 0 {
		return nil
	}
	total := 0
	for _, l := range lessons {
		if l.Type == courseModels.LessonVideo {
			if l.Duration != nil {
				total += int(math.Round(float64(*l.Duration) / 60))
			}
			continue
		}
		total += NonVideoLessonMinutes
	}
	return &Duration{Minutes: total, Hours: Round2(float64(total) / 60)}
}
