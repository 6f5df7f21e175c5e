// Package grading derives the numeric values printed on a certificate: the
// learner's grade and the estimated course duration.
package grading

import (
	"context"
	"math"

	courseModels "lms/models/course"
)

type scoreSource interface {
	ListScoredAssessments(ctx context.Context, enrollmentID uint) ([]courseModels.LessonProgress, error)
}

// GradeCalculator averages recorded assessment scores
type GradeCalculator struct {
	progress scoreSource
}

func NewGradeCalculator(progress scoreSource) *GradeCalculator {
	return &GradeCalculator{progress: progress}
}

// ComputeGrade returns the mean assessment score of the enrollment rounded to
// two decimals, or nil when no assessment has been scored.
func (g *GradeCalculator) ComputeGrade(ctx context.Context, enrollmentID uint) (*float64, error) {
	records, err := g.progress.ListScoredAssessments(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Score != nil {
			scores = append(scores, *r.Score)
		}
	}
	return MeanScore(scores), nil
}

// MeanScore is the arithmetic mean rounded to two decimals, nil for no scores
func MeanScore(scores []float64) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := Round2(sum / float64(len(scores)))
	return &mean
}

// Round2 rounds half away from zero to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
