package progress

import (
	"context"
	"encoding/json"

	"lms/apperrors"
	courseModels "lms/models/course"
	"lms/services/grading"

	"gorm.io/datatypes"
)

// AssessmentResult is the outcome of one graded submission
type AssessmentResult struct {
	Attempt  *courseModels.AssessmentAttempt `json:"attempt"`
	Progress *courseModels.LessonProgress    `json:"progress"`
}

// SubmitAssessment grades the selected options of an ASSESSMENT lesson, stores
// the attempt and feeds the outcome to RecordLessonEvent. The score is the
// share of correct options selected; passing also requires that no incorrect
// option was selected.
func (t *Tracker) SubmitAssessment(ctx context.Context, learnerID, enrollmentID, lessonID uint, selected []uint) (*AssessmentResult, error) {
	if len(selected) == 0 {
		return nil, apperrors.Validation("select at least one option")
	}
	e, err := t.ownedEnrollment(ctx, learnerID, enrollmentID)
	if err != nil {
		return nil, err
	}
	lesson, err := t.courseLesson(ctx, e, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Type != courseModels.LessonAssessment {
		return nil, apperrors.Validation("lesson is not an assessment")
	}

	options, err := t.courses.ListOptions(ctx, lesson.ID)
	if err != nil {
		return nil, err
	}
	correct := make(map[uint]bool, len(options))
	totalCorrect := 0
	for _, o := range options {
		correct[o.ID] = o.IsCorrect
		if o.IsCorrect {
			totalCorrect++
		}
	}
	if totalCorrect == 0 {
		return nil, apperrors.PreconditionFailed("assessment has no correct option configured")
	}

	seen := make(map[uint]bool, len(selected))
	picked := make([]uint, 0, len(selected))
	correctSelected, wrongSelected := 0, 0
	for _, id := range selected {
		isCorrect, ok := correct[id]
		if !ok {
			return nil, apperrors.Validation("option %d does not belong to this assessment", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		picked = append(picked, id)
		if isCorrect {
			correctSelected++
		} else {
			wrongSelected++
		}
	}

	score := grading.Round2(100 * float64(correctSelected) / float64(totalCorrect))
	passScore := t.passScore
	if lesson.PassingScore != nil {
		passScore = *lesson.PassingScore
	}
	passed := score >= passScore && wrongSelected == 0

	previous, err := t.courses.CountAttempts(ctx, e.ID, lesson.ID)
	if err != nil {
		return nil, err
	}
	selection, _ := json.Marshal(picked)
	attempt := &courseModels.AssessmentAttempt{
		UserID:          learnerID,
		EnrollmentID:    e.ID,
		LessonID:        lesson.ID,
		SelectedOptions: datatypes.JSON(selection),
		Score:           score,
		Passed:          passed,
		AttemptNumber:   int(previous) + 1,
	}
	if err := t.courses.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	lp, err := t.RecordLessonEvent(ctx, learnerID, e.ID, lesson.ID, LessonEvent{
		Passed:   &passed,
		Score:    &score,
		Complete: passed,
	})
	if err != nil {
		return nil, err
	}
	return &AssessmentResult{Attempt: attempt, Progress: lp}, nil
}
