package courseValidator

import (
	"lms/middleware"
	"lms/services/progress"

	"github.com/gofiber/fiber/v2"
)

type lessonEventRequest struct {
	Position  *float64 `json:"position" validate:"omitempty,gte=0"`
	Duration  *int     `json:"duration" validate:"omitempty,gt=0"`
	Completed bool     `json:"completed"`
	Passed    *bool    `json:"passed"`
	Score     *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
	Override  bool     `json:"override"`
}

// LessonEvent validates a lesson interaction and stores it as "lessonEvent"
func LessonEvent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(lessonEventRequest)
		if err := c.BodyParser(reqData); err != nil {
			// a non-numeric score or position fails here
			return middleware.ValidationErrorResponse(c, map[string]string{"body": "Invalid request body!"})
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("lessonEvent", progress.LessonEvent{
			Position: reqData.Position,
			Duration: reqData.Duration,
			Complete: reqData.Completed,
			Passed:   reqData.Passed,
			Score:    reqData.Score,
			Override: reqData.Override,
		})
		return c.Next()
	}
}

type assessmentRequest struct {
	OptionIDs []uint `json:"option_ids" validate:"required,min=1,dive,gt=0"`
}

// SubmitAssessment validates the selected option ids and stores them as "optionIDs"
func SubmitAssessment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(assessmentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"body": "Invalid request body!"})
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("optionIDs", reqData.OptionIDs)
		return c.Next()
	}
}
