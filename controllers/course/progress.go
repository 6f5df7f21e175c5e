package controllers

import (
	"lms/middleware"
	"lms/services/progress"

	"github.com/gofiber/fiber/v2"
)

// RecordLessonEvent handles watch position updates and completion requests
func (h *Handler) RecordLessonEvent(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollment_id").(uint)
	lessonID := c.Locals("lesson_id").(uint)
	event := c.Locals("lessonEvent").(progress.LessonEvent)

	record, err := h.progress.RecordLessonEvent(c.UserContext(), userID, enrollmentID, lessonID, event)
	if err != nil {
		return h.fail(c, err, "Failed to record lesson progress!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson progress recorded!", record)
}

func (h *Handler) SubmitAssessment(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollment_id").(uint)
	lessonID := c.Locals("lesson_id").(uint)
	optionIDs := c.Locals("optionIDs").([]uint)

	result, err := h.progress.SubmitAssessment(c.UserContext(), userID, enrollmentID, lessonID, optionIDs)
	if err != nil {
		return h.fail(c, err, "Failed to submit assessment!")
	}

	message := "Assessment not passed, please try again!"
	if result.Attempt.Passed {
		message = "Assessment passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

func (h *Handler) GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("course_id").(uint)

	result, err := h.progress.GetCourseProgress(c.UserContext(), userID, courseID)
	if err != nil {
		return h.fail(c, err, "Failed to fetch course progress!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course progress fetched successfully!", result)
}
