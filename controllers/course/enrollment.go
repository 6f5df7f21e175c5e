package controllers

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("course_id").(uint)

	enrollment, err := h.progress.EnrollInCourse(c.UserContext(), userID, courseID)
	if err != nil {
		return h.fail(c, err, "Failed to enroll in course!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

func (h *Handler) GetEnrollments(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollments, err := h.progress.ListEnrollments(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, "Failed to fetch enrollments!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}
