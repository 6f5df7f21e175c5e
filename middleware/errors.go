package middleware

import (
	"errors"

	"lms/apperrors"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error kind to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrPreconditionFailed):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorResponse writes err in the standard envelope. Internal errors get a
// generic message; the detail belongs in the log, not the response.
func ErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		return JsonResponse(c, status, false, fallback, nil)
	}
	return JsonResponse(c, status, false, apperrors.Message(err), nil)
}
