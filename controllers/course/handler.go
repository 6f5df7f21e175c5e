package controllers

import (
	"lms/middleware"
	"lms/services/certificate"
	"lms/services/progress"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the learner progress and certificate endpoints
type Handler struct {
	progress     *progress.Tracker
	certificates *certificate.Service
	log          *zap.Logger
}

func NewHandler(tracker *progress.Tracker, certificates *certificate.Service, log *zap.Logger) *Handler {
	return &Handler{progress: tracker, certificates: certificates, log: log}
}

// fail logs unexpected errors and writes the error envelope
func (h *Handler) fail(c *fiber.Ctx, err error, fallback string) error {
	if middleware.StatusFor(err) == fiber.StatusInternalServerError {
		h.log.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	}
	return middleware.ErrorResponse(c, err, fallback)
}

func currentUser(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userId").(uint)
	return userID, ok
}
