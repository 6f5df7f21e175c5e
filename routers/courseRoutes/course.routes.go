package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner facing progress and certificate routes
func SetupCourseRoutes(app *fiber.App, h *controllers.Handler) {
	userGroup := app.Group("/course")

	// Enrollment
	userGroup.Post("/enroll/:course_id", middleware.JWTMiddleware, validators.IDParams("course_id"), h.EnrollInCourse)

	// Lesson progress and assessments
	userGroup.Post("/enrollment/:enrollment_id/lesson/:lesson_id/progress", middleware.JWTMiddleware,
		validators.IDParams("enrollment_id", "lesson_id"), validators.LessonEvent(), h.RecordLessonEvent)
	userGroup.Post("/enrollment/:enrollment_id/lesson/:lesson_id/assessment", middleware.JWTMiddleware,
		validators.IDParams("enrollment_id", "lesson_id"), validators.SubmitAssessment(), h.SubmitAssessment)
	userGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.IDParams("course_id"), h.GetCourseProgress)

	// Certificate issuance
	userGroup.Post("/enrollment/:enrollment_id/certificate", middleware.JWTMiddleware, validators.IDParams("enrollment_id"), h.IssueCertificate)

	// User enrollments and certificates
	userEnrollGroup := app.Group("/user")
	userEnrollGroup.Get("/enrollments", middleware.JWTMiddleware, h.GetEnrollments)
	userEnrollGroup.Get("/certificates", middleware.JWTMiddleware, h.GetUserCertificates)
	userEnrollGroup.Get("/certificates/:id", middleware.JWTMiddleware, validators.IDParams("id"), h.GetCertificate)

	// Public verification, no token
	app.Get("/certificates/verify/:code", validators.VerificationCode(), h.VerifyCertificate)
}
