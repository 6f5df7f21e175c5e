package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up certificate administration routes
func SetupAdminCourseRoutes(app *fiber.App, h *controllers.Handler) {
	certGroup := app.Group("/admin/certificates", middleware.JWTMiddleware, middleware.CheckRoleMiddleware(models.RoleAdmin))

	certGroup.Post("/reissue", h.AdminReissueCertificates)
	certGroup.Get("/export", h.AdminExportCertificates)
	certGroup.Post("/:id/regenerate", validators.IDParams("id"), h.AdminRegenerateCertificate)
	certGroup.Post("/:id/revoke", validators.IDParams("id"), h.AdminRevokeCertificate)
}
