package courseValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// VerificationCode checks the shape of a public verification code
func VerificationCode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := strings.TrimSpace(c.Params("code"))
		if err := validate.Var(code, "required,alphanum,max=32"); err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
		}
		c.Locals("verificationCode", code)
		return c.Next()
	}
}
