package controllers

import (
	"bytes"
	"fmt"
	"time"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certificates, err := h.certificates.ListCertificates(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, "Failed to fetch certificates!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"total":        len(certificates),
	})
}

func (h *Handler) GetCertificate(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	cert, err := h.certificates.GetCertificate(c.UserContext(), userID, c.Locals("id").(uint))
	if err != nil {
		return h.fail(c, err, "Failed to fetch certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", cert)
}

// IssueCertificate is idempotent: a learner asking again gets the same certificate
func (h *Handler) IssueCertificate(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	cert, err := h.certificates.IssueForLearner(c.UserContext(), userID, c.Locals("enrollment_id").(uint))
	if err != nil {
		return h.fail(c, err, "Failed to issue certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate issued successfully!", cert)
}

// VerifyCertificate is the public lookup; it never exposes internal ids
func (h *Handler) VerifyCertificate(c *fiber.Ctx) error {
	view, err := h.certificates.LookupByVerificationCode(c.UserContext(), c.Locals("verificationCode").(string))
	if err != nil {
		return h.fail(c, err, "Failed to verify certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate verified!", view)
}

func (h *Handler) AdminRegenerateCertificate(c *fiber.Ctx) error {
	cert, err := h.certificates.RegenerateAssets(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return h.fail(c, err, "Failed to regenerate certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate regenerated successfully!", cert)
}

func (h *Handler) AdminRevokeCertificate(c *fiber.Ctx) error {
	cert, err := h.certificates.Revoke(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return h.fail(c, err, "Failed to revoke certificate!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate revoked successfully!", cert)
}

func (h *Handler) AdminReissueCertificates(c *fiber.Ctx) error {
	report, err := h.certificates.ReissueCompleted(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to reissue certificates!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate reissue completed!", report)
}

func (h *Handler) AdminExportCertificates(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.certificates.ExportIssued(c.UserContext(), &buf); err != nil {
		return h.fail(c, err, "Failed to export certificates!")
	}

	filename := fmt.Sprintf("certificates-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}
