// Package render turns an issued certificate into a printable document and a
// preview image.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	courseModels "lms/models/course"
)

//go:embed templates/certificate.html
var templateFS embed.FS

var certificateTemplate = template.Must(template.ParseFS(templateFS, "templates/certificate.html"))

// Snapshot is the immutable view of a certificate that gets rendered
type Snapshot struct {
	CertificateNumber string
	VerificationCode  string
	LearnerName       string
	CourseTitle       string
	PartnerName       string
	IssuedAt          time.Time
	Grade             *float64
	DurationHours     *float64
}

// SnapshotOf copies the renderable fields of c
func SnapshotOf(c *courseModels.Certificate) Snapshot {
	return Snapshot{
		CertificateNumber: c.CertificateNumber,
		VerificationCode:  c.VerificationCode,
		LearnerName:       c.LearnerName,
		CourseTitle:       c.CourseTitle,
		PartnerName:       c.PartnerName,
		IssuedAt:          c.IssuedAt,
		Grade:             c.Grade,
		DurationHours:     c.DurationHours,
	}
}

// Assets are the public URLs of the rendered artifacts
type Assets struct {
	DocumentURL string
	ImageURL    string
}

// Renderer produces certificate assets. Implementations must name outputs
// solely after the certificate number so a re-render replaces the old files.
type Renderer interface {
	Render(ctx context.Context, s Snapshot) (*Assets, error)
}

// VerificationURL is the public page where a certificate can be checked
func VerificationURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/verify/" + code
}

type templateData struct {
	CertificateNumber string
	LearnerName       string
	CourseTitle       string
	PartnerName       string
	IssuedDate        string
	Grade             string
	Duration          string
	VerificationURL   string
}

// HTML executes the certificate template for s
func HTML(s Snapshot, verifyBaseURL string) ([]byte, error) {
	data := templateData{
		CertificateNumber: s.CertificateNumber,
		LearnerName:       s.LearnerName,
		CourseTitle:       s.CourseTitle,
		PartnerName:       s.PartnerName,
		IssuedDate:        s.IssuedAt.Format("January 2, 2006"),
		VerificationURL:   VerificationURL(verifyBaseURL, s.VerificationCode),
	}
	if s.Grade != nil {
		data.Grade = fmt.Sprintf("%.2f%%", *s.Grade)
	}
	if s.DurationHours != nil {
		data.Duration = fmt.Sprintf("%.2f hours", *s.DurationHours)
	}

	var buf bytes.Buffer
	if err := certificateTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DocumentName and ImageName are the deterministic output file names
func DocumentName(certificateNumber string) string { return certificateNumber + ".pdf" }
func ImageName(certificateNumber string) string    { return certificateNumber + ".png" }
