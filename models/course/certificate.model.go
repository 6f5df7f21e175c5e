package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion.
// LearnerName, CourseTitle and PartnerName are copied at issuance and never refreshed.
type Certificate struct {
	gorm.Model
	UserID            uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_certificate_user_course"`
	CourseID          uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_certificate_user_course"`
	EnrollmentID      uint       `json:"enrollment_id" gorm:"index;not null"`
	CertificateNumber string     `json:"certificate_number" gorm:"type:varchar(12);uniqueIndex;not null"`
	VerificationCode  string     `json:"verification_code" gorm:"type:varchar(16);uniqueIndex;not null"`
	LearnerName       string     `json:"learner_name"`
	CourseTitle       string     `json:"course_title"`
	PartnerName       string     `json:"partner_name"`
	IssuedAt          time.Time  `json:"issued_at"`
	Grade             *float64   `json:"grade"`
	DurationHours     *float64   `json:"duration_hours"`
	DurationMinutes   *int       `json:"duration_minutes"`
	DocumentURL       *string    `json:"document_url"`
	ImageURL          *string    `json:"image_url"`
	RevokedAt         *time.Time `json:"revoked_at"`
}

// HasAssets reports whether both rendered artifacts are present
func (c *Certificate) HasAssets() bool {
	return c.DocumentURL != nil && *c.DocumentURL != "" && c.ImageURL != nil && *c.ImageURL != ""
}

// PublicCertificate is the unauthenticated verification view. It carries no internal ids.
type PublicCertificate struct {
	CertificateNumber string    `json:"certificate_number"`
	VerificationCode  string    `json:"verification_code"`
	IssuedAt          time.Time `json:"issued_at"`
	LearnerName       string    `json:"learner_name"`
	CourseTitle       string    `json:"course_title"`
	PartnerName       string    `json:"partner_name"`
	IdentityVerified  bool      `json:"identity_verified"`
}

// ToPublic builds the verification view
func (c *Certificate) ToPublic(identityVerified bool) PublicCertificate {
	return PublicCertificate{
		CertificateNumber: c.CertificateNumber,
		VerificationCode:  c.VerificationCode,
		IssuedAt:          c.IssuedAt,
		LearnerName:       c.LearnerName,
		CourseTitle:       c.CourseTitle,
		PartnerName:       c.PartnerName,
		IdentityVerified:  identityVerified,
	}
}
