package certificate

import (
	"context"
	"errors"
	"io"

	"lms/apperrors"
	courseModels "lms/models/course"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReissueReport counts the outcome of a ReissueCompleted run
type ReissueReport struct {
	Issued     int `json:"issued"`
	Rerendered int `json:"rerendered"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// ReissueCompleted issues certificates for every completed enrollment that
// has none. Existing certificates are skipped unless RenderMissingOnReissue
// is set and they lack assets.
func (s *Service) ReissueCompleted(ctx context.Context) (*ReissueReport, error) {
	enrollments, err := s.enrollments.ListCompleted(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReissueReport{}
	for _, e := range enrollments {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		existing, err := s.certs.GetByUserAndCourse(ctx, e.UserID, e.CourseID)
		switch {
		case err == nil:
			if !s.opts.RenderMissingOnReissue || existing.HasAssets() || existing.RevokedAt != nil {
				report.Skipped++
				continue
			}
			if err := s.render(ctx, existing); err != nil {
				s.log.Warn("re-render failed", zap.Uint("certificateId", existing.ID), zap.Error(err))
				report.Failed++
				continue
			}
			report.Rerendered++
		case errors.Is(err, apperrors.ErrNotFound):
			if _, err := s.IssueForEnrollment(ctx, e.ID); err != nil {
				s.log.Warn("re-issuance failed", zap.Uint("enrollmentId", e.ID), zap.Error(err))
				report.Failed++
				continue
			}
			report.Issued++
		default:
			s.log.Warn("certificate lookup failed", zap.Uint("enrollmentId", e.ID), zap.Error(err))
			report.Failed++
		}
	}

	s.log.Info("certificate re-issuance finished",
		zap.Int("issued", report.Issued),
		zap.Int("rerendered", report.Rerendered),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// Revoke hides a certificate from public verification. Revoking twice is a no-op.
func (s *Service) Revoke(ctx context.Context, certificateID uint) (*courseModels.Certificate, error) {
	c, err := s.certs.GetByID(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	if c.RevokedAt == nil {
		if err := s.certs.Revoke(ctx, c.ID, s.now()); err != nil {
			return nil, err
		}
		s.log.Info("certificate revoked", zap.Uint("certificateId", c.ID))
	}
	s.cache.Delete(ctx, c.VerificationCode)
	return s.certs.GetByID(ctx, c.ID)
}

// ExportIssued writes every certificate as an xlsx workbook to w
func (s *Service) ExportIssued(ctx context.Context, w io.Writer) error {
	certificates, err := s.certs.ListAll(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := []interface{}{"Certificate Number", "Verification Code", "Learner", "Course", "Partner", "Issued At", "Grade", "Hours", "Revoked"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, c := range certificates {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			c.CertificateNumber,
			c.VerificationCode,
			c.LearnerName,
			c.CourseTitle,
			c.PartnerName,
			c.IssuedAt.Format("2006-01-02"),
			optionalFloat(c.Grade),
			optionalFloat(c.DurationHours),
			c.RevokedAt != nil,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
