package certificate

import (
	"context"
	"errors"

	"lms/apperrors"
	courseModels "lms/models/course"

	"go.uber.org/zap"
)

// LookupByVerificationCode is the public verification read. Revoked
// certificates are reported as not found.
func (s *Service) LookupByVerificationCode(ctx context.Context, code string) (*courseModels.PublicCertificate, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, apperrors.NotFound("certificate not found")
	}
	if view, ok := s.cache.Get(ctx, code); ok {
		return view, nil
	}

	c, err := s.certs.GetActiveByVerificationCode(ctx, code)
	if err != nil {
		return nil, err
	}

	identityVerified := false
	user, err := s.users.GetByID(ctx, c.UserID)
	switch {
	case err == nil:
		identityVerified = user.IsIdentityVerified
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	view := c.ToPublic(identityVerified)
	s.cache.Set(ctx, code, view)
	return &view, nil
}

// GetCertificate returns one of the caller's certificates
func (s *Service) GetCertificate(ctx context.Context, userID, certificateID uint) (*courseModels.Certificate, error) {
	c, err := s.certs.GetByID(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, apperrors.Forbidden("certificate does not belong to this user")
	}
	s.enrich(ctx, c)
	return c, nil
}

func (s *Service) ListCertificates(ctx context.Context, userID uint) ([]courseModels.Certificate, error) {
	certificates, err := s.certs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range certificates {
		s.enrich(ctx, &certificates[i])
	}
	return certificates, nil
}

// enrich fills in grade and duration for certificates issued before those
// were computed, and retries rendering for certificates without assets.
func (s *Service) enrich(ctx context.Context, c *courseModels.Certificate) {
	var grade, hours *float64
	var minutes *int

	if c.Grade == nil {
		g, err := s.grades.ComputeGrade(ctx, c.EnrollmentID)
		if err != nil {
			s.log.Warn("grade backfill failed", zap.Uint("certificateId", c.ID), zap.Error(err))
		}
		grade = g
	}
	if c.DurationMinutes == nil || c.DurationHours == nil {
		d, err := s.durations.ComputeDuration(ctx, c.CourseID)
		if err != nil {
			s.log.Warn("duration backfill failed", zap.Uint("certificateId", c.ID), zap.Error(err))
		}
		if d != nil {
			m, h := d.Minutes, d.Hours
			minutes, hours = &m, &h
		}
	}

	if grade != nil || minutes != nil {
		if err := s.certs.UpdateDerived(ctx, c.ID, grade, hours, minutes); err != nil {
			s.log.Warn("certificate backfill not saved", zap.Uint("certificateId", c.ID), zap.Error(err))
		} else {
			if grade != nil {
				c.Grade = grade
			}
			if minutes != nil {
				c.DurationMinutes = minutes
				c.DurationHours = hours
			}
		}
	}

	if !c.HasAssets() && c.RevokedAt == nil {
		s.renderAssets(ctx, c)
	}
}
