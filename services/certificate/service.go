// Package certificate issues, enriches and publishes course completion
// certificates. Issuance is idempotent per (user, course).
package certificate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lms/apperrors"
	"lms/cache"
	"lms/models"
	courseModels "lms/models/course"
	"lms/repository"
	"lms/services/events"
	"lms/services/grading"
	"lms/services/render"

	"go.uber.org/zap"
)

// maxIssueAttempts bounds redraws after a certificate number or verification code collision
const maxIssueAttempts = 5

type certificateStore interface {
	Create(ctx context.Context, c *courseModels.Certificate) error
	GetByID(ctx context.Context, id uint) (*courseModels.Certificate, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*courseModels.Certificate, error)
	GetActiveByVerificationCode(ctx context.Context, code string) (*courseModels.Certificate, error)
	ListByUser(ctx context.Context, userID uint) ([]courseModels.Certificate, error)
	ListAll(ctx context.Context) ([]courseModels.Certificate, error)
	UpdateAssets(ctx context.Context, id uint, documentURL, imageURL string) error
	UpdateDerived(ctx context.Context, id uint, grade, hours *float64, minutes *int) error
	Revoke(ctx context.Context, id uint, at time.Time) error
}

type enrollmentStore interface {
	GetByID(ctx context.Context, id uint) (*courseModels.Enrollment, error)
	ListCompleted(ctx context.Context) ([]courseModels.Enrollment, error)
}

type userStore interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type courseStore interface {
	GetCourse(ctx context.Context, id uint) (*courseModels.Course, error)
}

type gradeCalculator interface {
	ComputeGrade(ctx context.Context, enrollmentID uint) (*float64, error)
}

type durationEstimator interface {
	ComputeDuration(ctx context.Context, courseID uint) (*grading.Duration, error)
}

// Options tune a Service
type Options struct {
	// RenderMissingOnReissue makes ReissueCompleted re-render existing
	// certificates that have no assets instead of skipping them.
	RenderMissingOnReissue bool
}

type Service struct {
	certs       certificateStore
	enrollments enrollmentStore
	users       userStore
	courses     courseStore
	grades      gradeCalculator
	durations   durationEstimator
	renderer    render.Renderer
	cache       cache.VerificationCache
	opts        Options
	log         *zap.Logger

	now     func() time.Time
	newCode func(n int) string
}

func NewService(
	certs certificateStore,
	enrollments enrollmentStore,
	users userStore,
	courses courseStore,
	grades gradeCalculator,
	durations durationEstimator,
	renderer render.Renderer,
	verifyCache cache.VerificationCache,
	opts Options,
	log *zap.Logger,
) *Service {
	if verifyCache == nil {
		verifyCache = cache.Nop{}
	}
	return &Service{
		certs:       certs,
		enrollments: enrollments,
		users:       users,
		courses:     courses,
		grades:      grades,
		durations:   durations,
		renderer:    renderer,
		cache:       verifyCache,
		opts:        opts,
		log:         log,
		now:         time.Now,
		newCode:     randomCode,
	}
}

// IssueForEnrollment returns the certificate of a completed enrollment,
// creating it on first call. The (user, course) unique key decides which of
// several concurrent callers creates the row; the others read it back.
func (s *Service) IssueForEnrollment(ctx context.Context, enrollmentID uint) (*courseModels.Certificate, error) {
	e, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if !e.Completed {
		return nil, apperrors.PreconditionFailed("course not completed")
	}

	user, err := s.users.GetByID(ctx, e.UserID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.GetCourse(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}
	grade, err := s.grades.ComputeGrade(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("compute grade: %w", err)
	}
	duration, err := s.durations.ComputeDuration(ctx, e.CourseID)
	if err != nil {
		return nil, fmt.Errorf("compute duration: %w", err)
	}

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		cert := &courseModels.Certificate{
			UserID:            e.UserID,
			CourseID:          e.CourseID,
			EnrollmentID:      e.ID,
			CertificateNumber: s.newCode(certificateNumberLength),
			VerificationCode:  s.newCode(verificationCodeLength),
			LearnerName:       user.Name,
			CourseTitle:       course.Title,
			PartnerName:       course.Author,
			IssuedAt:          s.now(),
			Grade:             grade,
		}
		if duration != nil {
			minutes, hours := duration.Minutes, duration.Hours
			cert.DurationMinutes = &minutes
			cert.DurationHours = &hours
		}

		err := s.certs.Create(ctx, cert)
		if err == nil {
			s.log.Info("certificate issued",
				zap.Uint("certificateId", cert.ID),
				zap.String("certificateNumber", cert.CertificateNumber),
				zap.Uint("enrollmentId", e.ID))
			s.renderAssets(ctx, cert)
			return cert, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}

		existing, err := s.certs.GetByUserAndCourse(ctx, e.UserID, e.CourseID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		// no certificate for this pair, so one of the random codes collided
		s.log.Warn("certificate code collision, redrawing", zap.Uint("enrollmentId", e.ID), zap.Int("attempt", attempt+1))
	}
	return nil, fmt.Errorf("could not allocate unique certificate codes for enrollment %d", e.ID)
}

// IssueForLearner is IssueForEnrollment for a learner acting on their own enrollment
func (s *Service) IssueForLearner(ctx context.Context, learnerID, enrollmentID uint) (*courseModels.Certificate, error) {
	e, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.UserID != learnerID {
		return nil, apperrors.Forbidden("enrollment does not belong to this learner")
	}
	return s.IssueForEnrollment(ctx, e.ID)
}

// renderAssets renders and stores asset URLs on c. Failures are logged only.
func (s *Service) renderAssets(ctx context.Context, c *courseModels.Certificate) bool {
	if err := s.render(ctx, c); err != nil {
		s.log.Warn("certificate rendering failed",
			zap.Uint("certificateId", c.ID),
			zap.String("certificateNumber", c.CertificateNumber),
			zap.Error(err))
		return false
	}
	return true
}

func (s *Service) render(ctx context.Context, c *courseModels.Certificate) error {
	assets, err := s.renderer.Render(ctx, render.SnapshotOf(c))
	if err != nil {
		return err
	}
	if err := s.certs.UpdateAssets(ctx, c.ID, assets.DocumentURL, assets.ImageURL); err != nil {
		return err
	}
	c.DocumentURL = &assets.DocumentURL
	c.ImageURL = &assets.ImageURL
	return nil
}

// RegenerateAssets re-renders an existing certificate and replaces its asset URLs
func (s *Service) RegenerateAssets(ctx context.Context, certificateID uint) (*courseModels.Certificate, error) {
	c, err := s.certs.GetByID(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	if err := s.render(ctx, c); err != nil {
		return nil, fmt.Errorf("regenerate certificate %d: %w", c.ID, err)
	}
	return c, nil
}

// HandleCourseCompleted subscribes issuance to the course completed event
func (s *Service) HandleCourseCompleted(ctx context.Context, ev events.Event) error {
	completed, ok := ev.(events.CourseCompleted)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	_, err := s.IssueForEnrollment(ctx, completed.EnrollmentID)
	return err
}
