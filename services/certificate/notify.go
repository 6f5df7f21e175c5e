package certificate

import (
	"context"
	"errors"
	"fmt"

	"lms/apperrors"
	"lms/models"
	"lms/services/events"
	"lms/services/notification"
	"lms/services/render"
)

type notifier interface {
	Notify(ctx context.Context, userID uint, msg notification.Message) error
}

// CompletionNotifier tells a learner that they completed a course. It runs
// after issuance so the message can point at the certificate when there is one.
type CompletionNotifier struct {
	certs         certificateStore
	courses       courseStore
	notifier      notifier
	verifyBaseURL string
}

func NewCompletionNotifier(certs certificateStore, courses courseStore, notifier notifier, verifyBaseURL string) *CompletionNotifier {
	return &CompletionNotifier{certs: certs, courses: courses, notifier: notifier, verifyBaseURL: verifyBaseURL}
}

func (n *CompletionNotifier) HandleCourseCompleted(ctx context.Context, ev events.Event) error {
	completed, ok := ev.(events.CourseCompleted)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	course, err := n.courses.GetCourse(ctx, completed.CourseID)
	if err != nil {
		return err
	}

	msg := notification.Message{
		Type:    models.NotificationCompletion,
		Title:   "Course completed",
		Message: fmt.Sprintf("Congratulations! You have completed %s.", course.Title),
		Data:    map[string]interface{}{"courseId": course.ID, "enrollmentId": completed.EnrollmentID},
	}

	cert, err := n.certs.GetByUserAndCourse(ctx, completed.UserID, completed.CourseID)
	switch {
	case err == nil:
		msg.ActionText = "View certificate"
		msg.Link = render.VerificationURL(n.verifyBaseURL, cert.VerificationCode)
		if cert.ImageURL != nil {
			msg.ImageURL = *cert.ImageURL
		}
		msg.Data["certificateNumber"] = cert.CertificateNumber
	case !errors.Is(err, apperrors.ErrNotFound):
		return err
	}

	return n.notifier.Notify(ctx, completed.UserID, msg)
}
