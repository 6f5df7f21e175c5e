// Package notification records in-app notifications and mirrors them by email.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"lms/models"
	"lms/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Message is the content of a single notification
type Message struct {
	Type       string
	Title      string
	Message    string
	ActionText string
	Link       string
	ImageURL   string
	Data       map[string]interface{}
}

type store interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
	MarkNotificationEmailed(ctx context.Context, id uint) error
}

// Mailer sends one HTML email. utils.SendEmail satisfies it.
type Mailer func(toEmail, toName, subject, htmlBody string) error

// Dispatcher delivers notifications. Callers treat every returned error as
// loggable only; a failed notification never fails the operation that caused it.
type Dispatcher struct {
	store  store
	mailer Mailer
	log    *zap.Logger
}

// NewDispatcher returns a Dispatcher. A nil mailer disables the email channel.
func NewDispatcher(store store, mailer Mailer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{store: store, mailer: mailer, log: log}
}

func (d *Dispatcher) Notify(ctx context.Context, userID uint, msg Message) error {
	n := &models.Notification{
		UserID:     userID,
		Type:       msg.Type,
		Title:      msg.Title,
		Message:    msg.Message,
		ActionText: msg.ActionText,
		Link:       msg.Link,
		ImageURL:   msg.ImageURL,
	}
	if msg.Data != nil {
		data, err := json.Marshal(msg.Data)
		if err != nil {
			return fmt.Errorf("encode notification data: %w", err)
		}
		n.Data = datatypes.JSON(data)
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if d.mailer == nil {
		return nil
	}
	user, err := d.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	body := utils.BuildNotificationEmail(user.Name, msg.Title, msg.Message, msg.ActionText, msg.Link, msg.ImageURL)
	if err := d.mailer(user.Email, user.Name, msg.Title, body); err != nil {
		return fmt.Errorf("email notification %d: %w", n.ID, err)
	}
	if err := d.store.MarkNotificationEmailed(ctx, n.ID); err != nil {
		return err
	}

	d.log.Debug("notification emailed", zap.Uint("userId", userID), zap.String("type", msg.Type))
	return nil
}
