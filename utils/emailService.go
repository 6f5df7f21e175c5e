package utils

import (
	"fmt"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers an HTML email through SendGrid
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if config.AppConfig.SendgridAPIKey == "" {
		return fmt.Errorf("sendgrid api key not configured")
	}

	from := mail.NewEmail("Learning Platform", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	// SendGrid answers 202 on success
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}

// HTML wrapper shared by every platform email
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1F3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F3A5F; line-height: 1.6; }
			.content h2 { color: #1F3A5F; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #C9A227; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.preview { width: 100%%; border: 1px solid #E0E0E0; border-radius: 4px; margin-top: 20px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>LEARNING PLATFORM</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				You are receiving this email because you have an account on our learning platform.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// BuildNotificationEmail renders an in-app notification as an email body
func BuildNotificationEmail(name, title, message, actionText, link, imageURL string) string {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>%s</p>
	`, name, message)
	if imageURL != "" {
		body += fmt.Sprintf(`<img class="preview" src="%s" alt="%s">`, imageURL, title)
	}
	if link != "" && actionText != "" {
		body += fmt.Sprintf(`<a href="%s" class="btn">%s</a>`, link, actionText)
	}
	return getEmailTemplate(title, body)
}
