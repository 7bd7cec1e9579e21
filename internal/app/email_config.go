package app

import (
	"strings"

	"github.com/charlesng35/soiree/pkg/mail"
)

// EmailProvider returns the normalised provider name.
func (c EmailConfig) EmailProvider() string {
	return strings.ToLower(strings.TrimSpace(c.Provider))
}

// SMTPConfigured reports whether enough SMTP settings exist to send mail.
func (c EmailConfig) SMTPConfigured() bool {
	return strings.TrimSpace(c.SMTP.Host) != "" && strings.TrimSpace(c.SMTP.Username) != ""
}

// SMTPSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Host:     strings.TrimSpace(c.SMTP.Host),
		Port:     c.SMTP.Port,
		Username: strings.TrimSpace(c.SMTP.Username),
		Password: c.SMTP.Password,
		From:     strings.TrimSpace(c.SMTP.From),
		FromName: c.FromName,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// SendGridSettings converts EmailConfig to the SendGrid mailer settings.
func (c EmailConfig) SendGridSettings() mail.SendGridSettings {
	return mail.SendGridSettings{
		APIKey:   strings.TrimSpace(c.SendGrid.APIKey),
		From:     strings.TrimSpace(c.SendGrid.From),
		FromName: c.FromName,
	}
}

// NewMailer builds the configured mailer. Missing credentials yield a
// disabled mailer rather than an error so invites keep working without email.
func (c EmailConfig) NewMailer() (mail.Mailer, error) {
	switch c.EmailProvider() {
	case "sendgrid":
		if strings.TrimSpace(c.SendGrid.APIKey) == "" {
			return mail.Disabled(), nil
		}
		return mail.NewSendGridMailer(c.SendGridSettings())
	case "smtp", "":
		if !c.SMTPConfigured() {
			return mail.Disabled(), nil
		}
		return mail.NewSMTPMailer(c.SMTPSettings())
	default:
		return mail.Disabled(), nil
	}
}
