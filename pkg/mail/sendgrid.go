package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSettings configure the SendGrid API mailer.
type SendGridSettings struct {
	APIKey   string
	From     string
	FromName string
}

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

type sendGridMailer struct {
	cfg    SendGridSettings
	client sendGridClient
}

// NewSendGridMailer returns a mailer backed by the SendGrid v3 API.
func NewSendGridMailer(cfg SendGridSettings) (Mailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid: api key is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("sendgrid: from address is required")
	}
	return &sendGridMailer{cfg: cfg, client: sendgrid.NewSendClient(cfg.APIKey)}, nil
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	recipients, err := validateMessage(msg)
	if err != nil {
		return err
	}

	name := msg.FromName
	if name == "" {
		name = m.cfg.FromName
	}
	from := sgmail.NewEmail(name, m.cfg.From)

	for _, rcpt := range recipients {
		email := sgmail.NewSingleEmail(from, msg.Subject, sgmail.NewEmail("", rcpt), msg.Text, msg.HTML)
		resp, err := m.client.SendWithContext(ctx, email)
		if err != nil {
			return fmt.Errorf("sendgrid: send to %s: %w", rcpt, err)
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("sendgrid: send to %s: unexpected status %d", rcpt, resp.StatusCode)
		}
	}
	return nil
}
