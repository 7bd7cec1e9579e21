package mail

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

// ErrDisabled signals that email delivery is not configured.
var ErrDisabled = errors.New("mail: delivery disabled")

// Message represents an outbound email. HTML is required; Text is an optional
// plain-text alternative.
type Message struct {
	FromName string
	To       []string
	Subject  string
	HTML     string
	Text     string
}

// Mailer defines behaviour for sending email messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Disabled returns a mailer that always reports ErrDisabled.
func Disabled() Mailer {
	return disabledMailer{}
}

type disabledMailer struct{}

func (disabledMailer) Send(context.Context, Message) error {
	return ErrDisabled
}

func validateMessage(msg Message) ([]string, error) {
	recipients := uniqueAddresses(msg.To)
	if len(recipients) == 0 {
		return nil, errors.New("mail: at least one recipient is required")
	}
	for _, rcpt := range recipients {
		if _, err := mail.ParseAddress(rcpt); err != nil {
			return nil, errors.New("mail: invalid recipient address " + rcpt)
		}
	}
	return recipients, nil
}

func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	var result []string
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, exists := seen[addr]; exists {
			continue
		}
		seen[addr] = struct{}{}
		result = append(result, addr)
	}
	return result
}
