package sms

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/strongo/gotwilio"
)

// TwilioSettings configure the Twilio REST client.
type TwilioSettings struct {
	AccountSID     string
	AuthToken      string
	From           string
	StatusCallback string
	CountryCode    string
	Timeout        time.Duration
}

type twilioClient interface {
	SendSMS(from, to, body, statusCallback, applicationSid string) (*gotwilio.SmsResponse, *gotwilio.Exception, error)
}

// TwilioSender delivers messages through Twilio.
type TwilioSender struct {
	cfg    TwilioSettings
	client twilioClient
}

// NewTwilioSender builds a sender; it returns ErrDisabled without credentials.
func NewTwilioSender(cfg TwilioSettings) (*TwilioSender, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("sms: twilio from number is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := gotwilio.NewTwilioClientCustomHTTP(cfg.AccountSID, cfg.AuthToken, &http.Client{Timeout: cfg.Timeout})
	return &TwilioSender{cfg: cfg, client: client}, nil
}

// Send delivers one message. The gotwilio client has no context support, so
// cancellation is only honoured before the request is issued.
func (s *TwilioSender) Send(ctx context.Context, to, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	number := NormalizePhone(to, s.cfg.CountryCode)
	if number == "" {
		return fmt.Errorf("sms: recipient number is required")
	}

	_, exception, err := s.client.SendSMS(s.cfg.From, "+"+number, message, s.cfg.StatusCallback, "")
	if err != nil {
		return fmt.Errorf("sms: twilio send: %w", err)
	}
	if exception != nil {
		return fmt.Errorf("sms: twilio error %d: %s", exception.Code, exception.Message)
	}
	return nil
}

// WrapLink returns the URL unchanged; Twilio shortens links by account setting.
func (s *TwilioSender) WrapLink(link string) string {
	return link
}
