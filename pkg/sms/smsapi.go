package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultSMSAPIEndpoint is the SMSAPI.pl send endpoint.
const DefaultSMSAPIEndpoint = "https://api.smsapi.pl/sms.do"

// SMSAPISettings configure the SMSAPI gateway client.
type SMSAPISettings struct {
	Endpoint    string
	Token       string
	Sender      string
	CountryCode string
	Timeout     time.Duration
}

// SMSAPISender posts messages to SMSAPI with bearer authentication.
type SMSAPISender struct {
	cfg    SMSAPISettings
	client *http.Client
}

// NewSMSAPISender builds a sender; it returns ErrDisabled when no token is set.
func NewSMSAPISender(cfg SMSAPISettings, client *http.Client) (*SMSAPISender, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrDisabled
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultSMSAPIEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &SMSAPISender{cfg: cfg, client: client}, nil
}

type smsapiResponse struct {
	Count   int    `json:"count"`
	Error   *int   `json:"error"`
	Message string `json:"message"`
}

// Send posts one message. A JSON body carrying an "error" field is a failure
// even when the HTTP status is 200.
func (s *SMSAPISender) Send(ctx context.Context, to, message string) error {
	number := NormalizePhone(to, s.cfg.CountryCode)
	if number == "" {
		return errors.New("sms: recipient number is required")
	}

	query := url.Values{}
	query.Set("to", number)
	query.Set("message", message)
	query.Set("from", s.cfg.Sender)
	query.Set("format", "json")
	query.Set("encoding", "utf-8")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: post: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("sms: read response: %w", err)
	}

	var payload smsapiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("sms: decode response (status %d): %w", resp.StatusCode, err)
	}
	if payload.Error != nil {
		return fmt.Errorf("sms: gateway error %d: %s", *payload.Error, payload.Message)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sms: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// WrapLink uses the gateway's link shortening syntax.
func (s *SMSAPISender) WrapLink(link string) string {
	return "[%goto:" + link + "%]"
}
