package app

import (
	"errors"
	"strings"

	"github.com/charlesng35/soiree/pkg/sms"
)

// SMSProvider returns the normalised provider name.
func (c SMSConfig) SMSProvider() string {
	return strings.ToLower(strings.TrimSpace(c.Provider))
}

// SMSAPISettings converts SMSConfig to the SMSAPI client settings.
func (c SMSConfig) SMSAPISettings() sms.SMSAPISettings {
	return sms.SMSAPISettings{
		Endpoint:    strings.TrimSpace(c.Endpoint),
		Token:       strings.TrimSpace(c.Token),
		Sender:      strings.TrimSpace(c.Sender),
		CountryCode: strings.TrimSpace(c.DefaultCountryCode),
		Timeout:     c.Timeout,
	}
}

// TwilioSettings converts SMSConfig to the Twilio client settings.
func (c SMSConfig) TwilioSettings() sms.TwilioSettings {
	return sms.TwilioSettings{
		AccountSID:     strings.TrimSpace(c.Twilio.AccountSID),
		AuthToken:      strings.TrimSpace(c.Twilio.AuthToken),
		From:           strings.TrimSpace(c.Twilio.From),
		StatusCallback: strings.TrimSpace(c.Twilio.StatusCallback),
		CountryCode:    strings.TrimSpace(c.DefaultCountryCode),
		Timeout:        c.Timeout,
	}
}

// NewSender builds the configured gateway. Missing credentials yield a
// disabled sender whose sends report failure.
func (c SMSConfig) NewSender() (sms.Sender, error) {
	var (
		sender sms.Sender
		err    error
	)
	switch c.SMSProvider() {
	case "twilio":
		sender, err = sms.NewTwilioSender(c.TwilioSettings())
	case "smsapi", "":
		sender, err = sms.NewSMSAPISender(c.SMSAPISettings(), nil)
	default:
		return sms.Disabled(), nil
	}
	if errors.Is(err, sms.ErrDisabled) {
		return sms.Disabled(), nil
	}
	if err != nil {
		return nil, err
	}
	return sender, nil
}
