// Package notifications builds and delivers invite and RSVP messages over
// email and SMS. Delivery is best-effort: failures are logged and counted,
// never returned to the operation that triggered them.
package notifications

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/pkg/logger"
	"github.com/charlesng35/soiree/pkg/mail"
	"github.com/charlesng35/soiree/pkg/metrics"
	"github.com/charlesng35/soiree/pkg/sms"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"

	defaultInviterFallback = "Gospodarza"
	defaultEventName       = "urodziny"
)

// Outcome reports what happened on one channel.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Delivery summarises a multi-channel notification.
type Delivery struct {
	SMS   Outcome `json:"sms"`
	Email Outcome `json:"email"`
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithBaseURL sets the public URL used to build magic links.
func WithBaseURL(url string) Option {
	return func(d *Dispatcher) {
		d.baseURL = strings.TrimRight(strings.TrimSpace(url), "/")
	}
}

// WithInviterFallback sets the name used when a guest has no inviter.
func WithInviterFallback(name string) Option {
	return func(d *Dispatcher) {
		if name = strings.TrimSpace(name); name != "" {
			d.fallback = name
		}
	}
}

// WithEventName sets the event noun used in invitations.
func WithEventName(name string) Option {
	return func(d *Dispatcher) {
		if name = strings.TrimSpace(name); name != "" {
			d.eventName = name
		}
	}
}

// WithFromName sets the display name for outgoing email.
func WithFromName(name string) Option {
	return func(d *Dispatcher) {
		d.fromName = strings.TrimSpace(name)
	}
}

// Dispatcher sends guest-facing notifications.
type Dispatcher struct {
	mailer    mail.Mailer
	sender    sms.Sender
	baseURL   string
	fallback  string
	eventName string
	fromName  string
	log       *zap.Logger
}

// NewDispatcher constructs a Dispatcher. Nil collaborators are replaced with
// disabled implementations.
func NewDispatcher(mailer mail.Mailer, sender sms.Sender, opts ...Option) *Dispatcher {
	if mailer == nil {
		mailer = mail.Disabled()
	}
	if sender == nil {
		sender = sms.Disabled()
	}
	d := &Dispatcher{
		mailer:    mailer,
		sender:    sender,
		fallback:  defaultInviterFallback,
		eventName: defaultEventName,
		log:       logger.WithModule("notifications"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MagicLink returns the code redemption URL.
func (d *Dispatcher) MagicLink(code string) string {
	return d.baseURL + "/invite/" + code
}

// InviterFallback is the name substituted for guests without an inviter.
func (d *Dispatcher) InviterFallback() string {
	return d.fallback
}

// Recipient builds the personalisation values for guest. The link is wrapped
// in the SMS gateway's link syntax.
func (d *Dispatcher) Recipient(guest *models.Guest, inviter *models.Guest) Recipient {
	return RecipientFor(guest, inviter, d.sender.WrapLink(d.MagicLink(guest.Code)), d.fallback)
}

// SendSMS delivers one text message and records the outcome.
func (d *Dispatcher) SendSMS(ctx context.Context, to, message string) error {
	if strings.TrimSpace(to) == "" {
		metrics.Notifications.WithLabelValues(ChannelSMS, string(OutcomeSkipped)).Inc()
		return errors.New("notifications: recipient has no phone")
	}
	if err := d.sender.Send(ctx, to, message); err != nil {
		metrics.Notifications.WithLabelValues(ChannelSMS, string(OutcomeFailed)).Inc()
		return err
	}
	metrics.Notifications.WithLabelValues(ChannelSMS, string(OutcomeSent)).Inc()
	return nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, msg mail.Message) error {
	msg.FromName = d.fromName
	if err := d.mailer.Send(ctx, msg); err != nil {
		metrics.Notifications.WithLabelValues(ChannelEmail, string(OutcomeFailed)).Inc()
		return err
	}
	metrics.Notifications.WithLabelValues(ChannelEmail, string(OutcomeSent)).Inc()
	return nil
}

// SendInvite notifies a freshly created invitee by SMS when a phone is known
// and by email when an address is known. Both channels are attempted and
// awaited; failures only affect the returned Delivery.
func (d *Dispatcher) SendInvite(ctx context.Context, invitee *models.Guest, inviter *models.Guest) Delivery {
	out := Delivery{SMS: OutcomeSkipped, Email: OutcomeSkipped}
	if invitee == nil {
		return out
	}

	if strings.TrimSpace(invitee.Phone) != "" {
		r := d.Recipient(invitee, inviter)
		if err := d.SendSMS(ctx, invitee.Phone, inviteSMS(r, d.eventName)); err != nil {
			d.log.Warn("invite sms failed", zap.String("guest_id", invitee.ID), zap.Error(err))
			out.SMS = OutcomeFailed
		} else {
			out.SMS = OutcomeSent
		}
	}

	if strings.TrimSpace(invitee.Email) != "" {
		r := RecipientFor(invitee, inviter, d.MagicLink(invitee.Code), d.fallback)
		body, err := inviteEmailHTML(r, d.eventName)
		if err == nil {
			err = d.sendEmail(ctx, mail.Message{
				To:      []string{invitee.Email},
				Subject: inviteEmailSubject,
				HTML:    body,
			})
		}
		if err != nil {
			d.log.Warn("invite email failed", zap.String("guest_id", invitee.ID), zap.Error(err))
			out.Email = OutcomeFailed
		} else {
			out.Email = OutcomeSent
		}
	}

	return out
}

// SendRSVPConfirmation emails the guest a summary of their main-event answer.
// Guests without an email address are skipped.
func (d *Dispatcher) SendRSVPConfirmation(ctx context.Context, guest *models.Guest) Outcome {
	if guest == nil || strings.TrimSpace(guest.Email) == "" {
		return OutcomeSkipped
	}
	body, err := rsvpEmailHTML(guest.Name, guest.RSVPMain)
	if err == nil {
		err = d.sendEmail(ctx, mail.Message{
			To:      []string{guest.Email},
			Subject: rsvpEmailSubject,
			HTML:    body,
		})
	}
	if err != nil {
		d.log.Warn("rsvp confirmation failed", zap.String("guest_id", guest.ID), zap.Error(err))
		return OutcomeFailed
	}
	return OutcomeSent
}
