// Package sms delivers text messages through an HTTP gateway.
package sms

import (
	"context"
	"errors"
)

// ErrDisabled signals that no gateway credentials are configured.
var ErrDisabled = errors.New("sms: delivery disabled")

// Sender delivers a single text message. WrapLink decorates a URL in the
// gateway's native link syntax before it is placed into a message.
type Sender interface {
	Send(ctx context.Context, to, message string) error
	WrapLink(url string) string
}

// Disabled returns a sender that never delivers.
func Disabled() Sender {
	return disabledSender{}
}

type disabledSender struct{}

func (disabledSender) Send(context.Context, string, string) error { return ErrDisabled }
func (disabledSender) WrapLink(url string) string                 { return url }
