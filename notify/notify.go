// Package notify defines the out-of-band delivery contract for verification
// codes, reset links, and security alerts.
//
// Delivery is always best-effort from the engine's perspective: the state
// change that triggered a notification commits whether or not delivery
// succeeds.
package notify

import "context"

// Template names the message being sent. Implementations map templates to
// their own subject lines and bodies; Data carries template parameters.
type Template string

const (
	// TemplateWelcome greets an account whose email just verified.
	TemplateWelcome Template = "welcome"
	// TemplateVerification carries the email verification code ("code").
	TemplateVerification Template = "verification"
	// TemplatePasswordReset carries the reset token ("token").
	TemplatePasswordReset Template = "password_reset"
	// TemplateSuspiciousLogin alerts on an anomalous login ("address",
	// "location", "device").
	TemplateSuspiciousLogin Template = "suspicious_login"
	// TemplatePasswordChanged confirms a completed password reset.
	TemplatePasswordChanged Template = "password_changed"
)

// Notification is one message addressed to a recipient.
type Notification struct {
	Recipient string
	Template  Template
	Data      map[string]string
}

// Notifier delivers notifications. Implementations may block; callers treat
// any returned error as non-fatal.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NoOp discards every notification. Useful for tests and for deployments
// that handle delivery elsewhere.
type NoOp struct{}

// Send discards n.
func (NoOp) Send(_ context.Context, _ Notification) error { return nil }

// Channel forwards notifications to a buffered channel so tests and callers
// can observe them. A full buffer drops the notification rather than blocking
// the triggering flow.
type Channel struct {
	ch chan Notification
}

// NewChannel creates a Channel notifier with the given buffer capacity.
func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = 16
	}
	return &Channel{ch: make(chan Notification, buffer)}
}

// Send enqueues n, dropping it when the buffer is full.
func (c *Channel) Send(_ context.Context, n Notification) error {
	select {
	case c.ch <- n:
	default:
	}
	return nil
}

// Notifications exposes the receive side of the buffer.
func (c *Channel) Notifications() <-chan Notification {
	return c.ch
}
