package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the relay settings for [SMTP].
type SMTPConfig struct {
	Addr     string // host:port of the relay
	From     string
	Username string
	Password string
	Host     string // auth host; defaults to the host part of Addr
}

// SMTP delivers notifications as plain-text email through a single relay.
type SMTP struct {
	config SMTPConfig
}

// NewSMTP validates the relay configuration and returns an SMTP notifier.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Addr == "" {
		return nil, errors.New("smtp relay address required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address required")
	}
	if cfg.Host == "" {
		host, _, ok := strings.Cut(cfg.Addr, ":")
		if !ok || host == "" {
			return nil, errors.New("smtp relay address must be host:port")
		}
		cfg.Host = host
	}
	return &SMTP{config: cfg}, nil
}

// Send renders the template and submits the message to the relay. Context
// cancellation is checked before dialing; the SMTP exchange itself is bounded
// by the relay's own timeouts.
func (s *SMTP) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.Recipient == "" {
		return errors.New("notification has no recipient")
	}

	subject, body := render(n)
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.config.From, n.Recipient, subject, body,
	)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	return smtp.SendMail(s.config.Addr, auth, s.config.From, []string{n.Recipient}, []byte(msg))
}

func render(n Notification) (subject, body string) {
	get := func(key string) string { return n.Data[key] }

	switch n.Template {
	case TemplateWelcome:
		return "Welcome", "Your email is verified and your account is fully active."
	case TemplateVerification:
		return "Verify your email",
			fmt.Sprintf("Your verification code is %s. It expires in 30 minutes.", get("code"))
	case TemplatePasswordReset:
		return "Password reset requested",
			fmt.Sprintf("Use this token to reset your password: %s\nIt expires in 30 minutes. If you did not request a reset, ignore this message.", get("token"))
	case TemplateSuspiciousLogin:
		return "New sign-in to your account",
			fmt.Sprintf("A sign-in we did not recognize:\n  address: %s\n  location: %s\n  device: %s\nIf this was you, no action is needed.", get("address"), get("location"), get("device"))
	case TemplatePasswordChanged:
		return "Your password was changed",
			"Your password was just changed and all sessions were signed out. If this was not you, reset your password immediately."
	default:
		return string(n.Template), ""
	}
}
