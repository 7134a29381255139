package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/jordan-wright/email"
)

// SMTPConfig carries everything needed to compose and deliver the
// notification email.
type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	SSL           bool
	From          string
	To            string
	SubjectPrefix string
	Timeout       time.Duration
}

// EmailSender sends submissions over SMTP. The transport function is a
// field so tests can capture composed emails without a mail server.
type EmailSender struct {
	cfg  SMTPConfig
	send func(cfg SMTPConfig, e *email.Email) error
}

func NewEmailSender(cfg SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg, send: sendSMTP}
}

// Send composes the notification and delivers it, bounded by ctx and the
// configured timeout.
func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{s.cfg.To}
	e.ReplyTo = []string{fmt.Sprintf("%s <%s>", msg.Name, msg.Email)}
	e.Subject = strings.TrimSpace(s.cfg.SubjectPrefix + " New contact message")
	e.Text = []byte(fmt.Sprintf(
		"From: %s <%s>\nIP: %s\nReceived: %s\n\n%s\n",
		msg.Name, msg.Email, msg.ClientIP,
		msg.ReceivedAt.UTC().Format(time.RFC3339), msg.Body,
	))

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	// The SMTP client has no context support; run it aside and give up
	// when the deadline passes. A timed-out send is reported like any
	// other send failure.
	done := make(chan error, 1)
	go func() {
		done <- s.send(s.cfg, e)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func sendSMTP(cfg SMTPConfig, e *email.Email) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	if cfg.SSL {
		return e.SendWithTLS(addr, auth, nil)
	}
	return e.Send(addr, auth)
}
