package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:          "smtp.example.com",
		Port:          587,
		User:          "user",
		Pass:          "pass",
		From:          "noreply@example.com",
		To:            "owner@example.com",
		SubjectPrefix: "[Portfolio]",
		Timeout:       time.Second,
	}
}

func testMessage() Message {
	return Message{
		Name:       "Alice",
		Email:      "alice@example.com",
		Body:       "Hello there, this is a message.",
		ClientIP:   "203.0.113.7",
		ReceivedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEmailSenderComposes(t *testing.T) {
	s := NewEmailSender(testSMTPConfig())

	var captured *email.Email
	s.send = func(_ SMTPConfig, e *email.Email) error {
		captured = e
		return nil
	}

	require.NoError(t, s.Send(context.Background(), testMessage()))
	require.NotNil(t, captured)

	assert.Equal(t, "noreply@example.com", captured.From)
	assert.Equal(t, []string{"owner@example.com"}, captured.To)
	assert.Equal(t, []string{"Alice <alice@example.com>"}, captured.ReplyTo)
	assert.Equal(t, "[Portfolio] New contact message", captured.Subject)
	body := string(captured.Text)
	assert.Contains(t, body, "Hello there, this is a message.")
	assert.Contains(t, body, "203.0.113.7")
	assert.Contains(t, body, "2026-03-01T12:00:00Z")
}

func TestEmailSenderPropagatesTransportError(t *testing.T) {
	s := NewEmailSender(testSMTPConfig())
	s.send = func(SMTPConfig, *email.Email) error {
		return errors.New("connection refused")
	}

	err := s.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send")
}

func TestEmailSenderHonorsTimeout(t *testing.T) {
	cfg := testSMTPConfig()
	cfg.Timeout = 20 * time.Millisecond
	s := NewEmailSender(cfg)

	release := make(chan struct{})
	s.send = func(SMTPConfig, *email.Email) error {
		<-release
		return nil
	}
	defer close(release)

	err := s.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type fakeSender struct {
	calls int
	err   error
}

func (f *fakeSender) Send(context.Context, Message) error {
	f.calls++
	return f.err
}

func TestFanoutPrimaryDecides(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	primary := &fakeSender{}
	secondary := &fakeSender{err: errors.New("telegram down")}
	f := NewFanout(log, primary, secondary)

	assert.NoError(t, f.Send(context.Background(), testMessage()))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls, "secondary failure is swallowed")

	primary.err = errors.New("smtp down")
	assert.Error(t, f.Send(context.Background(), testMessage()))
}
