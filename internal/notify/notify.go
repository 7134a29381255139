// Package notify delivers accepted contact submissions to the site
// owner: authoritatively by email, optionally mirrored to Telegram.
package notify

import (
	"context"
	"time"
)

// Message is a sanitized, accepted submission ready for delivery. The
// honeypot field never reaches this type.
type Message struct {
	Name       string
	Email      string
	Body       string
	ClientIP   string
	ReceivedAt time.Time
}

// Sender delivers a message. Implementations must honor ctx deadlines;
// the pipeline treats any returned error as a recoverable send failure.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
