package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/muneebexotic/portfolio-api/internal/logging"
	"github.com/muneebexotic/portfolio-api/internal/notify"
	"github.com/muneebexotic/portfolio-api/internal/ratelimit"
)

// Submission is one contact-form payload. Website is the honeypot field:
// hidden in the rendered form, so any human leaves it empty.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Website string `json:"website,omitempty"`
}

// Outcome tags the internal result of a submission. Deflected submissions
// are reported to the caller exactly like sent ones, so bots get no
// detection oracle; the tag exists for logging and metrics.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeDeflected
	OutcomeInvalid
	OutcomeRateLimited
	OutcomeSendFailed
)

// Result is the terminal value of a submission; no pipeline branch
// escalates past it.
type Result struct {
	Outcome Outcome
	Message string
	Errors  ValidationErrors
}

// OK reports whether the caller should be shown a success response.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSent || r.Outcome == OutcomeDeflected
}

const (
	sentMessage       = "Thanks for reaching out! Your message has been sent."
	sendFailedMessage = "Failed to send message. Please try again later."
	unexpectedMessage = "Something went wrong. Please try again later."
)

// Pipeline orchestrates a submission: honeypot check, rate limit,
// sanitize, validate, send. The limiter store and sender are injected so
// tests can observe and substitute them.
type Pipeline struct {
	limiter ratelimit.Store
	sender  notify.Sender
	now     func() time.Time
}

func NewPipeline(limiter ratelimit.Store, sender notify.Sender) *Pipeline {
	return &Pipeline{limiter: limiter, sender: sender, now: time.Now}
}

// Submit runs the pipeline for one submission from clientID.
func (p *Pipeline) Submit(ctx context.Context, sub Submission, clientID string) Result {
	log := logging.FromContext(ctx)

	// Bots that fill the hidden field get a success response without
	// consuming rate-limit budget or triggering a send. Whitespace-only
	// values are treated as empty and processed normally.
	if strings.TrimSpace(sub.Website) != "" {
		log.Info("submission deflected", "client", clientID)
		return Result{Outcome: OutcomeDeflected, Message: sentMessage}
	}

	res, err := p.limiter.Check(ctx, clientID)
	if err != nil {
		// A broken limiter store should not take the contact form down;
		// allow the submission and flag the store.
		log.Warn("rate limit check failed, allowing", "client", clientID, "err", err)
	} else if !res.Allowed {
		log.Info("submission rate limited", "client", clientID, "reset_at", res.ResetAt)
		return Result{
			Outcome: OutcomeRateLimited,
			Errors:  ValidationErrors{FieldGeneral: rateLimitMessage(res.ResetAt.Sub(p.now()))},
		}
	}

	sub.Name = SanitizeInput(strings.TrimSpace(sub.Name))
	sub.Email = SanitizeInput(strings.TrimSpace(sub.Email))
	sub.Message = SanitizeInput(strings.TrimSpace(sub.Message))
	sub.Website = ""

	if errs := ValidateContactForm(sub); len(errs) > 0 {
		return Result{Outcome: OutcomeInvalid, Errors: errs}
	}

	msg := notify.Message{
		Name:       sub.Name,
		Email:      sub.Email,
		Body:       sub.Message,
		ClientIP:   clientID,
		ReceivedAt: p.now(),
	}
	if err := p.send(ctx, msg); err != nil {
		// The cause stays in the logs; the caller only sees a generic
		// message.
		log.Error("submission send failed", "client", clientID, "err", err)
		general := sendFailedMessage
		if _, ok := err.(*sendPanicError); ok {
			general = unexpectedMessage
		}
		return Result{
			Outcome: OutcomeSendFailed,
			Errors:  ValidationErrors{FieldGeneral: general},
		}
	}

	log.Info("submission sent", "client", clientID, "remaining", res.Remaining)
	return Result{Outcome: OutcomeSent, Message: sentMessage}
}

type sendPanicError struct {
	value any
}

func (e *sendPanicError) Error() string {
	return fmt.Sprintf("sender panicked: %v", e.value)
}

// send shields the pipeline from a panicking sender implementation.
func (p *Pipeline) send(ctx context.Context, msg notify.Message) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &sendPanicError{value: rec}
		}
	}()
	return p.sender.Send(ctx, msg)
}

// rateLimitMessage renders the wait in whole minutes, rounded up.
func rateLimitMessage(until time.Duration) string {
	minutes := int((until + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	if minutes == 1 {
		return "Too many messages sent. Please try again in 1 minute."
	}
	return fmt.Sprintf("Too many messages sent. Please try again in %d minutes.", minutes)
}
