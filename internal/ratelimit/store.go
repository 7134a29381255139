// Package ratelimit implements fixed-window rate limiting for contact
// submissions, keyed by client identifier.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a counted check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Status is a read-only view of a key's current window. ResetAt is the
// zero time when the key has no active window.
type Status struct {
	Count     int
	Remaining int
	ResetAt   time.Time
}

// Store tracks per-key submission counts within a fixed window. Check is
// the counted operation used on the request path; Status never mutates.
// Reset and Clear exist for test isolation and operational cleanup.
type Store interface {
	Check(ctx context.Context, key string) (Result, error)
	Status(ctx context.Context, key string) (Status, error)
	Reset(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
