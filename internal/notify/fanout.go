package notify

import (
	"context"
	"log/slog"
)

// Fanout delivers through a primary sender and mirrors to secondaries.
// Only the primary's error decides the submission outcome; secondary
// failures are logged and swallowed.
type Fanout struct {
	primary     Sender
	secondaries []Sender
	log         *slog.Logger
}

func NewFanout(log *slog.Logger, primary Sender, secondaries ...Sender) *Fanout {
	if log == nil {
		log = slog.Default()
	}
	return &Fanout{primary: primary, secondaries: secondaries, log: log}
}

func (f *Fanout) Send(ctx context.Context, msg Message) error {
	err := f.primary.Send(ctx, msg)
	for _, s := range f.secondaries {
		if serr := s.Send(ctx, msg); serr != nil {
			f.log.Warn("secondary notification failed", "err", serr)
		}
	}
	return err
}
