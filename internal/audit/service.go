package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Appender is the write side of the log.
//
// It MUST be append-only. Only a lifecycle transaction hands one out,
// so nothing else can write entries.
type Appender interface {
	AppendLog(ctx context.Context, e Entry) error
}

// Service stamps and validates entries before they reach an Appender.
type Service struct {
	clock func() time.Time
	newID func() string
}

func NewService() *Service {
	return &Service{clock: time.Now, newID: uuid.NewString}
}

// WithClock returns a copy of s using clock for timestamps.
func (s *Service) WithClock(clock func() time.Time) *Service {
	out := *s
	out.clock = clock
	return &out
}

var ErrInvalidEntry = errors.New("audit: invalid entry")

func (s *Service) Append(ctx context.Context, w Appender, e Entry) (Entry, error) {
	if w == nil {
		return Entry{}, errors.New("audit: appender not configured")
	}
	if e.Number == "" || e.PerformedBy.ID == "" || !e.Action.Valid() {
		return Entry{}, ErrInvalidEntry
	}

	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.clock().UTC().Truncate(time.Microsecond)
	}
	if err := w.AppendLog(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
