// Package store defines the persistence contracts shared by the in-memory and SQL backends.
package store

import (
	"context"
	"time"

	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
	"number-inventory/internal/users"
)

// NumberReader reads number records. Missing records are apperr NotFound.
type NumberReader interface {
	GetNumber(ctx context.Context, id string) (numbers.Record, error)
	FindNumber(ctx context.Context, value string) (numbers.Record, bool, error)
	ListNumbers(ctx context.Context, q numbers.ListQuery) ([]numbers.Record, int, error)
}

// NumberWriter mutates number records.
// InsertNumber returns apperr DuplicateNumber when the value already exists.
type NumberWriter interface {
	InsertNumber(ctx context.Context, r numbers.Record) error
	UpdateNumber(ctx context.Context, r numbers.Record) error
	DeleteNumber(ctx context.Context, id string) error
}

// Tx is the unit of work handed to WithTx. The log can only be written through it,
// so a log entry always commits together with its mutation.
type Tx interface {
	NumberReader
	NumberWriter
	audit.Appender
}

// LogReader reads the audit log. PerformedBy.Username is filled from users.
type LogReader interface {
	QueryLogs(ctx context.Context, q audit.Query) ([]audit.Entry, int, error)
	// CountLogs counts entries at or after since; zero since counts everything.
	CountLogs(ctx context.Context, since time.Time) (int, error)
	CountLogsByAction(ctx context.Context, since time.Time) (map[audit.Action]int, error)
	// LogActivity returns lightweight rows at or after since, oldest first.
	LogActivity(ctx context.Context, since time.Time) ([]Activity, error)
}

// Activity is one log entry reduced to what trend and leaderboard views need.
type Activity struct {
	Action      audit.Action `db:"action"`
	PerformedBy string       `db:"performed_by"`
	Username    string       `db:"username"`
	Timestamp   time.Time    `db:"logged_at"`
}

// Facet is the number count for one (service type, special type, status) combination.
type Facet struct {
	ServiceType numbers.ServiceType `db:"service_type"`
	SpecialType numbers.SpecialType `db:"special_type"`
	Status      numbers.Status      `db:"status"`
	Count       int                 `db:"n"`
}

// StatsReader feeds the stats aggregator.
type StatsReader interface {
	NumberFacets(ctx context.Context) ([]Facet, error)
}

// Store is everything the services need from a backend.
type Store interface {
	NumberReader
	LogReader
	StatsReader
	users.Repository

	// WithTx runs fn atomically. If fn returns an error nothing it wrote is kept.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}
