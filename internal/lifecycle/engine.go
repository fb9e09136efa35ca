// Package lifecycle applies number mutations and writes the matching audit entry
// in the same store transaction.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"number-inventory/internal/apperr"
	"number-inventory/internal/audit"
	"number-inventory/internal/metrics"
	"number-inventory/internal/numbers"
	"number-inventory/internal/rbac"
	"number-inventory/internal/store"
	"number-inventory/pkg/logger"
)

const (
	notesCreated  = "Number created"
	notesDeleted  = "Number deleted from system"
	notesImported = "Number imported from bulk input"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role rbac.Role
}

// Invalidator is told about every committed write, e.g. to drop cached stats.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Engine struct {
	store store.Store
	audit *audit.Service
	guard ImportGuard
	inval []Invalidator

	clock func() time.Time
	newID func() string
}

func NewEngine(s store.Store, auditSvc *audit.Service) *Engine {
	return &Engine{
		store: s,
		audit: auditSvc,
		clock: time.Now,
		newID: uuid.NewString,
	}
}

// WithClock overrides time.Now (tests).
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	if clock != nil {
		e.clock = clock
	}
	return e
}

func (e *Engine) WithImportGuard(g ImportGuard) *Engine {
	e.guard = g
	return e
}

func (e *Engine) WithInvalidator(i Invalidator) *Engine {
	if i != nil {
		e.inval = append(e.inval, i)
	}
	return e
}

func (e *Engine) now() time.Time {
	return e.clock().UTC().Truncate(time.Microsecond)
}

// Create adds a number and logs Created.
func (e *Engine) Create(ctx context.Context, actor Actor, f numbers.Fields) (numbers.Record, error) {
	if err := rbac.Authorize(actor.Role, rbac.OpCreate); err != nil {
		return numbers.Record{}, err
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		return numbers.Record{}, err
	}

	rec, err := e.create(ctx, actor, f, notesCreated)
	if err != nil {
		return numbers.Record{}, err
	}
	e.committed(ctx, audit.ActionCreated, rec.Number)
	return rec, nil
}

func (e *Engine) create(ctx context.Context, actor Actor, f numbers.Fields, notes string) (numbers.Record, error) {
	now := e.now()
	rec := numbers.Record{
		ID:          e.newID(),
		Number:      f.Number,
		Status:      f.Status,
		ServiceType: f.ServiceType,
		SpecialType: f.SpecialType,
		AllocatedTo: f.AllocatedTo,
		Remarks:     f.Remarks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := e.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, exists, err := tx.FindNumber(ctx, rec.Number); err != nil {
			return err
		} else if exists {
			return apperr.DuplicateNumber(rec.Number)
		}
		if err := tx.InsertNumber(ctx, rec); err != nil {
			return err
		}
		_, err := e.audit.Append(ctx, tx, audit.Entry{
			Number:      rec.Number,
			Action:      audit.ActionCreated,
			PerformedBy: audit.Actor{ID: actor.ID},
			Timestamp:   now,
			NewState:    audit.FullSnapshot(rec),
			Notes:       notes,
		})
		return err
	})
	if err != nil {
		return numbers.Record{}, err
	}
	return rec, nil
}

// Update applies p to the record and logs the derived action.
// number and serviceType cannot change through this path.
func (e *Engine) Update(ctx context.Context, actor Actor, id string, p numbers.Patch) (numbers.Record, audit.Action, error) {
	if err := rbac.Authorize(actor.Role, rbac.OpUpdate); err != nil {
		return numbers.Record{}, "", err
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return numbers.Record{}, "", err
	}

	var (
		next   numbers.Record
		action audit.Action
	)
	err := e.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		prev, err := tx.GetNumber(ctx, id)
		if err != nil {
			return err
		}
		now := e.now()
		next = p.Apply(prev)
		next.UpdatedAt = now
		action = DeriveAction(prev.Status, p)

		if err := tx.UpdateNumber(ctx, next); err != nil {
			return err
		}
		_, err = e.audit.Append(ctx, tx, audit.Entry{
			Number:        next.Number,
			Action:        action,
			PerformedBy:   audit.Actor{ID: actor.ID},
			Timestamp:     now,
			PreviousState: audit.FullSnapshot(prev),
			NewState:      audit.FullSnapshot(next),
			Notes:         "Number " + strings.ToLower(string(action)),
		})
		return err
	})
	if err != nil {
		return numbers.Record{}, "", err
	}
	e.committed(ctx, action, next.Number)
	return next, action, nil
}

// Delete logs Deleted and then removes the record, both in one transaction.
func (e *Engine) Delete(ctx context.Context, actor Actor, id string) error {
	if err := rbac.Authorize(actor.Role, rbac.OpDelete); err != nil {
		return err
	}

	var number string
	err := e.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		prev, err := tx.GetNumber(ctx, id)
		if err != nil {
			return err
		}
		number = prev.Number
		if _, err := e.audit.Append(ctx, tx, audit.Entry{
			Number:        prev.Number,
			Action:        audit.ActionDeleted,
			PerformedBy:   audit.Actor{ID: actor.ID},
			Timestamp:     e.now(),
			PreviousState: audit.DeletionSnapshot(prev),
			Notes:         notesDeleted,
		}); err != nil {
			return err
		}
		return tx.DeleteNumber(ctx, id)
	})
	if err != nil {
		return err
	}
	e.committed(ctx, audit.ActionDeleted, number)
	return nil
}

func (e *Engine) committed(ctx context.Context, action audit.Action, number string) {
	metrics.LifecycleActions.WithLabelValues(string(action)).Inc()
	for _, i := range e.inval {
		i.Invalidate(ctx)
	}
	logger.From(ctx).Info("number mutated", "action", string(action), "number", number)
}
