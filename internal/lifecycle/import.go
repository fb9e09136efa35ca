package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"number-inventory/internal/apperr"
	"number-inventory/internal/audit"
	"number-inventory/internal/metrics"
	"number-inventory/internal/numbers"
	"number-inventory/internal/rbac"
	"number-inventory/pkg/logger"
)

// Row is one candidate record from bulk input. Empty optional fields take the create defaults.
type Row struct {
	Number      string
	ServiceType string
	SpecialType string
	Status      string
	AllocatedTo string
	Remarks     string

	err error // set when the source could not decode the row
}

// RowSource yields data rows in input order. Ranging over it again starts from the first row.
type RowSource iter.Seq[Row]

// Rows is a RowSource over an in-memory slice.
func Rows(rows ...Row) RowSource {
	return RowSource(slices.Values(rows))
}

// ImportError describes one rejected row. Line counts data rows from 1, header excluded.
type ImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ImportResult struct {
	SuccessCount int           `json:"successCount"`
	FailedCount  int           `json:"failedCount"`
	Errors       []ImportError `json:"errors"`
}

// Import creates one record per row. A bad row is reported and skipped; it never aborts the batch.
// Each row commits on its own, so a duplicate later in the same batch fails like any existing number.
func (e *Engine) Import(ctx context.Context, actor Actor, rows RowSource) (ImportResult, error) {
	if err := rbac.Authorize(actor.Role, rbac.OpImportBulk); err != nil {
		return ImportResult{}, err
	}
	if e.guard != nil {
		release, err := e.guard.Acquire(ctx)
		if err != nil {
			return ImportResult{}, err
		}
		defer release()
	}

	res := ImportResult{Errors: []ImportError{}}
	line := 0
	for row := range rows {
		line++
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := e.importRow(ctx, actor, row); err != nil {
			if errors.Is(err, apperr.ErrStoreUnavailable) {
				return res, err
			}
			res.FailedCount++
			res.Errors = append(res.Errors, ImportError{
				Line:    line,
				Message: fmt.Sprintf("Line %d: %s", line, apperr.Message(err)),
			})
			metrics.ImportRows.WithLabelValues("failed").Inc()
			continue
		}
		res.SuccessCount++
		metrics.ImportRows.WithLabelValues("success").Inc()
	}

	if res.SuccessCount > 0 {
		for _, i := range e.inval {
			i.Invalidate(ctx)
		}
	}
	logger.From(ctx).Info("bulk import finished",
		"success", res.SuccessCount,
		"failed", res.FailedCount,
	)
	return res, nil
}

func (e *Engine) importRow(ctx context.Context, actor Actor, row Row) error {
	if row.err != nil {
		return row.err
	}
	number := strings.TrimSpace(row.Number)
	svc := numbers.ServiceType(strings.TrimSpace(row.ServiceType))
	if number == "" || svc == "" {
		return apperr.Validation("Missing required fields (number, serviceType)")
	}
	if !svc.Valid() {
		return apperr.Validation("Invalid service type %q", string(svc))
	}

	f := numbers.Fields{
		Number:      number,
		ServiceType: svc,
		SpecialType: numbers.SpecialType(row.SpecialType),
		Status:      numbers.Status(row.Status),
		AllocatedTo: row.AllocatedTo,
		Remarks:     row.Remarks,
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		return err
	}

	rec, err := e.create(ctx, actor, f, notesImported)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindDuplicateNumber {
			return apperr.Validation("Number %s already exists", number)
		}
		return err
	}
	metrics.LifecycleActions.WithLabelValues(string(audit.ActionCreated)).Inc()
	logger.From(ctx).Debug("number imported", "number", rec.Number)
	return nil
}
