package lifecycle

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"number-inventory/internal/apperr"
	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
)

func TestImport_IsolatesRowFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing, err := f.engine.Create(ctx, admin, numbers.Fields{Number: "0711", ServiceType: numbers.ServiceLTE, Remarks: "keep"})
	require.NoError(t, err)

	res, err := f.engine.Import(ctx, admin, Rows(
		Row{Number: "0722", ServiceType: "IPTL", SpecialType: "Gold"},
		Row{Number: "0711", ServiceType: "LTE", Remarks: "overwrite?"},
		Row{Number: "", ServiceType: "LTE"},
		Row{Number: "0733", ServiceType: "5G"},
		Row{Number: "0722", ServiceType: "LTE"},
		Row{Number: "07x", ServiceType: "LTE"},
		Row{Number: "0744", ServiceType: "FTTH/Copper", Status: "Reserved"},
	))
	require.NoError(t, err)
	require.Equal(t, 2, res.SuccessCount)
	require.Equal(t, 5, res.FailedCount)
	require.Len(t, res.Errors, 5)

	require.Equal(t, 2, res.Errors[0].Line)
	require.Equal(t, "Line 2: Number 0711 already exists", res.Errors[0].Message)
	require.Equal(t, "Line 3: Missing required fields (number, serviceType)", res.Errors[1].Message)
	require.Equal(t, `Line 4: Invalid service type "5G"`, res.Errors[2].Message)
	require.Equal(t, "Line 5: Number 0722 already exists", res.Errors[3].Message)
	require.Equal(t, 6, res.Errors[4].Line)

	got, err := f.store.GetNumber(ctx, existing.ID)
	require.NoError(t, err)
	require.Equal(t, "keep", got.Remarks)

	rec, ok, err := f.store.FindNumber(ctx, "0744")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, numbers.StatusReserved, rec.Status)
	require.Equal(t, numbers.SpecialStandard, rec.SpecialType)

	logs := f.logs(t, "0722")
	require.Len(t, logs, 1)
	require.Equal(t, audit.ActionCreated, logs[0].Action)
	require.Equal(t, "Number imported from bulk input", logs[0].Notes)
}

func TestImport_PlannerDenied(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Import(context.Background(), planner, Rows(Row{Number: "0711", ServiceType: "LTE"}))
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, ok, err := f.store.FindNumber(context.Background(), "0711")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestImport_GuardRejectsConcurrentRun(t *testing.T) {
	f := newFixture(t)
	guard := NewLocalImportGuard()
	f.engine.WithImportGuard(guard)

	release, err := guard.Acquire(context.Background())
	require.NoError(t, err)

	_, err = f.engine.Import(context.Background(), admin, Rows(Row{Number: "0711", ServiceType: "LTE"}))
	require.ErrorIs(t, err, apperr.ErrConflict)

	release()
	res, err := f.engine.Import(context.Background(), admin, Rows(Row{Number: "0711", ServiceType: "LTE"}))
	require.NoError(t, err)
	require.Equal(t, 1, res.SuccessCount)
	require.Equal(t, 1, f.inval.n)
}

func TestImport_EmptySource(t *testing.T) {
	f := newFixture(t)
	res, err := f.engine.Import(context.Background(), admin, Rows())
	require.NoError(t, err)
	require.Zero(t, res.SuccessCount)
	require.NotNil(t, res.Errors)
	require.Zero(t, f.inval.n)
}

func TestCSVRows(t *testing.T) {
	in := "\ufeffNumber, ServiceType,remarks,extra\n" +
		"0711,LTE,first,x\n" +
		"\n" +
		"0722,IPTL\n"
	src, err := CSVRows(strings.NewReader(in))
	require.NoError(t, err)

	var rows []Row
	for r := range src {
		rows = append(rows, r)
	}
	require.Equal(t, []Row{
		{Number: "0711", ServiceType: "LTE", Remarks: "first"},
		{Number: "0722", ServiceType: "IPTL"},
	}, rows)

	// Ranging again restarts.
	n := 0
	for range src {
		n++
	}
	require.Equal(t, 2, n)
}

func TestCSVRows_RequiresHeaderColumns(t *testing.T) {
	_, err := CSVRows(strings.NewReader("phone,type\n0711,LTE\n"))
	require.ErrorIs(t, err, ErrBadHeader)

	src, err := CSVRows(strings.NewReader(""))
	require.NoError(t, err)
	for range src {
		t.Fatalf("expected no rows")
	}
}

func TestCSVRows_MalformedRowDoesNotAbortImport(t *testing.T) {
	f := newFixture(t)
	src, err := CSVRows(strings.NewReader("number,serviceType\n0711000001,LTE\n07\"11,LTE\n0711000003,IPTL\n"))
	require.NoError(t, err)

	res, err := f.engine.Import(context.Background(), admin, src)
	require.NoError(t, err)
	require.Equal(t, 2, res.SuccessCount)
	require.Equal(t, 1, res.FailedCount)
	require.Equal(t, 2, res.Errors[0].Line)

	for _, n := range []string{"0711000001", "0711000003"} {
		_, found, err := f.store.FindNumber(context.Background(), n)
		require.NoError(t, err)
		require.True(t, found, n)
	}
}

func TestImport_ReportsUndecodableRow(t *testing.T) {
	f := newFixture(t)
	res, err := f.engine.Import(context.Background(), admin, Rows(
		Row{Number: "0711", ServiceType: "LTE"},
		Row{err: apperr.Validation("Malformed CSV row: extraneous data")},
		Row{Number: "0722", ServiceType: "LTE"},
	))
	require.NoError(t, err)
	require.Equal(t, 2, res.SuccessCount)
	require.Equal(t, []ImportError{{Line: 2, Message: "Line 2: Malformed CSV row: extraneous data"}}, res.Errors)
}
