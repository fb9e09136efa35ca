package lifecycle

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"number-inventory/internal/apperr"
)

// csvColumns maps lowercased header names to Row fields.
var csvColumns = map[string]func(*Row, string){
	"number":      func(r *Row, v string) { r.Number = v },
	"servicetype": func(r *Row, v string) { r.ServiceType = v },
	"specialtype": func(r *Row, v string) { r.SpecialType = v },
	"status":      func(r *Row, v string) { r.Status = v },
	"allocatedto": func(r *Row, v string) { r.AllocatedTo = v },
	"remarks":     func(r *Row, v string) { r.Remarks = v },
}

// ErrBadHeader means the first CSV row does not name the required columns.
var ErrBadHeader = errors.New("csv header must include number and serviceType columns")

// CSVRows reads header-first CSV into a RowSource. Columns are matched by name,
// case-insensitively; unknown columns are ignored and short rows leave fields empty.
// A record that cannot be parsed becomes a failing row; only a bad header or an
// I/O error fails the whole read.
func CSVRows(r io.Reader) (RowSource, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Rows(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	setters := make([]func(*Row, string), len(header))
	seen := map[string]bool{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if set, ok := csvColumns[key]; ok {
			setters[i] = set
			seen[key] = true
		}
	}
	if !seen["number"] || !seen["servicetype"] {
		return nil, ErrBadHeader
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			rows = append(rows, Row{err: apperr.Validation("Malformed CSV row: %s", perr.Err)})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		var row Row
		for i, v := range rec {
			if i < len(setters) && setters[i] != nil {
				setters[i](&row, strings.TrimSpace(v))
			}
		}
		rows = append(rows, row)
	}
	return Rows(rows...), nil
}
