package numbers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"number-inventory/internal/apperr"
)

func TestFields_NormalizeDefaults(t *testing.T) {
	f := Fields{Number: "  0711234567 ", ServiceType: "LTE"}
	f.Normalize()
	if f.Number != "0711234567" {
		t.Fatalf("expected trimmed number, got %q", f.Number)
	}
	if f.Status != StatusAvailable || f.SpecialType != SpecialStandard {
		t.Fatalf("unexpected defaults: %+v", f)
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestFields_ValidateRejects(t *testing.T) {
	cases := map[string]Fields{
		"bad pattern":     {Number: "07x1", ServiceType: ServiceLTE},
		"missing service": {Number: "0711"},
		"bad service":     {Number: "0711", ServiceType: "5G"},
		"long allocated":  {Number: "0711", ServiceType: ServiceIPTL, AllocatedTo: strings.Repeat("a", MaxAllocatedTo+1)},
		"long remarks":    {Number: "0711", ServiceType: ServiceIPTL, Remarks: strings.Repeat("a", MaxRemarks+1)},
	}
	for name, f := range cases {
		f.Normalize()
		if err := f.Validate(); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestPatch_ApplyAndValidate(t *testing.T) {
	st := Status("Gone")
	if err := (Patch{Status: &st}).Validate(); err == nil {
		t.Fatalf("expected invalid status to fail")
	}

	alloc := StatusAllocated
	to := " Customer A "
	p := Patch{Status: &alloc, AllocatedTo: &to}
	p.Normalize()
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	r := p.Apply(Record{Number: "0711", Status: StatusAvailable, Remarks: "keep"})
	if r.Status != StatusAllocated || r.AllocatedTo != "Customer A" || r.Remarks != "keep" {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestListQuery_MatchesAndSort(t *testing.T) {
	q := ListQuery{
		ServiceTypes: SplitServiceTypes("LTE, IPTL"),
		Search:       "cust",
	}
	q.Normalize()
	if q.SortBy != "createdAt" || !q.SortDesc || q.Limit != DefaultLimit || q.Page != 1 {
		t.Fatalf("unexpected defaults: %+v", q)
	}

	hit := Record{Number: "1", ServiceType: ServiceIPTL, AllocatedTo: "Customer B"}
	miss := Record{Number: "2", ServiceType: ServiceFTTHCopper, AllocatedTo: "Customer C"}
	if !q.Matches(hit) || q.Matches(miss) {
		t.Fatalf("unexpected match result")
	}

	now := time.Unix(1700000000, 0)
	older := Record{CreatedAt: now}
	newer := Record{CreatedAt: now.Add(time.Minute)}
	if !q.Less(newer, older) {
		t.Fatalf("expected newer first with desc sort")
	}
}

func TestPages(t *testing.T) {
	if Pages(0, 25) != 0 || Pages(25, 25) != 1 || Pages(26, 25) != 2 {
		t.Fatalf("unexpected page math")
	}
}
