package lifecycle

import (
	"number-inventory/internal/audit"
	"number-inventory/internal/numbers"
)

// DeriveAction classifies an update, first match wins:
//  1. the patch sets Allocated
//  2. the record leaves Allocated (Released)
//  3. the patch sets Reserved
//  4. anything else is "Status Changed", including edits that leave status alone.
func DeriveAction(previous numbers.Status, p numbers.Patch) audit.Action {
	next := previous
	if p.Status != nil {
		next = *p.Status
	}

	switch {
	case p.Status != nil && *p.Status == numbers.StatusAllocated:
		return audit.ActionAllocated
	case previous == numbers.StatusAllocated && next != numbers.StatusAllocated:
		return audit.ActionReleased
	case p.Status != nil && *p.Status == numbers.StatusReserved:
		return audit.ActionReserved
	default:
		return audit.ActionStatusChanged
	}
}
