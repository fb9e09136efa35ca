package audit

import (
	"time"

	"number-inventory/internal/numbers"
)

// Entry is an immutable, append-only log record of one number mutation.
//
// Invariants:
// - Entries are never updated or deleted.
// - Number is a copy of the value at the time of the action, so it survives deletion of the record.
type Entry struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Action      Action    `json:"action"`
	PerformedBy Actor     `json:"performedBy"`
	Timestamp   time.Time `json:"timestamp"`

	PreviousState *Snapshot `json:"previousState,omitempty"`
	NewState      *Snapshot `json:"newState,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Actor identifies who performed an action. Username is filled on read.
type Actor struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type Action string

const (
	ActionCreated       Action = "Created"
	ActionAllocated     Action = "Allocated"
	ActionReleased      Action = "Released"
	ActionReserved      Action = "Reserved"
	ActionStatusChanged Action = "Status Changed"
	ActionDeleted       Action = "Deleted"
)

var Actions = []Action{ActionCreated, ActionAllocated, ActionReleased, ActionReserved, ActionStatusChanged, ActionDeleted}

func (a Action) Valid() bool {
	for _, v := range Actions {
		if a == v {
			return true
		}
	}
	return false
}

// Snapshot is a subset of a number record captured before or after a mutation.
// Empty fields are omitted so deletion snapshots stay partial.
type Snapshot struct {
	ID          string              `json:"id,omitempty"`
	Number      string              `json:"number,omitempty"`
	Status      numbers.Status      `json:"status,omitempty"`
	ServiceType numbers.ServiceType `json:"serviceType,omitempty"`
	SpecialType numbers.SpecialType `json:"specialType,omitempty"`
	AllocatedTo string              `json:"allocatedTo,omitempty"`
	Remarks     string              `json:"remarks,omitempty"`
	CreatedAt   *time.Time          `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time          `json:"updatedAt,omitempty"`
}

// FullSnapshot captures every field of r.
func FullSnapshot(r numbers.Record) *Snapshot {
	created, updated := r.CreatedAt, r.UpdatedAt
	return &Snapshot{
		ID:          r.ID,
		Number:      r.Number,
		Status:      r.Status,
		ServiceType: r.ServiceType,
		SpecialType: r.SpecialType,
		AllocatedTo: r.AllocatedTo,
		Remarks:     r.Remarks,
		CreatedAt:   &created,
		UpdatedAt:   &updated,
	}
}

// DeletionSnapshot keeps only the fields worth reviewing after a record is purged.
func DeletionSnapshot(r numbers.Record) *Snapshot {
	return &Snapshot{
		Status:      r.Status,
		ServiceType: r.ServiceType,
		SpecialType: r.SpecialType,
		AllocatedTo: r.AllocatedTo,
		Remarks:     r.Remarks,
	}
}
