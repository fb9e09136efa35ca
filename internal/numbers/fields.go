package numbers

import (
	"strings"

	"number-inventory/internal/validate"
)

// Length limits on free text.
const (
	MaxAllocatedTo = 100
	MaxRemarks     = 500
)

// Fields is the input to create.
type Fields struct {
	Number      string      `json:"number" validate:"required,phone"`
	ServiceType ServiceType `json:"serviceType" validate:"required,oneof=LTE IPTL FTTH/Copper"`
	SpecialType SpecialType `json:"specialType" validate:"omitempty,oneof=Elite Gold Platinum Silver Standard"`
	Status      Status      `json:"status" validate:"omitempty,oneof=Available Allocated Reserved Held Quarantined"`
	AllocatedTo string      `json:"allocatedTo" validate:"max=100"`
	Remarks     string      `json:"remarks" validate:"max=500"`
}

// Normalize trims text and applies defaults.
func (f *Fields) Normalize() {
	f.Number = strings.TrimSpace(f.Number)
	f.ServiceType = ServiceType(strings.TrimSpace(string(f.ServiceType)))
	f.SpecialType = SpecialType(strings.TrimSpace(string(f.SpecialType)))
	f.Status = Status(strings.TrimSpace(string(f.Status)))
	f.AllocatedTo = strings.TrimSpace(f.AllocatedTo)
	f.Remarks = strings.TrimSpace(f.Remarks)
	if f.SpecialType == "" {
		f.SpecialType = SpecialStandard
	}
	if f.Status == "" {
		f.Status = StatusAvailable
	}
}

func (f Fields) Validate() error {
	return validate.Struct(f)
}

// Patch is the input to update. Nil fields are left untouched.
// Number, ServiceType and SpecialType are fixed once created; a specialType
// key in an update body is ignored.
type Patch struct {
	Status      *Status `json:"status,omitempty" validate:"omitempty,oneof=Available Allocated Reserved Held Quarantined"`
	AllocatedTo *string `json:"allocatedTo,omitempty" validate:"omitempty,max=100"`
	Remarks     *string `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

func (p *Patch) Normalize() {
	if p.AllocatedTo != nil {
		s := strings.TrimSpace(*p.AllocatedTo)
		p.AllocatedTo = &s
	}
	if p.Remarks != nil {
		s := strings.TrimSpace(*p.Remarks)
		p.Remarks = &s
	}
}

func (p Patch) Validate() error {
	return validate.Struct(p)
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Status == nil && p.AllocatedTo == nil && p.Remarks == nil
}

// Apply returns r with the patch applied. UpdatedAt is left to the caller.
func (p Patch) Apply(r Record) Record {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.AllocatedTo != nil {
		r.AllocatedTo = *p.AllocatedTo
	}
	if p.Remarks != nil {
		r.Remarks = *p.Remarks
	}
	return r
}
