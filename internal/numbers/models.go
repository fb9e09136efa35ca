package numbers

import "time"

// Status is the lifecycle state of a number.
type Status string

const (
	StatusAvailable   Status = "Available"
	StatusAllocated   Status = "Allocated"
	StatusReserved    Status = "Reserved"
	StatusHeld        Status = "Held"
	StatusQuarantined Status = "Quarantined"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusAvailable, StatusAllocated, StatusReserved, StatusHeld, StatusQuarantined}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ServiceType is the technical category of a number. Immutable after creation.
type ServiceType string

const (
	ServiceLTE        ServiceType = "LTE"
	ServiceIPTL       ServiceType = "IPTL"
	ServiceFTTHCopper ServiceType = "FTTH/Copper"
)

var ServiceTypes = []ServiceType{ServiceLTE, ServiceIPTL, ServiceFTTHCopper}

func (s ServiceType) Valid() bool {
	for _, v := range ServiceTypes {
		if s == v {
			return true
		}
	}
	return false
}

// SpecialType is a tiering tag, independent of status.
type SpecialType string

const (
	SpecialElite    SpecialType = "Elite"
	SpecialGold     SpecialType = "Gold"
	SpecialPlatinum SpecialType = "Platinum"
	SpecialSilver   SpecialType = "Silver"
	SpecialStandard SpecialType = "Standard"
)

var SpecialTypes = []SpecialType{SpecialElite, SpecialGold, SpecialPlatinum, SpecialSilver, SpecialStandard}

func (s SpecialType) Valid() bool {
	for _, v := range SpecialTypes {
		if s == v {
			return true
		}
	}
	return false
}

// Record is one inventory entry.
//
// Invariants:
// - Number is unique across all records.
// - ID and ServiceType never change after creation.
type Record struct {
	ID          string      `json:"id" db:"id"`
	Number      string      `json:"number" db:"number"`
	Status      Status      `json:"status" db:"status"`
	ServiceType ServiceType `json:"serviceType" db:"service_type"`
	SpecialType SpecialType `json:"specialType" db:"special_type"`
	AllocatedTo string      `json:"allocatedTo,omitempty" db:"allocated_to"`
	Remarks     string      `json:"remarks,omitempty" db:"remarks"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}
