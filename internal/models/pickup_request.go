package models

import (
	"time"

	"gorm.io/datatypes"
)

type PickupStatus string

const (
	PickupStatusPending  PickupStatus = "pending"
	PickupStatusApproved PickupStatus = "approved"
	PickupStatusRejected PickupStatus = "rejected"
)

// PickupRequest is a "cambio": a parent authorizing someone else to pick
// up their child. The cambios badge counts pending requests, so the tab
// uses domain status rather than read markers.
type PickupRequest struct {
	BaseModel
	StudentID      string         `gorm:"index;not null" json:"student_id"`
	RequestedBy    string         `gorm:"index;not null" json:"requested_by"`
	PickupPerson   string         `gorm:"not null" json:"pickup_person"`
	PickupDocument string         `json:"pickup_document"`
	PickupDate     time.Time      `gorm:"index;not null" json:"pickup_date"`
	Reason         string         `json:"reason"`
	Status         PickupStatus   `gorm:"type:varchar(16);index;not null;default:'pending'" json:"status"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	ResolvedBy     string         `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
}
