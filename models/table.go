package models

import "time"

// Table statuses. A table carries exactly one status at a time;
// needs_service and requesting_bill overwrite each other (last call wins).
const (
	TableAvailable      = "available"
	TableOccupied       = "occupied"
	TableNeedsService   = "needs_service"
	TableRequestingBill = "requesting_bill"
)

type Table struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Label  string `gorm:"type:varchar(50);not null;uniqueIndex" json:"label"`
	Seats  int    `gorm:"not null;default:4" json:"seats"`
	Status string `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	// Scans is a monotonic counter of QR scans logged against this table.
	Scans     int  `gorm:"not null;default:0" json:"scans"`
	Occupants *int `json:"occupants,omitempty"`
	// SessionStartTime marks the current session epoch. It advances every
	// time the table goes available -> occupied; devices compare it against
	// the epoch they last observed to detect a forced reset.
	SessionStartTime  *time.Time `json:"session_start_time,omitempty"`
	ServiceAcceptedBy *string    `gorm:"type:varchar(100)" json:"service_accepted_by,omitempty"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null" json:"updated_at"`
}
