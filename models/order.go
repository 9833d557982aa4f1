package models

import "time"

// Order statuses. Items and Total are immutable once the order exists;
// only Status moves, and paid is reachable only through invoice consolidation.
const (
	OrderPending   = "pending"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderServed    = "served"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
)

type Order struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// TableLabel is the human-facing label the order was placed against.
	// TableDocID is the durable table reference; it is nil when the order
	// was placed in degraded mode against a placeholder identity.
	TableLabel string      `gorm:"type:varchar(50);not null;index" json:"table"`
	TableDocID *uint       `gorm:"index" json:"table_doc_id,omitempty"`
	Items      []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Total      float64     `gorm:"type:decimal(12,2);not null" json:"total"`
	Status     string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	// UserID is the device key of the anonymous customer or a staff id.
	UserID    string    `gorm:"type:varchar(100)" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
