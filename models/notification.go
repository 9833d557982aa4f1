package models

import "time"

// Notification keeps a persisted trail of service requests and order events
// so staff devices that reconnect can catch up on what the hub broadcast.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StaffID   *uint     `json:"staff_id,omitempty"`
	Title     *string   `gorm:"type:varchar(100)" json:"title,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	TableID   *uint     `gorm:"index" json:"table_id,omitempty"`
	OrderID   *uint     `gorm:"index" json:"order_id,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
