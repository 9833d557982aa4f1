package models

import "time"

// ScanLog records one accepted QR scan. The resolver's cooldown throttles
// how often rows are written per label, so rapid re-scans from a camera
// auto-refresh do not pile up here.
type ScanLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TableID   *uint     `gorm:"index" json:"table_id,omitempty"`
	Label     string    `gorm:"type:varchar(50);not null;index" json:"label"`
	DeviceKey string    `gorm:"type:varchar(100);not null" json:"device_key"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
