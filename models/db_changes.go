package models

import "time"

// DBChange is the change-feed row populated by database triggers on the
// orders and tables collections. The change monitor polls unprocessed rows
// and rebroadcasts them to websocket subscribers, so writes that bypass the
// HTTP layer still reach live clients.
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	TableName  string    `gorm:"type:varchar(50);not null;index:idx_table_action"`
	RecordID   int64     `gorm:"not null"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_table_action"`
	ChangedAt  time.Time `gorm:"not null"`
	Processed  bool      `gorm:"default:false;index:idx_processed"`
}
