package models

import "time"

type Review struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MenuID        uint      `gorm:"not null;index" json:"item_id"`
	OrderID       uint      `gorm:"not null;index" json:"order_id"`
	TableID       *uint     `gorm:"index" json:"table_id,omitempty"`
	Rating        int       `gorm:"not null" json:"rating"`
	Comment       string    `gorm:"type:text" json:"comment"`
	ItemName      string    `gorm:"type:varchar(255)" json:"item_name"`
	CustomerName  string    `gorm:"type:varchar(100)" json:"customer_name"`
	CustomerPhone string    `gorm:"type:varchar(50)" json:"customer_phone"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
