package models

import "time"

// OrderItem is a priced snapshot of a menu item at cart-add time.
// Price, Name and ImageURL never track later catalog edits.
type OrderItem struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	OrderID uint    `gorm:"not null;index" json:"order_id"`
	Order   Order   `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID  uint    `gorm:"not null" json:"menu_id"`
	Name    string  `gorm:"type:varchar(255);not null" json:"name"`
	Price   float64 `gorm:"type:decimal(12,2);not null" json:"price"`
	Qty     int     `gorm:"not null" json:"qty"`
	// Options maps option name -> bool|string; the key "note" is reserved
	// for customer free text.
	Options   map[string]any `gorm:"serializer:json" json:"options,omitempty"`
	ImageURL  string         `gorm:"type:varchar(255)" json:"image_url"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}
