package models

import "time"

// Option types. A variant replaces the base price entirely; an addon
// is added on top of it.
const (
	OptionAddon   = "addon"
	OptionVariant = "variant"
)

type MenuOption struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MenuID      uint      `gorm:"not null;index" json:"menu_id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Price       float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	Type        string    `gorm:"type:varchar(10);not null;default:'addon'" json:"type"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"type:varchar(255)" json:"image_url"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
