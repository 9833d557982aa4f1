package models

import "time"

// Settings is a singleton row holding the restaurant profile and billing
// parameters; invoices snapshot these values at consolidation time.
type Settings struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RestaurantName string    `gorm:"type:varchar(255);not null" json:"restaurant_name"`
	Address        string    `gorm:"type:varchar(255)" json:"address"`
	Phone          string    `gorm:"type:varchar(50)" json:"phone"`
	TaxRate        float64   `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	Currency       string    `gorm:"type:varchar(10);not null;default:'FCFA'" json:"currency"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
