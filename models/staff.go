package models

import "time"

// Staff roles.
const (
	RoleAdmin   = "admin"
	RoleServer  = "server"
	RoleKitchen = "kitchen"
	RoleManager = "manager"
)

type StaffMember struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
	Role string `gorm:"type:varchar(20);not null" json:"role"`
	// PIN stores the bcrypt hash of the 4-digit login code.
	PIN       string    `gorm:"type:varchar(255);not null" json:"-"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Avatar    string    `gorm:"type:varchar(255)" json:"avatar"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
