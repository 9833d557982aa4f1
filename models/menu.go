package models

import "time"

type Menu struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	CategoryID    uint         `gorm:"not null;index" json:"category_id"`
	Category      MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name          string       `gorm:"type:varchar(255);not null" json:"name"`
	Description   string       `gorm:"type:text" json:"description"`
	Price         float64      `gorm:"type:decimal(12,2);not null" json:"price"`
	ImageURL      string       `gorm:"type:varchar(255)" json:"image_url"`
	Available     bool         `gorm:"not null;default:true" json:"available"`
	Featured      bool         `gorm:"not null;default:false" json:"featured"`
	FeaturedOrder int          `gorm:"not null;default:0" json:"featured_order"`
	Options       []MenuOption `gorm:"foreignKey:MenuID" json:"options"`
	// Promotion window; PromoPrice is the effective base price while
	// now is within [PromoStart, PromoEnd].
	PromoPrice *float64   `gorm:"type:decimal(12,2)" json:"promo_price,omitempty"`
	PromoStart *time.Time `json:"promo_start,omitempty"`
	PromoEnd   *time.Time `json:"promo_end,omitempty"`
	// Recommendations holds related menu ids.
	Recommendations []uint    `gorm:"serializer:json" json:"recommendations,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// PromotionActive reports whether the promotion price applies at t.
func (m *Menu) PromotionActive(t time.Time) bool {
	if m.PromoPrice == nil || m.PromoStart == nil || m.PromoEnd == nil {
		return false
	}
	return !t.Before(*m.PromoStart) && !t.After(*m.PromoEnd)
}
