package models

import "time"

// Invoice types and statuses.
const (
	InvoiceTypeTable    = "table"
	InvoiceTypeTakeaway = "takeaway"

	InvoicePending   = "pending"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"

	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentMobile = "mobile"
)

type Invoice struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Number follows INV-<year>-<5 digits>; it is generated randomly and is
	// not guaranteed unique. Reference is a uuid kept for unambiguous lookup.
	Number    string `gorm:"type:varchar(20);not null;index" json:"number"`
	Reference string `gorm:"type:varchar(40);not null;uniqueIndex" json:"reference"`
	Type      string `gorm:"type:varchar(10);not null;default:'table'" json:"type"`

	TableID      *uint  `gorm:"index" json:"table_id,omitempty"`
	TableLabel   string `gorm:"type:varchar(50)" json:"table_label,omitempty"`
	CustomerName string `gorm:"type:varchar(100)" json:"customer_name,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	Subtotal float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	// Tax is informational: prices are treated as tax-inclusive (TTC) and
	// Total stays subtotal minus discount. See BuildInvoiceTotals.
	Tax           float64 `gorm:"type:decimal(12,2);not null" json:"tax"`
	TaxRate       float64 `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	Discount      float64 `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total         float64 `gorm:"type:decimal(12,2);not null" json:"total"`
	Status        string  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentMethod string  `gorm:"type:varchar(10);not null;default:'cash'" json:"payment_method"`
	ServerName    string  `gorm:"type:varchar(100)" json:"server_name"`

	// Snapshot of the restaurant settings at invoice time.
	RestaurantName    string `gorm:"type:varchar(255)" json:"restaurant_name"`
	RestaurantAddress string `gorm:"type:varchar(255)" json:"restaurant_address"`
	RestaurantPhone   string `gorm:"type:varchar(50)" json:"restaurant_phone"`

	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

// InvoiceItem is a consolidated order line: identical items across the
// session's orders are merged into one row with summed quantity.
type InvoiceItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	InvoiceID uint    `gorm:"not null;index" json:"invoice_id"`
	MenuID    uint    `gorm:"not null" json:"menu_id"`
	Name      string  `gorm:"type:varchar(255);not null" json:"name"`
	Price     float64 `gorm:"type:decimal(12,2);not null" json:"price"`
	Qty       int     `gorm:"not null" json:"qty"`
	// OptionKey is the canonical, order-insensitive rendering of the item's
	// option set used as the merge identity.
	OptionKey string         `gorm:"type:varchar(512)" json:"-"`
	Options   map[string]any `gorm:"serializer:json" json:"options,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}
