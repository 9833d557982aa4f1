package services

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/realtime"
	"github.com/restoscan/resto-app/session"
	"github.com/restoscan/resto-app/utils"
)

var ErrNoOrders = errors.New("aucune commande à facturer pour cette table")

// ConsolidationError reports a saga that stopped partway. Completed lists
// the steps that already ran; Compensations lists what an operator (or a
// future reconciliation job) must undo or finish by hand.
type ConsolidationError struct {
	Failed        string
	Completed     []string
	Compensations []string
	Err           error
}

func (e *ConsolidationError) Error() string {
	return fmt.Sprintf("consolidation stopped at %q after [%s]: %v",
		e.Failed, strings.Join(e.Completed, ", "), e.Err)
}

func (e *ConsolidationError) Unwrap() error { return e.Err }

type BillingService struct {
	DB *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{DB: db}
}

// SessionOrders gathers every order belonging to the table's current
// session: created at or after the session epoch, matched by durable id or
// by normalized label, and not cancelled.
func (s *BillingService) SessionOrders(table *models.Table) ([]models.Order, error) {
	start := time.Time{}
	if table.SessionStartTime != nil {
		start = *table.SessionStartTime
	}

	label := session.NormalizeLabel(table.Label)
	var orders []models.Order
	err := s.DB.Preload("Items").
		Where("created_at >= ?", start).
		Where("status <> ?", models.OrderCancelled).
		Where("(table_doc_id = ? OR table_label = ? OR table_label = ?)", table.ID, table.Label, label).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// OptionKey renders an option set canonically: keys sorted, values
// stringified, so the merge identity is order-insensitive.
func OptionKey(options map[string]any) string {
	if len(options) == 0 {
		return ""
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, options[k]))
	}
	return strings.Join(parts, ";")
}

// MergeOrderItems consolidates items across orders: two items merge iff
// name, unit price and the canonical option set all match; quantities sum.
// First-seen order is preserved.
func MergeOrderItems(orders []models.Order) []models.InvoiceItem {
	var merged []models.InvoiceItem
	index := make(map[string]int)

	for _, order := range orders {
		for _, item := range order.Items {
			key := fmt.Sprintf("%s|%.2f|%s", item.Name, item.Price, OptionKey(item.Options))
			if i, ok := index[key]; ok {
				merged[i].Qty += item.Qty
				continue
			}
			index[key] = len(merged)
			merged = append(merged, models.InvoiceItem{
				MenuID:    item.MenuID,
				Name:      item.Name,
				Price:     item.Price,
				Qty:       item.Qty,
				OptionKey: OptionKey(item.Options),
				Options:   item.Options,
			})
		}
	}
	return merged
}

// BuildInvoiceTotals computes the bill figures. Prices are tax-inclusive
// (TTC): tax = subtotal × rate / 100 is a display line only and total stays
// subtotal − discount. This mirrors the documented billing behavior even
// though a separate tax rate setting exists; do not "fix" it here.
func BuildInvoiceTotals(orders []models.Order, taxRate, discount float64) (subtotal, tax, total float64) {
	sub := decimal.Zero
	for _, order := range orders {
		sub = sub.Add(decimal.NewFromFloat(order.Total))
	}
	rate := decimal.NewFromFloat(taxRate)
	taxAmount := sub.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	totalAmount := sub.Sub(decimal.NewFromFloat(discount)).Round(2)

	subtotal, _ = sub.Round(2).Float64()
	tax, _ = taxAmount.Float64()
	total, _ = totalAmount.Float64()
	return subtotal, tax, total
}

// GenerateInvoiceNumber produces INV-<year>-<5 digits>. The digits are
// random and the number is not guaranteed unique; the invoice's uuid
// reference is the unambiguous handle.
func GenerateInvoiceNumber(t time.Time) string {
	return fmt.Sprintf("INV-%d-%05d", t.Year(), rand.Intn(100000))
}

// ConsolidateTable merges all of a table session's orders into one paid
// invoice, then marks the orders paid and frees the table. The sequence is
// an explicit saga: intended writes are computed up front and executed one
// by one; a failure returns a ConsolidationError naming what completed and
// what needs compensation, instead of silently leaving partial state.
func (s *BillingService) ConsolidateTable(tableID uint, paymentMethod, serverName string) (*models.Invoice, error) {
	var table models.Table
	if err := s.DB.First(&table, tableID).Error; err != nil {
		return nil, err
	}

	orders, err := s.SessionOrders(&table)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}

	invoice := s.buildInvoice(orders, paymentMethod, serverName)
	invoice.Type = models.InvoiceTypeTable
	invoice.TableID = &table.ID
	invoice.TableLabel = table.Label

	// Intended writes, in order.
	steps := []struct {
		name       string
		compensate string
		run        func() error
	}{
		{
			name:       "persist invoice",
			compensate: "delete invoice " + invoice.Reference,
			run:        func() error { return s.DB.Create(invoice).Error },
		},
		{
			name:       "mark orders paid",
			compensate: "re-check order statuses for the session",
			run: func() error {
				for i := range orders {
					if err := s.DB.Model(&models.Order{}).Where("id = ?", orders[i].ID).
						Update("status", models.OrderPaid).Error; err != nil {
						return fmt.Errorf("order %d: %w", orders[i].ID, err)
					}
					orders[i].Status = models.OrderPaid
					realtime.BroadcastOrderUpdate(orders[i])
				}
				return nil
			},
		},
		{
			name:       "close table",
			compensate: "free table " + table.Label + " manually",
			run:        func() error { return s.closeTable(&table) },
		},
	}

	var completed []string
	for _, step := range steps {
		if err := step.run(); err != nil {
			var compensations []string
			for _, done := range steps {
				if contains(completed, done.name) {
					compensations = append(compensations, done.compensate)
				}
			}
			cerr := &ConsolidationError{
				Failed:        step.name,
				Completed:     completed,
				Compensations: compensations,
				Err:           err,
			}
			utils.ErrorLogger.Printf("Invoice consolidation for table %s: %v", table.Label, cerr)
			return nil, cerr
		}
		completed = append(completed, step.name)
	}

	realtime.BroadcastInvoiceGenerated(*invoice)
	utils.InfoLogger.Printf("Invoice %s generated for table %s (%d orders, total %.2f)",
		invoice.Number, table.Label, len(orders), invoice.Total)
	return invoice, nil
}

// ConsolidateTakeaway bills a named takeaway customer for explicit orders.
func (s *BillingService) ConsolidateTakeaway(orderIDs []uint, customerName, paymentMethod, serverName string) (*models.Invoice, error) {
	var orders []models.Order
	if err := s.DB.Preload("Items").
		Where("id IN ?", orderIDs).
		Where("status <> ?", models.OrderCancelled).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}

	invoice := s.buildInvoice(orders, paymentMethod, serverName)
	invoice.Type = models.InvoiceTypeTakeaway
	invoice.CustomerName = customerName

	if err := s.DB.Create(invoice).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		if err := s.DB.Model(&models.Order{}).Where("id = ?", orders[i].ID).
			Update("status", models.OrderPaid).Error; err != nil {
			return nil, &ConsolidationError{
				Failed:        "mark orders paid",
				Completed:     []string{"persist invoice"},
				Compensations: []string{"delete invoice " + invoice.Reference},
				Err:           err,
			}
		}
		orders[i].Status = models.OrderPaid
		realtime.BroadcastOrderUpdate(orders[i])
	}

	realtime.BroadcastInvoiceGenerated(*invoice)
	return invoice, nil
}

func (s *BillingService) buildInvoice(orders []models.Order, paymentMethod, serverName string) *models.Invoice {
	var settings models.Settings
	if err := s.DB.First(&settings).Error; err != nil {
		utils.ErrorLogger.Printf("Billing settings missing, invoicing with zero tax rate: %v", err)
	}

	now := time.Now()
	subtotal, tax, total := BuildInvoiceTotals(orders, settings.TaxRate, 0)

	return &models.Invoice{
		Number:            GenerateInvoiceNumber(now),
		Reference:         uuid.New().String(),
		Items:             MergeOrderItems(orders),
		Subtotal:          subtotal,
		Tax:               tax,
		TaxRate:           settings.TaxRate,
		Discount:          0,
		Total:             total,
		Status:            models.InvoicePaid,
		PaymentMethod:     paymentMethod,
		ServerName:        serverName,
		RestaurantName:    settings.RestaurantName,
		RestaurantAddress: settings.Address,
		RestaurantPhone:   settings.Phone,
		CreatedAt:         now,
		PaidAt:            &now,
	}
}

// closeTable ends the session: the table returns to available with
// occupants and any pending service claim cleared. The next scan generates
// a newer epoch, which is what invalidates devices still holding this one.
func (s *BillingService) closeTable(table *models.Table) error {
	table.Status = models.TableAvailable
	table.Occupants = nil
	table.ServiceAcceptedBy = nil
	if err := s.DB.Model(&models.Table{}).Where("id = ?", table.ID).
		Updates(map[string]any{
			"status":              models.TableAvailable,
			"occupants":           nil,
			"service_accepted_by": nil,
		}).Error; err != nil {
		return err
	}
	realtime.BroadcastTableUpdate(*table)
	realtime.BroadcastSessionReset(*table)
	return nil
}
