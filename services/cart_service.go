package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/realtime"
	"github.com/restoscan/resto-app/session"
	"github.com/restoscan/resto-app/utils"
)

var ErrEmptyCart = errors.New("le panier est vide")

// UnavailableItemsError rejects a whole submission: partial orders are not
// allowed, the cart stays untouched so the customer can edit it.
type UnavailableItemsError struct {
	Names []string
}

func (e *UnavailableItemsError) Error() string {
	return "articles indisponibles : " + strings.Join(e.Names, ", ")
}

// CartLine is a priced snapshot. Price, Name and ImageURL are resolved at
// add time and never re-read from the catalog.
type CartLine struct {
	MenuID   uint           `json:"menu_id"`
	Name     string         `json:"name"`
	Price    float64        `json:"price"`
	Qty      int            `json:"qty"`
	Options  map[string]any `json:"options,omitempty"`
	ImageURL string         `json:"image_url"`
}

// CartStore keeps per-device carts in memory; carts are session-scoped
// state, not documents.
type CartStore struct {
	mu    sync.Mutex
	carts map[string][]CartLine
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]CartLine)}
}

func (s *CartStore) Lines(deviceKey string) []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CartLine(nil), s.carts[deviceKey]...)
}

func (s *CartStore) Add(deviceKey string, line CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[deviceKey] = append(s.carts[deviceKey], line)
}

func (s *CartStore) UpdateQty(deviceKey string, index, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[deviceKey]
	if index < 0 || index >= len(lines) || qty < 1 {
		return false
	}
	lines[index].Qty = qty
	return true
}

func (s *CartStore) Remove(deviceKey string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[deviceKey]
	if index < 0 || index >= len(lines) {
		return false
	}
	s.carts[deviceKey] = append(lines[:index], lines[index+1:]...)
	return true
}

func (s *CartStore) Clear(deviceKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, deviceKey)
}

// optionSelected reports whether an option value counts as picked.
// Values are bool|string; free text under "note" never reaches here
// because notes are not option names.
func optionSelected(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "false"
	default:
		return false
	}
}

// EffectivePrice resolves the unit price for a menu item and a set of
// selected options: a selected variant replaces the base price entirely;
// otherwise the base is the promotion price while the promotion window is
// active; selected addons are summed on top.
func EffectivePrice(menu *models.Menu, selected map[string]any, now time.Time) float64 {
	base := decimal.NewFromFloat(menu.Price)
	if menu.PromotionActive(now) {
		base = decimal.NewFromFloat(*menu.PromoPrice)
	}

	addons := decimal.Zero
	for _, opt := range menu.Options {
		v, ok := selected[opt.Name]
		if !ok || !optionSelected(v) {
			continue
		}
		switch opt.Type {
		case models.OptionVariant:
			base = decimal.NewFromFloat(opt.Price)
		case models.OptionAddon:
			addons = addons.Add(decimal.NewFromFloat(opt.Price))
		}
	}

	price, _ := base.Add(addons).Round(2).Float64()
	return price
}

// stripEmptyOptions drops undefined/empty option fields before persisting.
func stripEmptyOptions(options map[string]any) map[string]any {
	if len(options) == 0 {
		return nil
	}
	out := make(map[string]any, len(options))
	for k, v := range options {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
		case bool:
			if !val {
				continue
			}
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type CartService struct {
	DB      *gorm.DB
	Carts   *CartStore
	Devices *DeviceStore
}

func NewCartService(db *gorm.DB, carts *CartStore, devices *DeviceStore) *CartService {
	return &CartService{DB: db, Carts: carts, Devices: devices}
}

// AddItem resolves the effective price against the live catalog and stores
// the snapshot in the device's cart.
func (s *CartService) AddItem(deviceKey string, menuID uint, qty int, options map[string]any) (*CartLine, error) {
	if qty < 1 {
		return nil, fmt.Errorf("quantité invalide : %d", qty)
	}
	var menu models.Menu
	if err := s.DB.Preload("Options").First(&menu, menuID).Error; err != nil {
		return nil, err
	}
	if !menu.Available {
		return nil, &UnavailableItemsError{Names: []string{menu.Name}}
	}

	line := CartLine{
		MenuID:   menu.ID,
		Name:     menu.Name,
		Price:    EffectivePrice(&menu, options, time.Now()),
		Qty:      qty,
		Options:  stripEmptyOptions(options),
		ImageURL: menu.ImageURL,
	}
	s.Carts.Add(deviceKey, line)
	return &line, nil
}

// PlaceOrder turns the device's cart into an immutable order. Every line
// is re-validated against the live availability flag first; one
// unavailable item rejects the whole submission and the cart is left
// untouched. The order itself is the authoritative side effect: marking
// the table occupied afterwards is best-effort.
func (s *CartService) PlaceOrder(deviceKey string, ref session.TableRef) (*models.Order, error) {
	lines := s.Carts.Lines(deviceKey)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var unavailable []string
	for _, line := range lines {
		var menu models.Menu
		if err := s.DB.First(&menu, line.MenuID).Error; err != nil || !menu.Available {
			unavailable = append(unavailable, line.Name)
		}
	}
	if len(unavailable) > 0 {
		return nil, &UnavailableItemsError{Names: unavailable}
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		total = total.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Qty))))
		items = append(items, models.OrderItem{
			MenuID:   line.MenuID,
			Name:     line.Name,
			Price:    line.Price,
			Qty:      line.Qty,
			Options:  stripEmptyOptions(line.Options),
			ImageURL: line.ImageURL,
		})
	}

	totalValue, _ := total.Round(2).Float64()
	order := models.Order{
		TableLabel: ref.Label(),
		Items:      items,
		Total:      totalValue,
		Status:     models.OrderPending,
		UserID:     deviceKey,
	}
	if ref.Resolved() {
		id := ref.ID()
		order.TableDocID = &id
	}

	if err := s.DB.Create(&order).Error; err != nil {
		return nil, err
	}

	if ref.Resolved() {
		s.markTableOccupied(ref.ID(), order.CreatedAt)
	}

	s.Devices.AppendOrder(deviceKey, order.ID)
	s.Carts.Clear(deviceKey)

	realtime.BroadcastOrderUpdate(order)
	utils.InfoLogger.Printf("Order %d placed for table %q (%d lines, total %.2f)",
		order.ID, ref.Label(), len(items), order.Total)
	return &order, nil
}

// OrdersByIDs loads the orders a device placed this session, oldest first.
func (s *CartService) OrdersByIDs(ids []uint) ([]models.Order, error) {
	if len(ids) == 0 {
		return []models.Order{}, nil
	}
	var orders []models.Order
	err := s.DB.Preload("Items").
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// markTableOccupied is a swallowed side effect; a failure here never undoes
// the order. The new epoch is stamped from the order's own creation time,
// never later: the session-order filter is created_at >= epoch, and the
// order that opened the session must pass it.
func (s *CartService) markTableOccupied(tableID uint, openedAt time.Time) {
	var table models.Table
	if err := s.DB.First(&table, tableID).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to load table %d after order placement: %v", tableID, err)
		return
	}
	if table.Status != models.TableAvailable {
		return
	}
	table.Status = models.TableOccupied
	table.SessionStartTime = &openedAt
	if err := s.DB.Save(&table).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to mark table %d occupied: %v", tableID, err)
		return
	}
	realtime.BroadcastTableUpdate(table)
}
