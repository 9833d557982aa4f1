package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/session"
)

func TestEffectivePriceAddonsOnly(t *testing.T) {
	menu := &models.Menu{
		Price: 4500,
		Options: []models.MenuOption{
			{Name: "Fromage", Price: 500, Type: models.OptionAddon},
			{Name: "Sauce piquante", Price: 200, Type: models.OptionAddon},
		},
	}
	selected := map[string]any{"Fromage": true}
	assert.Equal(t, 5000.0, EffectivePrice(menu, selected, time.Now()))

	selected["Sauce piquante"] = true
	assert.Equal(t, 5200.0, EffectivePrice(menu, selected, time.Now()))
}

func TestEffectivePriceVariantReplacesBase(t *testing.T) {
	menu := &models.Menu{
		Price: 4500,
		Options: []models.MenuOption{
			{Name: "Grande portion", Price: 6000, Type: models.OptionVariant},
			{Name: "Fromage", Price: 500, Type: models.OptionAddon},
		},
	}
	// Variant replaces the base entirely; addons still stack on top.
	selected := map[string]any{"Grande portion": true, "Fromage": true}
	assert.Equal(t, 6500.0, EffectivePrice(menu, selected, time.Now()))
}

func TestEffectivePricePromotionWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	promo := 3000.0
	start := now.Add(-24 * time.Hour)
	end := now.Add(24 * time.Hour)
	menu := &models.Menu{Price: 4500, PromoPrice: &promo, PromoStart: &start, PromoEnd: &end}

	assert.Equal(t, 3000.0, EffectivePrice(menu, nil, now))

	// Outside the window the regular price applies.
	assert.Equal(t, 4500.0, EffectivePrice(menu, nil, end.Add(time.Hour)))

	// A selected variant wins over an active promotion.
	menu.Options = []models.MenuOption{{Name: "XL", Price: 7000, Type: models.OptionVariant}}
	assert.Equal(t, 7000.0, EffectivePrice(menu, map[string]any{"XL": true}, now))
}

func TestCartPriceSnapshotSurvivesCatalogEdit(t *testing.T) {
	db := setupTestDB(t)
	menu := seedMenu(t, db, "Poulet Braisé", 4500)
	table := seedTable(t, db, "5", 4)

	carts := NewCartStore()
	devices := NewDeviceStore()
	svc := NewCartService(db, carts, devices)

	_, err := svc.AddItem("dev-1", menu.ID, 2, nil)
	assert.NoError(t, err)

	// Catalog edit after the line was added.
	assert.NoError(t, db.Model(&models.Menu{}).Where("id = ?", menu.ID).Update("price", 9999).Error)

	order, err := svc.PlaceOrder("dev-1", session.Resolved(table.ID, table.Label))
	assert.NoError(t, err)
	assert.Equal(t, 4500.0, order.Items[0].Price)
	assert.Equal(t, 9000.0, order.Total)
}

func TestPlaceOrderRejectsWholeSubmissionOnUnavailable(t *testing.T) {
	db := setupTestDB(t)
	poulet := seedMenu(t, db, "Poulet Braisé", 4500)
	coca := seedMenu(t, db, "Coca Cola", 1000)
	table := seedTable(t, db, "5", 4)

	carts := NewCartStore()
	devices := NewDeviceStore()
	svc := NewCartService(db, carts, devices)

	_, err := svc.AddItem("dev-1", poulet.ID, 1, nil)
	assert.NoError(t, err)
	_, err = svc.AddItem("dev-1", coca.ID, 2, nil)
	assert.NoError(t, err)

	assert.NoError(t, db.Model(&models.Menu{}).Where("id = ?", poulet.ID).Update("available", false).Error)

	_, err = svc.PlaceOrder("dev-1", session.Resolved(table.ID, table.Label))
	var unavailable *UnavailableItemsError
	assert.True(t, errors.As(err, &unavailable))
	assert.Equal(t, []string{"Poulet Braisé"}, unavailable.Names)

	// The cart is untouched so the customer can edit it.
	assert.Len(t, carts.Lines("dev-1"), 2)
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPlaceOrderMarksTableOccupiedAndTracksActiveOrders(t *testing.T) {
	db := setupTestDB(t)
	menu := seedMenu(t, db, "Poulet Braisé", 4500)
	table := seedTable(t, db, "5", 4)

	carts := NewCartStore()
	devices := NewDeviceStore()
	svc := NewCartService(db, carts, devices)

	_, err := svc.AddItem("dev-1", menu.ID, 1, nil)
	assert.NoError(t, err)
	first, err := svc.PlaceOrder("dev-1", session.Resolved(table.ID, table.Label))
	assert.NoError(t, err)

	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, models.TableOccupied, reloaded.Status)
	assert.NotNil(t, reloaded.SessionStartTime)

	// Cart cleared after placement.
	assert.Empty(t, carts.Lines("dev-1"))

	// A second order in the same session appends, not replaces.
	_, err = svc.AddItem("dev-1", menu.ID, 1, nil)
	assert.NoError(t, err)
	second, err := svc.PlaceOrder("dev-1", session.Resolved(table.ID, table.Label))
	assert.NoError(t, err)

	state := devices.Get("dev-1")
	assert.Equal(t, []uint{first.ID, second.ID}, state.ActiveOrders)
}

func TestPlaceOrderStripsEmptyOptions(t *testing.T) {
	db := setupTestDB(t)
	menu := seedMenu(t, db, "Poulet Braisé", 4500,
		models.MenuOption{Name: "Fromage", Price: 500, Type: models.OptionAddon})
	table := seedTable(t, db, "5", 4)

	svc := NewCartService(db, NewCartStore(), NewDeviceStore())
	_, err := svc.AddItem("dev-1", menu.ID, 1, map[string]any{
		"Fromage": true,
		"note":    "",
		"Sauce":   false,
	})
	assert.NoError(t, err)

	order, err := svc.PlaceOrder("dev-1", session.Resolved(table.ID, table.Label))
	assert.NoError(t, err)

	var item models.OrderItem
	assert.NoError(t, db.First(&item, "order_id = ?", order.ID).Error)
	assert.Equal(t, map[string]any{"Fromage": true}, item.Options)
	assert.Equal(t, 5000.0, item.Price)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "5", 4)
	svc := NewCartService(db, NewCartStore(), NewDeviceStore())

	_, err := svc.PlaceOrder("dev-1", session.Resolved(table.ID, table.Label))
	assert.ErrorIs(t, err, ErrEmptyCart)
}
