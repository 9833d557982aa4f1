package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/session"
)

func newResolver(db *gorm.DB) (*SessionResolver, *CartStore, *DeviceStore) {
	carts := NewCartStore()
	devices := NewDeviceStore()
	return NewSessionResolver(db, session.NewScanRegistry(), devices, carts), carts, devices
}

func TestResolveTakeawayWhenNoLabel(t *testing.T) {
	db := setupTestDB(t)
	resolver, carts, _ := newResolver(db)

	carts.Add("dev-1", CartLine{MenuID: 1, Name: "Poulet Braisé", Price: 4500, Qty: 1})

	res, err := resolver.Resolve("dev-1", "")
	assert.NoError(t, err)
	assert.Equal(t, "takeaway", res.TableID)
	assert.Equal(t, "À emporter", res.Label)

	// Stale dine-in state is cleared; no silent continuation.
	assert.Empty(t, carts.Lines("dev-1"))
}

func TestResolveNormalizesAndFallsBackToPrefixedLabel(t *testing.T) {
	db := setupTestDB(t)
	seedTable(t, db, "Table 7", 4)
	resolver, _, _ := newResolver(db)

	res, err := resolver.Resolve("dev-1", "Table 7")
	assert.NoError(t, err)
	assert.True(t, res.Ref.Resolved())
	assert.Equal(t, "7", res.Label)
	assert.True(t, res.NewSession)
}

func TestResolveDegradesToPlaceholderOnMiss(t *testing.T) {
	db := setupTestDB(t)
	resolver, _, _ := newResolver(db)

	res, err := resolver.Resolve("dev-1", "99")
	assert.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.False(t, res.AccessDenied)
	assert.Equal(t, "temp_99", res.TableID)

	// No scan-log row, no occupancy change in degraded mode.
	var count int64
	db.Model(&models.ScanLog{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestResolveFirstScanStartsSession(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "5", 4)
	resolver, _, devices := newResolver(db)

	res, err := resolver.Resolve("dev-1", "5")
	assert.NoError(t, err)
	assert.True(t, res.NewSession)
	assert.Equal(t, models.TableOccupied, res.Table.Status)
	assert.Equal(t, 1, *res.Table.Occupants)
	assert.NotNil(t, res.Table.SessionStartTime)

	// Scan counter bumped, one log row.
	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, 1, reloaded.Scans)

	state := devices.Get("dev-1")
	assert.True(t, state.Ref.Resolved())
	assert.NotNil(t, state.Epoch)
}

func TestRescanWithinCooldownIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "5", 4)
	resolver, _, _ := newResolver(db)

	first, err := resolver.Resolve("dev-1", "5")
	assert.NoError(t, err)
	assert.True(t, first.NewSession)

	second, err := resolver.Resolve("dev-1", "5")
	assert.NoError(t, err)
	assert.False(t, second.NewSession)

	var logs int64
	db.Model(&models.ScanLog{}).Count(&logs)
	assert.Equal(t, int64(1), logs)

	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, 1, *reloaded.Occupants)
	assert.Equal(t, 1, reloaded.Scans)
}

func TestResolveCapacityDenied(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "5", 2)
	two := 2
	table.Occupants = &two
	table.Status = models.TableOccupied
	assert.NoError(t, db.Save(&table).Error)

	resolver, _, devices := newResolver(db)
	res, err := resolver.Resolve("dev-9", "5")
	assert.NoError(t, err)
	assert.True(t, res.AccessDenied)
	assert.NotEmpty(t, res.Message)

	// Local state reverted to neutral; the scan stays unprocessed so the
	// next attempt retries.
	state := devices.Get("dev-9")
	assert.False(t, state.Ref.Resolved())
	assert.False(t, resolver.Registry.Processed("dev-9", session.Resolved(table.ID, "5")))

	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, 2, *reloaded.Occupants)
}

func TestCheckSessionStateDetectsReset(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "5", 4)
	resolver, carts, devices := newResolver(db)

	_, err := resolver.Resolve("dev-1", "5")
	assert.NoError(t, err)
	carts.Add("dev-1", CartLine{MenuID: 1, Name: "Poulet Braisé", Price: 4500, Qty: 1})

	// Same epoch: nothing to do.
	state, err := resolver.CheckSessionState("dev-1")
	assert.NoError(t, err)
	assert.False(t, state.Reset)

	// Staff close the table and a new party scans: epoch advances.
	newEpoch := time.Now().Add(time.Minute)
	assert.NoError(t, db.Model(&models.Table{}).Where("id = ?", table.ID).
		Update("session_start_time", newEpoch).Error)

	state, err = resolver.CheckSessionState("dev-1")
	assert.NoError(t, err)
	assert.True(t, state.Reset)
	assert.Equal(t, "À emporter", state.Label)
	assert.Empty(t, carts.Lines("dev-1"))

	dev := devices.Get("dev-1")
	assert.True(t, dev.Ref.Takeaway())
}
