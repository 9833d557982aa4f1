package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/realtime"
	"github.com/restoscan/resto-app/session"
	"github.com/restoscan/resto-app/utils"
)

// CapacityDeniedMessage is the customer-facing text shown on the blocking
// screen when the table is full.
const CapacityDeniedMessage = "Cette table est complète, veuillez scanner une autre table"

// ScanResult is what a device gets back from resolving a scanned label.
type ScanResult struct {
	Ref          session.TableRef `json:"-"`
	TableID      string           `json:"table_id"`
	Label        string           `json:"label"`
	Table        *models.Table    `json:"table,omitempty"`
	NewSession   bool             `json:"new_session"`
	Degraded     bool             `json:"degraded"`
	AccessDenied bool             `json:"access_denied"`
	Message      string           `json:"message,omitempty"`
}

// SessionStateResult reports whether the device's session is still the
// table's current one.
type SessionStateResult struct {
	Reset bool             `json:"reset"`
	Ref   session.TableRef `json:"-"`
	Label string           `json:"label"`
}

// SessionResolver coordinates QR scans, anonymous sessions and the table
// occupancy counter. Resolution never hard-fails the ordering flow: a
// lookup failure degrades to a placeholder identity; only an explicit
// capacity denial blocks ordering.
type SessionResolver struct {
	DB       *gorm.DB
	Registry *session.ScanRegistry
	Devices  *DeviceStore
	Carts    *CartStore
}

func NewSessionResolver(db *gorm.DB, registry *session.ScanRegistry, devices *DeviceStore, carts *CartStore) *SessionResolver {
	return &SessionResolver{DB: db, Registry: registry, Devices: devices, Carts: carts}
}

// Resolve handles one scan. An empty rawLabel forces takeaway mode and
// clears any stale dine-in state so a previous session cannot silently
// continue without a rescan.
func (r *SessionResolver) Resolve(deviceKey, rawLabel string) (*ScanResult, error) {
	if rawLabel == "" {
		r.resetDevice(deviceKey)
		ref := session.Takeaway()
		return &ScanResult{Ref: ref, TableID: ref.WireID(), Label: ref.Label()}, nil
	}

	label := session.NormalizeLabel(rawLabel)

	// Skip re-resolution when the device already holds a durable id for
	// this exact label.
	state := r.Devices.Get(deviceKey)
	if state.Ref.Resolved() && state.Ref.Label() == label {
		table, err := r.loadTable(state.Ref.ID())
		if err == nil {
			return &ScanResult{Ref: state.Ref, TableID: state.Ref.WireID(), Label: label, Table: table}, nil
		}
	}

	ref, table := r.lookup(label)
	if !ref.Resolved() {
		// Degraded/offline mode: ordering proceeds against the
		// placeholder, nothing is logged or incremented.
		r.Devices.SetRef(deviceKey, ref, nil)
		utils.ErrorLogger.Printf("Table lookup failed for label %q, falling back to placeholder", label)
		return &ScanResult{Ref: ref, TableID: ref.WireID(), Label: label, Degraded: true}, nil
	}

	alreadyProcessed := r.Registry.Processed(deviceKey, ref)

	if !alreadyProcessed && !r.Registry.CoolingDown(deviceKey, label) {
		// The cooldown key is stamped before the log write so two
		// concurrent scans of the same label cannot both pass the check.
		r.Registry.MarkCooldown(deviceKey, label)
		r.logScan(deviceKey, label, table.ID)
	}

	if alreadyProcessed {
		// Restore the active session without re-logging or
		// re-incrementing anything.
		r.Devices.SetRef(deviceKey, ref, table.SessionStartTime)
		return &ScanResult{Ref: ref, TableID: ref.WireID(), Label: label, Table: table}, nil
	}

	updated, newSession, err := r.incrementOccupancy(table.ID)
	if err != nil {
		if errors.Is(err, errTableFull) {
			// Authoritative denial: revert local state, block ordering,
			// and leave the scan unprocessed so the next attempt retries.
			r.Devices.Reset(deviceKey)
			return &ScanResult{
				Label:        label,
				AccessDenied: true,
				Message:      CapacityDeniedMessage,
			}, nil
		}
		return nil, err
	}

	if newSession {
		// The table was reset since the last scan: wipe everything this
		// device cached from the previous session.
		r.Carts.Clear(deviceKey)
		r.Devices.Reset(deviceKey)
	}

	r.Registry.MarkProcessed(deviceKey, ref)
	r.Devices.SetRef(deviceKey, ref, updated.SessionStartTime)
	realtime.BroadcastTableUpdate(*updated)

	return &ScanResult{
		Ref:        ref,
		TableID:    ref.WireID(),
		Label:      label,
		Table:      updated,
		NewSession: newSession,
	}, nil
}

// CheckSessionState compares the epoch the device recorded against the
// table's current one; if the table moved on, the device is reset to
// takeaway so it cannot keep acting on a dead session.
func (r *SessionResolver) CheckSessionState(deviceKey string) (*SessionStateResult, error) {
	state := r.Devices.Get(deviceKey)
	if !state.Ref.Resolved() {
		return &SessionStateResult{Ref: state.Ref, Label: state.Ref.Label()}, nil
	}

	table, err := r.loadTable(state.Ref.ID())
	if err != nil {
		return nil, err
	}

	if session.EpochOutdated(state.Epoch, table.SessionStartTime) {
		r.Carts.Clear(deviceKey)
		r.Registry.Reset(deviceKey)
		r.Devices.Reset(deviceKey)
		ref := session.Takeaway()
		return &SessionStateResult{Reset: true, Ref: ref, Label: ref.Label()}, nil
	}
	return &SessionStateResult{Ref: state.Ref, Label: state.Ref.Label()}, nil
}

var errTableFull = errors.New("table at capacity")

// incrementOccupancy adds one occupant inside a transaction, enforcing the
// seat capacity. A freed table starting a session gets a fresh epoch.
func (r *SessionResolver) incrementOccupancy(tableID uint) (*models.Table, bool, error) {
	var out models.Table
	newSession := false

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, tableID).Error; err != nil {
			return err
		}

		occupants := 0
		if table.Occupants != nil {
			occupants = *table.Occupants
		}
		if occupants >= table.Seats {
			return errTableFull
		}

		occupants++
		table.Occupants = &occupants
		if table.Status == models.TableAvailable {
			now := time.Now()
			table.Status = models.TableOccupied
			table.SessionStartTime = &now
			newSession = true
		}
		if err := tx.Save(&table).Error; err != nil {
			return err
		}
		out = table
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, newSession, nil
}

// lookup resolves a normalized label to a table, trying the exact label
// first and "Table <label>" as a fallback.
func (r *SessionResolver) lookup(label string) (session.TableRef, *models.Table) {
	var table models.Table
	if err := r.DB.Where("label = ?", label).First(&table).Error; err == nil {
		return session.Resolved(table.ID, label), &table
	}
	if err := r.DB.Where("label = ?", "Table "+label).First(&table).Error; err == nil {
		return session.Resolved(table.ID, label), &table
	}
	return session.Placeholder(label), nil
}

// logScan persists the scan-log row and bumps the table's monotonic scan
// counter. Both are best-effort: the scan still succeeds if the log write
// fails.
func (r *SessionResolver) logScan(deviceKey, label string, tableID uint) {
	entry := models.ScanLog{TableID: &tableID, Label: label, DeviceKey: deviceKey, CreatedAt: time.Now()}
	if err := r.DB.Create(&entry).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to persist scan log for %q: %v", label, err)
		return
	}
	if err := r.DB.Model(&models.Table{}).Where("id = ?", tableID).
		UpdateColumn("scans", gorm.Expr("scans + 1")).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to bump scan counter for table %d: %v", tableID, err)
	}
}

func (r *SessionResolver) loadTable(id uint) (*models.Table, error) {
	var table models.Table
	if err := r.DB.First(&table, id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *SessionResolver) resetDevice(deviceKey string) {
	r.Carts.Clear(deviceKey)
	r.Registry.Reset(deviceKey)
	r.Devices.Reset(deviceKey)
}
