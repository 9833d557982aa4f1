package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/realtime"
)

// ChangeMonitor polls the trigger-fed change feed and rebroadcasts rows to
// websocket subscribers. It exists for writes that bypass the HTTP layer
// (manual fixes, batch jobs); handler-originated writes broadcast directly.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()
	if tx.Error != nil {
		log.Printf("Error starting change-feed transaction: %v", tx.Error)
		return
	}

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		log.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "tables":
			cm.processTableChange(change)
		case "orders":
			cm.processOrderChange(change)
		case "invoices":
			cm.processInvoiceChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			log.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Error committing change feed: %v", err)
		tx.Rollback()
	}
}

func (cm *ChangeMonitor) processTableChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		realtime.BroadcastMessage(realtime.Message{
			Event: realtime.EventTableUpdate,
			Data:  map[string]any{"id": change.RecordID, "deleted": true},
		})
		return
	}
	var table models.Table
	if err := cm.DB.First(&table, change.RecordID).Error; err != nil {
		log.Printf("Error fetching table %d from change feed: %v", change.RecordID, err)
		return
	}
	realtime.BroadcastTableUpdate(table)
}

func (cm *ChangeMonitor) processOrderChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}
	var order models.Order
	if err := cm.DB.Preload("Items").First(&order, change.RecordID).Error; err != nil {
		log.Printf("Error fetching order %d from change feed: %v", change.RecordID, err)
		return
	}
	realtime.BroadcastOrderUpdate(order)
}

func (cm *ChangeMonitor) processInvoiceChange(change models.DBChange) {
	if change.ActionType != "INSERT" {
		return
	}
	var invoice models.Invoice
	if err := cm.DB.Preload("Items").First(&invoice, change.RecordID).Error; err != nil {
		log.Printf("Error fetching invoice %d from change feed: %v", change.RecordID, err)
		return
	}
	realtime.BroadcastInvoiceGenerated(invoice)
	// A new invoice moves the revenue figures; admin dashboards refresh.
	realtime.BroadcastMessage(realtime.Message{
		Event: realtime.EventDashboardUpdate,
		Data:  map[string]any{"invoice_id": invoice.ID},
	})
}
