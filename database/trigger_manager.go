package database

import (
	"fmt"

	"github.com/restoscan/resto-app/utils"
	"gorm.io/gorm"
)

// watched lists the collections whose out-of-band writes must reach the
// change feed. Each gets INSERT/UPDATE triggers; tables also gets DELETE.
var watched = []string{"tables", "orders", "invoices"}

// ExecuteTriggers installs the MySQL triggers feeding db_changes. Trigger
// DDL is MySQL-only; on other drivers (SQLite tests) the errors are logged
// and ignored, since handler-originated writes broadcast directly anyway.
func ExecuteTriggers(db *gorm.DB) error {
	for _, table := range watched {
		stmts := []string{
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s_after_insert`, table),
			fmt.Sprintf(`CREATE TRIGGER %s_after_insert AFTER INSERT ON %s FOR EACH ROW
INSERT INTO db_changes (table_name, record_id, action_type, changed_at, processed)
VALUES ('%s', NEW.id, 'INSERT', NOW(), false)`, table, table, table),
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s_after_update`, table),
			fmt.Sprintf(`CREATE TRIGGER %s_after_update AFTER UPDATE ON %s FOR EACH ROW
INSERT INTO db_changes (table_name, record_id, action_type, changed_at, processed)
VALUES ('%s', NEW.id, 'UPDATE', NOW(), false)`, table, table, table),
		}
		if table == "tables" {
			stmts = append(stmts,
				`DROP TRIGGER IF EXISTS tables_after_delete`,
				`CREATE TRIGGER tables_after_delete AFTER DELETE ON tables FOR EACH ROW
INSERT INTO db_changes (table_name, record_id, action_type, changed_at, processed)
VALUES ('tables', OLD.id, 'DELETE', NOW(), false)`,
			)
		}

		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				utils.ErrorLogger.Printf("Error executing trigger statement: %v", err)
				continue
			}
		}
	}

	var triggers []struct {
		TriggerName string
		EventType   string
		TableName   string
	}
	db.Raw(`
        SELECT
            TRIGGER_NAME as trigger_name,
            EVENT_MANIPULATION as event_type,
            EVENT_OBJECT_TABLE as table_name
        FROM information_schema.triggers
        WHERE TRIGGER_SCHEMA = DATABASE()
    `).Scan(&triggers)

	for _, t := range triggers {
		utils.InfoLogger.Printf("Trigger verified: %s (%s on %s)",
			t.TriggerName, t.EventType, t.TableName)
	}

	return nil
}
