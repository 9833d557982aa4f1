package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/controllers"
	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/services"
	"github.com/restoscan/resto-app/session"
)

func setupScanRouter(db *gorm.DB, deviceID string) *gin.Engine {
	registry := session.NewScanRegistry()
	devices := services.NewDeviceStore()
	carts := services.NewCartStore()
	resolver := services.NewSessionResolver(db, registry, devices, carts)

	router := newTestRouter()
	scanCtrl := controllers.NewScanController(resolver)
	router.POST("/scan", authAs(deviceID, "customer"), scanCtrl.Scan)
	router.GET("/session/state", authAs(deviceID, "customer"), scanCtrl.SessionState)
	return router
}

func TestScanResolvesTableAndStartsSession(t *testing.T) {
	db := setupTestDB(t)
	table := models.Table{Label: "7", Seats: 4, Status: models.TableAvailable}
	assert.NoError(t, db.Create(&table).Error)

	router := setupScanRouter(db, "device-1")
	w := performJSON(t, router, "POST", "/scan", map[string]any{"table": "7"})
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	assert.Equal(t, true, response["status"])
	data := response["data"].(map[string]any)
	assert.Equal(t, "7", data["label"])
	assert.Equal(t, true, data["new_session"])

	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, models.TableOccupied, reloaded.Status)
	if assert.NotNil(t, reloaded.Occupants) {
		assert.Equal(t, 1, *reloaded.Occupants)
	}
}

func TestScanUnknownLabelDegrades(t *testing.T) {
	db := setupTestDB(t)

	router := setupScanRouter(db, "device-1")
	w := performJSON(t, router, "POST", "/scan", map[string]any{"table": "99"})
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["degraded"])
	assert.Equal(t, "temp_99", data["table_id"])
}

func TestScanFullTableIsDenied(t *testing.T) {
	db := setupTestDB(t)
	occupants := 2
	table := models.Table{Label: "7", Seats: 2, Status: models.TableOccupied, Occupants: &occupants}
	assert.NoError(t, db.Create(&table).Error)

	router := setupScanRouter(db, "device-1")
	w := performJSON(t, router, "POST", "/scan", map[string]any{"table": "7"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	response := decodeResponse(t, w)
	// The customer app keys on the envelope's status=false for the
	// blocking screen.
	assert.Equal(t, false, response["status"])
	data := response["data"].(map[string]any)
	assert.Equal(t, true, data["access_denied"])
	assert.Equal(t, services.CapacityDeniedMessage, response["message"])
}

func TestScanWithoutLabelFallsBackToTakeaway(t *testing.T) {
	db := setupTestDB(t)

	router := setupScanRouter(db, "device-1")
	w := performJSON(t, router, "POST", "/scan", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "takeaway", data["table_id"])
}

func TestSessionStateStaysCurrent(t *testing.T) {
	db := setupTestDB(t)
	table := models.Table{Label: "7", Seats: 4, Status: models.TableAvailable}
	assert.NoError(t, db.Create(&table).Error)

	router := setupScanRouter(db, "device-1")
	w := performJSON(t, router, "POST", "/scan", map[string]any{"table": "7"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = performJSON(t, router, "GET", "/session/state", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, false, data["reset"])
}
