package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/controllers"
	"github.com/restoscan/resto-app/models"
)

func setupTableRouter(db *gorm.DB) *gin.Engine {
	router := newTestRouter()
	tableCtrl := controllers.NewTableController(db)
	router.POST("/tables", tableCtrl.CreateTable)
	router.POST("/tables/:id/call-server", tableCtrl.CallServer)
	router.POST("/tables/:id/request-bill", tableCtrl.RequestBill)
	router.POST("/tables/:id/accept-service", authAs("1", models.RoleServer), tableCtrl.AcceptService)
	router.POST("/tables/:id/reset", tableCtrl.ResetTable)
	return router
}

func TestCreateTable(t *testing.T) {
	db := setupTestDB(t)
	router := setupTableRouter(db)

	w := performJSON(t, router, "POST", "/tables", map[string]any{"label": "12", "seats": 6})
	assert.Equal(t, http.StatusCreated, w.Code)

	var table models.Table
	assert.NoError(t, db.Where("label = ?", "12").First(&table).Error)
	assert.Equal(t, 6, table.Seats)
	assert.Equal(t, models.TableAvailable, table.Status)
}

func TestServiceRequestLastCallWins(t *testing.T) {
	db := setupTestDB(t)
	table := models.Table{Label: "4", Seats: 4, Status: models.TableOccupied}
	assert.NoError(t, db.Create(&table).Error)

	router := setupTableRouter(db)

	w := performJSON(t, router, "POST", "/tables/1/call-server", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, models.TableNeedsService, reloaded.Status)

	// The bill request overwrites the pending service call.
	w = performJSON(t, router, "POST", "/tables/1/request-bill", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, models.TableRequestingBill, reloaded.Status)

	// Both requests left a persisted trail for reconnecting staff devices.
	var notifications int64
	db.Model(&models.Notification{}).Where("table_id = ?", table.ID).Count(&notifications)
	assert.Equal(t, int64(2), notifications)
}

func TestServiceRequestRejectedWithoutSession(t *testing.T) {
	db := setupTestDB(t)
	table := models.Table{Label: "4", Seats: 4, Status: models.TableAvailable}
	assert.NoError(t, db.Create(&table).Error)

	router := setupTableRouter(db)
	w := performJSON(t, router, "POST", "/tables/1/call-server", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performJSON(t, router, "POST", "/tables/1/request-bill", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The table stays available and no notification was persisted.
	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, models.TableAvailable, reloaded.Status)
	var notifications int64
	db.Model(&models.Notification{}).Where("table_id = ?", table.ID).Count(&notifications)
	assert.Zero(t, notifications)
}

func TestAcceptServiceRecordsServerName(t *testing.T) {
	db := setupTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	staff := models.StaffMember{Name: "Awa", Role: models.RoleServer, PIN: string(hash), Active: true}
	assert.NoError(t, db.Create(&staff).Error)

	table := models.Table{Label: "4", Seats: 4, Status: models.TableNeedsService}
	assert.NoError(t, db.Create(&table).Error)

	router := setupTableRouter(db)
	w := performJSON(t, router, "POST", "/tables/1/accept-service", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, models.TableOccupied, reloaded.Status)
	if assert.NotNil(t, reloaded.ServiceAcceptedBy) {
		assert.Equal(t, "Awa", *reloaded.ServiceAcceptedBy)
	}
}

func TestNewServiceRequestReopensClaim(t *testing.T) {
	db := setupTestDB(t)
	name := "Awa"
	table := models.Table{Label: "4", Seats: 4, Status: models.TableOccupied, ServiceAcceptedBy: &name}
	assert.NoError(t, db.Create(&table).Error)

	router := setupTableRouter(db)
	w := performJSON(t, router, "POST", "/tables/1/call-server", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Nil(t, reloaded.ServiceAcceptedBy)
}

func TestResetTableFreesIt(t *testing.T) {
	db := setupTestDB(t)
	occupants := 3
	table := models.Table{Label: "4", Seats: 4, Status: models.TableOccupied, Occupants: &occupants}
	assert.NoError(t, db.Create(&table).Error)

	router := setupTableRouter(db)
	w := performJSON(t, router, "POST", "/tables/1/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Table
	assert.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.Equal(t, models.TableAvailable, reloaded.Status)
	assert.Nil(t, reloaded.Occupants)
}
