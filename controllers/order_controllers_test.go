package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/controllers"
	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/services"
)

func setupOrderRouter(db *gorm.DB, role string) *gin.Engine {
	flow := services.NewOrderFlowService(db)
	router := newTestRouter()
	orderCtrl := controllers.NewOrderController(db, flow)

	auth := authAs("1", role)
	router.PATCH("/orders/:id/status", auth, orderCtrl.UpdateStatus)
	router.GET("/kitchen/board", auth, orderCtrl.KitchenBoard)
	return router
}

func seedPendingOrder(t *testing.T, db *gorm.DB) models.Order {
	t.Helper()
	order := models.Order{
		TableLabel: "5",
		Items:      []models.OrderItem{{MenuID: 1, Name: "Poulet Braisé", Price: 4500, Qty: 1}},
		Total:      4500,
		Status:     models.OrderPending,
		CreatedAt:  time.Now(),
	}
	assert.NoError(t, db.Create(&order).Error)
	return order
}

func TestKitchenAdvancesOrder(t *testing.T) {
	db := setupTestDB(t)
	order := seedPendingOrder(t, db)

	router := setupOrderRouter(db, models.RoleKitchen)
	w := performJSON(t, router, "PATCH", "/orders/1/status", map[string]any{"status": models.OrderPreparing})
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Order
	assert.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderPreparing, reloaded.Status)
}

func TestKitchenCannotServe(t *testing.T) {
	db := setupTestDB(t)
	order := seedPendingOrder(t, db)
	assert.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderReady).Error)

	router := setupOrderRouter(db, models.RoleKitchen)
	w := performJSON(t, router, "PATCH", "/orders/1/status", map[string]any{"status": models.OrderServed})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestServerServesReadyOrder(t *testing.T) {
	db := setupTestDB(t)
	order := seedPendingOrder(t, db)
	assert.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderReady).Error)

	router := setupOrderRouter(db, models.RoleServer)
	w := performJSON(t, router, "PATCH", "/orders/1/status", map[string]any{"status": models.OrderServed})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminOverridesBackward(t *testing.T) {
	db := setupTestDB(t)
	order := seedPendingOrder(t, db)
	assert.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderServed).Error)

	// Admin can drag an order back to any of the four columns.
	router := setupOrderRouter(db, models.RoleAdmin)
	w := performJSON(t, router, "PATCH", "/orders/1/status", map[string]any{"status": models.OrderPending})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSameStatusUpdateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedPendingOrder(t, db)

	router := setupOrderRouter(db, models.RoleKitchen)
	w := performJSON(t, router, "PATCH", "/orders/1/status", map[string]any{"status": models.OrderPending})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestKitchenBoardGroupsByStatus(t *testing.T) {
	db := setupTestDB(t)
	seedPendingOrder(t, db)
	second := seedPendingOrder(t, db)
	assert.NoError(t, db.Model(&models.Order{}).Where("id = ?", second.ID).
		Update("status", models.OrderPreparing).Error)

	router := setupOrderRouter(db, models.RoleKitchen)
	w := performJSON(t, router, "GET", "/kitchen/board", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Len(t, data[models.OrderPending], 1)
	assert.Len(t, data[models.OrderPreparing], 1)
}
