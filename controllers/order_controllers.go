package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/services"
	"github.com/restoscan/resto-app/utils"
)

type OrderController struct {
	DB   *gorm.DB
	Flow *services.OrderFlowService
}

func NewOrderController(db *gorm.DB, flow *services.OrderFlowService) *OrderController {
	return &OrderController{DB: db, Flow: flow}
}

// KitchenBoard returns the three kitchen columns in one payload.
func (oc *OrderController) KitchenBoard(c *gin.Context) {
	orders, err := oc.Flow.OrdersByStatus(models.OrderPending, models.OrderPreparing, models.OrderReady)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen board", groupByStatus(orders))
}

// AdminBoard returns the four admin columns.
func (oc *OrderController) AdminBoard(c *gin.Context) {
	orders, err := oc.Flow.OrdersByStatus(
		models.OrderPending, models.OrderPreparing, models.OrderReady, models.OrderServed)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order board", groupByStatus(orders))
}

func groupByStatus(orders []models.Order) map[string][]models.Order {
	grouped := make(map[string][]models.Order)
	for _, o := range orders {
		grouped[o.Status] = append(grouped[o.Status], o)
	}
	return grouped
}

// ListOrders filters by optional ?status=; without it, everything.
func (oc *OrderController) ListOrders(c *gin.Context) {
	query := oc.DB.Preload("Items").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders", orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var order models.Order
	if err := oc.DB.Preload("Items").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order", order)
}

// UpdateStatus moves an order on behalf of the caller's role. The per-actor
// legality lives in the flow service; this handler only maps role to actor
// and error to HTTP code.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorForRole(currentRole(c))
	if actor == "" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	order, err := oc.Flow.Transition(id, actor, req.Status)
	if err != nil {
		oc.respondTransitionError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Statut mis à jour", order)
}

// CancelOrder is the customer-facing cancel; it only works while the
// kitchen has not started.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if order.UserID != deviceKey(c) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	updated, err := oc.Flow.Transition(id, services.ActorCustomer, models.OrderCancelled)
	if err != nil {
		oc.respondTransitionError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Commande annulée", updated)
}

func (oc *OrderController) respondTransitionError(c *gin.Context, err error) {
	var illegal *services.IllegalTransitionError
	switch {
	case errors.Is(err, services.ErrCancelTooLate):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &illegal):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func actorForRole(role string) string {
	switch role {
	case models.RoleKitchen:
		return services.ActorKitchen
	case models.RoleServer:
		return services.ActorServer
	case models.RoleAdmin, models.RoleManager:
		return services.ActorAdmin
	case "customer":
		return services.ActorCustomer
	}
	return ""
}
