package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/services"
	"github.com/restoscan/resto-app/utils"
)

type ReviewController struct {
	DB      *gorm.DB
	Billing *services.BillingService
	Reviews *services.ReviewService
}

func NewReviewController(db *gorm.DB, billing *services.BillingService, reviews *services.ReviewService) *ReviewController {
	return &ReviewController{DB: db, Billing: billing, Reviews: reviews}
}

// Slots returns the rating slots for a table's current session: one per
// distinct (item, option set) combination across the session's orders.
func (rc *ReviewController) Slots(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var table models.Table
	if err := rc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	orders, err := rc.Billing.SessionOrders(&table)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Rating slots", rc.Reviews.Slots(orders))
}

// Submit writes one review per rated slot.
func (rc *ReviewController) Submit(c *gin.Context) {
	var req struct {
		TableID       *uint                       `json:"table_id"`
		CustomerName  string                      `json:"customer_name"`
		CustomerPhone string                      `json:"customer_phone"`
		Ratings       []services.RatingSubmission `json:"ratings" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reviews, err := rc.Reviews.Submit(req.TableID, req.CustomerName, req.CustomerPhone, req.Ratings)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Merci pour votre avis !", reviews)
}

// ListReviews is the staff-facing listing, optionally filtered by item.
func (rc *ReviewController) ListReviews(c *gin.Context) {
	query := rc.DB.Order("created_at DESC")
	if menuID := c.Query("menu_id"); menuID != "" {
		query = query.Where("menu_id = ?", menuID)
	}
	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reviews", reviews)
}
