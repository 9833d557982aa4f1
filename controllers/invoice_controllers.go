package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/services"
	"github.com/restoscan/resto-app/utils"
)

type InvoiceController struct {
	DB      *gorm.DB
	Billing *services.BillingService
}

func NewInvoiceController(db *gorm.DB, billing *services.BillingService) *InvoiceController {
	return &InvoiceController{DB: db, Billing: billing}
}

// ConsolidateTable merges the table session's orders into one paid invoice
// and frees the table.
func (ic *InvoiceController) ConsolidateTable(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}

	serverName := "staff"
	if staff := currentStaff(c, ic.DB); staff != nil {
		serverName = staff.Name
	}

	invoice, err := ic.Billing.ConsolidateTable(id, req.PaymentMethod, serverName)
	if err != nil {
		ic.respondBillingError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Facture générée", invoice)
}

// ConsolidateTakeaway bills explicit orders for a named walk-in customer.
func (ic *InvoiceController) ConsolidateTakeaway(c *gin.Context) {
	var req struct {
		OrderIDs      []uint `json:"order_ids" binding:"required,min=1"`
		CustomerName  string `json:"customer_name" binding:"required"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}

	serverName := "staff"
	if staff := currentStaff(c, ic.DB); staff != nil {
		serverName = staff.Name
	}

	invoice, err := ic.Billing.ConsolidateTakeaway(req.OrderIDs, req.CustomerName, req.PaymentMethod, serverName)
	if err != nil {
		ic.respondBillingError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Facture générée", invoice)
}

func (ic *InvoiceController) respondBillingError(c *gin.Context, err error) {
	var saga *services.ConsolidationError
	switch {
	case errors.Is(err, services.ErrNoOrders):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &saga):
		// Partial failure: surface what already ran so the operator can
		// compensate instead of blindly retrying.
		utils.RespondJSON(c, http.StatusInternalServerError, saga.Error(), gin.H{
			"failed_step":   saga.Failed,
			"completed":     saga.Completed,
			"compensations": saga.Compensations,
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// ListInvoices returns invoices, newest first, optionally bounded by
// ?from=/&to= dates (YYYY-MM-DD, both inclusive).
func (ic *InvoiceController) ListInvoices(c *gin.Context) {
	query, err := boundByDates(ic.DB.Preload("Items").Order("created_at DESC"), c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoices", invoices)
}

// boundByDates applies inclusive ?from=/&to= day bounds. The exclusive
// upper bound is computed here rather than in SQL, so the query is the
// same on MySQL and SQLite.
func boundByDates(query *gorm.DB, c *gin.Context) (*gorm.DB, error) {
	if from := c.Query("from"); from != "" {
		day, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, fmt.Errorf("invalid from date %q", from)
		}
		query = query.Where("created_at >= ?", day)
	}
	if to := c.Query("to"); to != "" {
		day, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %q", to)
		}
		query = query.Where("created_at < ?", day.AddDate(0, 0, 1))
	}
	return query, nil
}

// GetInvoice looks an invoice up by its uuid reference, the unambiguous
// handle (the INV number is not guaranteed unique).
func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	var invoice models.Invoice
	if err := ic.DB.Preload("Items").
		Where("reference = ?", c.Param("reference")).
		First(&invoice).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice", invoice)
}

// InvoicePDF renders the printable ticket.
func (ic *InvoiceController) InvoicePDF(c *gin.Context) {
	var invoice models.Invoice
	if err := ic.DB.Preload("Items").
		Where("reference = ?", c.Param("reference")).
		First(&invoice).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	pdf, err := utils.RenderInvoicePDF(&invoice)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", invoice.Number))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
