package controllers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// Dashboard aggregates the live figures the admin home screen shows.
func (ac *AdminController) Dashboard(c *gin.Context) {
	today := time.Now().Truncate(24 * time.Hour)

	var activeOrders int64
	ac.DB.Model(&models.Order{}).
		Where("status IN ?", []string{models.OrderPending, models.OrderPreparing, models.OrderReady}).
		Count(&activeOrders)

	var occupiedTables, totalTables int64
	ac.DB.Model(&models.Table{}).Count(&totalTables)
	ac.DB.Model(&models.Table{}).Where("status <> ?", models.TableAvailable).Count(&occupiedTables)

	var revenueToday float64
	ac.DB.Model(&models.Invoice{}).
		Where("created_at >= ? AND status = ?", today, models.InvoicePaid).
		Select("COALESCE(SUM(total), 0)").Scan(&revenueToday)

	var invoicesToday int64
	ac.DB.Model(&models.Invoice{}).Where("created_at >= ?", today).Count(&invoicesToday)

	var pendingService int64
	ac.DB.Model(&models.Table{}).
		Where("status IN ?", []string{models.TableNeedsService, models.TableRequestingBill}).
		Count(&pendingService)

	utils.RespondJSON(c, http.StatusOK, "Dashboard", gin.H{
		"active_orders":   activeOrders,
		"occupied_tables": occupiedTables,
		"total_tables":    totalTables,
		"revenue_today":   revenueToday,
		"invoices_today":  invoicesToday,
		"pending_service": pendingService,
	})
}

// ExportInvoicesCSV streams the invoice ledger for accounting, optionally
// bounded by ?from=/&to= dates.
func (ac *AdminController) ExportInvoicesCSV(c *gin.Context) {
	query, err := boundByDates(ac.DB.Order("created_at ASC"), c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"number", "reference", "date", "type", "table", "customer",
		"subtotal", "tax", "total", "payment_method", "server"})
	for _, inv := range invoices {
		_ = w.Write([]string{
			inv.Number,
			inv.Reference,
			inv.CreatedAt.Format("2006-01-02 15:04"),
			inv.Type,
			inv.TableLabel,
			inv.CustomerName,
			fmt.Sprintf("%.2f", inv.Subtotal),
			fmt.Sprintf("%.2f", inv.Tax),
			fmt.Sprintf("%.2f", inv.Total),
			inv.PaymentMethod,
			inv.ServerName,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=invoices.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// SalesChart renders the last seven days of paid-invoice revenue as a PNG
// bar chart for the admin dashboard.
func (ac *AdminController) SalesChart(c *gin.Context) {
	now := time.Now()
	bars := make([]chart.Value, 0, 7)

	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Truncate(24 * time.Hour)
		next := day.Add(24 * time.Hour)

		var total float64
		ac.DB.Model(&models.Invoice{}).
			Where("created_at >= ? AND created_at < ? AND status = ?", day, next, models.InvoicePaid).
			Select("COALESCE(SUM(total), 0)").Scan(&total)

		bars = append(bars, chart.Value{
			Label: day.Format("02/01"),
			Value: total,
		})
	}

	graph := chart.BarChart{
		Title:    "Ventes des 7 derniers jours",
		Height:   400,
		BarWidth: 50,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Notifications returns the persisted trail, newest first, so staff
// devices that reconnect can catch up.
func (ac *AdminController) Notifications(c *gin.Context) {
	var notifications []models.Notification
	if err := ac.DB.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", notifications)
}
