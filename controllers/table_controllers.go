package controllers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/realtime"
	"github.com/restoscan/resto-app/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

func (tc *TableController) ListTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Order("label ASC").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables", tables)
}

func (tc *TableController) GetTable(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table", table)
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Label string `json:"label" binding:"required"`
		Seats int    `json:"seats" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{Label: req.Label, Seats: req.Seats, Status: models.TableAvailable}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	utils.InfoLogger.Printf("Table %q created with %d seats", table.Label, table.Seats)
	utils.RespondJSON(c, http.StatusCreated, "Table créée", table)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Label *string `json:"label"`
		Seats *int    `json:"seats"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Label != nil {
		table.Label = *req.Label
	}
	if req.Seats != nil && *req.Seats >= 1 {
		table.Seats = *req.Seats
	}
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	realtime.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Table mise à jour", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := tc.DB.Delete(&models.Table{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table supprimée", nil)
}

// CallServer flags the table as needing service. The flag is a single
// status field: a later bill request overwrites it (last call wins).
func (tc *TableController) CallServer(c *gin.Context) {
	tc.requestService(c, models.TableNeedsService, "Le serveur arrive")
}

// RequestBill flags the table as waiting for its bill, overwriting any
// pending service call.
func (tc *TableController) RequestBill(c *gin.Context) {
	tc.requestService(c, models.TableRequestingBill, "L'addition arrive")
}

func (tc *TableController) requestService(c *gin.Context, status, message string) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	// Service requests only make sense within a session: an available
	// table has nobody to serve.
	if table.Status == models.TableAvailable {
		utils.RespondError(c, http.StatusConflict,
			&CustomError{Message: "aucune session active pour cette table"})
		return
	}

	table.Status = status
	// A new request reopens the claim even if a server had accepted the
	// previous one.
	table.ServiceAcceptedBy = nil
	if err := tc.DB.Model(&models.Table{}).Where("id = ?", table.ID).
		Updates(map[string]any{"status": status, "service_accepted_by": nil}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	notif := models.Notification{
		Message:   fmt.Sprintf("Table %s : %s", table.Label, serviceRequestLabel(status)),
		TableID:   &table.ID,
		CreatedAt: time.Now(),
	}
	if err := tc.DB.Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to persist service notification for table %s: %v", table.Label, err)
	}

	realtime.BroadcastServiceRequest(table)
	realtime.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, message, table)
}

func serviceRequestLabel(status string) string {
	if status == models.TableRequestingBill {
		return "demande l'addition"
	}
	return "appelle un serveur"
}

// AcceptService records which server took the call. The claim is advisory:
// it never blocks another server from acting, it only labels the card.
func (tc *TableController) AcceptService(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	name := "staff"
	if staff := currentStaff(c, tc.DB); staff != nil {
		name = staff.Name
	}
	table.ServiceAcceptedBy = &name
	// Accepting resolves the request flag back to occupied.
	table.Status = models.TableOccupied
	if err := tc.DB.Model(&models.Table{}).Where("id = ?", table.ID).
		Updates(map[string]any{"status": models.TableOccupied, "service_accepted_by": name}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Demande prise en charge", table)
}

// ResetTable force-closes a table session without billing: the table goes
// back to available and every device holding the old epoch gets reset on
// its next session-state check.
func (tc *TableController) ResetTable(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	table.Status = models.TableAvailable
	table.Occupants = nil
	table.ServiceAcceptedBy = nil
	if err := tc.DB.Model(&models.Table{}).Where("id = ?", table.ID).
		Updates(map[string]any{
			"status":              models.TableAvailable,
			"occupants":           nil,
			"service_accepted_by": nil,
		}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastTableUpdate(table)
	realtime.BroadcastSessionReset(table)
	utils.InfoLogger.Printf("Table %s reset by staff", table.Label)
	utils.RespondJSON(c, http.StatusOK, "Table réinitialisée", table)
}

// TableQR renders the printable QR code pointing at the customer menu.
func (tc *TableController) TableQR(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	png, err := utils.RenderTableQR(baseURL, table.Label, 512)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
