package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/utils"
)

type SettingsController struct {
	DB *gorm.DB
}

func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{DB: db}
}

// GetSettings returns the singleton row, creating a default one on first
// access so the admin screen always has something to edit.
func (sc *SettingsController) GetSettings(c *gin.Context) {
	settings, err := sc.load()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings", settings)
}

func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	settings, err := sc.load()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		RestaurantName *string  `json:"restaurant_name"`
		Address        *string  `json:"address"`
		Phone          *string  `json:"phone"`
		TaxRate        *float64 `json:"tax_rate" binding:"omitempty,min=0,max=100"`
		Currency       *string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.RestaurantName != nil {
		settings.RestaurantName = *req.RestaurantName
	}
	if req.Address != nil {
		settings.Address = *req.Address
	}
	if req.Phone != nil {
		settings.Phone = *req.Phone
	}
	if req.TaxRate != nil {
		settings.TaxRate = *req.TaxRate
	}
	if req.Currency != nil {
		settings.Currency = *req.Currency
	}

	if err := sc.DB.Save(settings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.InfoLogger.Printf("Settings updated (tax rate %.2f%%)", settings.TaxRate)
	utils.RespondJSON(c, http.StatusOK, "Paramètres mis à jour", settings)
}

func (sc *SettingsController) load() (*models.Settings, error) {
	var settings models.Settings
	err := sc.DB.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.Settings{RestaurantName: "Mon Restaurant", Currency: "FCFA"}
		if err := sc.DB.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
