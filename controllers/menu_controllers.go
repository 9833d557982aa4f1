package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/realtime"
	"github.com/restoscan/resto-app/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// PublicMenu is what customer devices load after a scan: available items
// only, grouped by category in display order.
func (mc *MenuController) PublicMenu(c *gin.Context) {
	var categories []models.MenuCategory
	if err := mc.DB.Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var menus []models.Menu
	if err := mc.DB.Preload("Options").
		Where("available = ?", true).
		Order("name ASC").
		Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	byCategory := make(map[uint][]models.Menu)
	for _, m := range menus {
		byCategory[m.CategoryID] = append(byCategory[m.CategoryID], m)
	}

	type categoryBlock struct {
		Category models.MenuCategory `json:"category"`
		Items    []models.Menu       `json:"items"`
	}
	var blocks []categoryBlock
	for _, cat := range categories {
		if items := byCategory[cat.ID]; len(items) > 0 {
			blocks = append(blocks, categoryBlock{Category: cat, Items: items})
		}
	}

	var featured []models.Menu
	if err := mc.DB.Preload("Options").
		Where("available = ? AND featured = ?", true, true).
		Order("featured_order ASC").
		Find(&featured).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu", gin.H{
		"categories": blocks,
		"featured":   featured,
	})
}

// ListMenus is the staff-facing catalog, unavailable items included.
func (mc *MenuController) ListMenus(c *gin.Context) {
	query := mc.DB.Preload("Options").Preload("Category")
	if cat := c.Query("category_id"); cat != "" {
		query = query.Where("category_id = ?", cat)
	}
	var menus []models.Menu
	if err := query.Order("name ASC").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menus", menus)
}

func (mc *MenuController) GetMenu(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var menu models.Menu
	if err := mc.DB.Preload("Options").Preload("Category").First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", menu)
}

type menuPayload struct {
	CategoryID      uint                `json:"category_id" binding:"required"`
	Name            string              `json:"name" binding:"required"`
	Description     string              `json:"description"`
	Price           float64             `json:"price" binding:"required,gt=0"`
	ImageURL        string              `json:"image_url"`
	Available       *bool               `json:"available"`
	Featured        *bool               `json:"featured"`
	FeaturedOrder   int                 `json:"featured_order"`
	Recommendations []uint              `json:"recommendations"`
	Options         []models.MenuOption `json:"options"`
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu := models.Menu{
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		ImageURL:        req.ImageURL,
		Available:       true,
		FeaturedOrder:   req.FeaturedOrder,
		Recommendations: req.Recommendations,
		Options:         req.Options,
	}
	if req.Available != nil {
		menu.Available = *req.Available
	}
	if req.Featured != nil {
		menu.Featured = *req.Featured
	}

	if err := mc.DB.Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	realtime.BroadcastMenuUpdate(menu)
	utils.RespondJSON(c, http.StatusCreated, "Article créé", menu)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var menu models.Menu
	if err := mc.DB.Preload("Options").First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req menuPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu.CategoryID = req.CategoryID
	menu.Name = req.Name
	menu.Description = req.Description
	menu.Price = req.Price
	if req.ImageURL != "" {
		menu.ImageURL = req.ImageURL
	}
	if req.Available != nil {
		menu.Available = *req.Available
	}
	if req.Featured != nil {
		menu.Featured = *req.Featured
	}
	menu.FeaturedOrder = req.FeaturedOrder
	menu.Recommendations = req.Recommendations

	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		if req.Options != nil {
			if err := tx.Where("menu_id = ?", menu.ID).Delete(&models.MenuOption{}).Error; err != nil {
				return err
			}
			for i := range req.Options {
				req.Options[i].ID = 0
				req.Options[i].MenuID = menu.ID
			}
			menu.Options = req.Options
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&menu).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastMenuUpdate(menu)
	utils.RespondJSON(c, http.StatusOK, "Article mis à jour", menu)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id = ?", id).Delete(&models.MenuOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Menu{}, id).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Article supprimé", nil)
}

// SetAvailability flips the live availability flag. Carts holding the item
// keep their snapshot; the flag is re-checked at order submission.
func (mc *MenuController) SetAvailability(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	menu.Available = *req.Available
	if err := mc.DB.Model(&models.Menu{}).Where("id = ?", id).
		Update("available", *req.Available).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastMenuUpdate(menu)
	utils.RespondJSON(c, http.StatusOK, "Disponibilité mise à jour", menu)
}

// SetPromotion sets or clears the promotion window.
func (mc *MenuController) SetPromotion(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var req struct {
		PromoPrice *float64   `json:"promo_price"`
		PromoStart *time.Time `json:"promo_start"`
		PromoEnd   *time.Time `json:"promo_end"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.PromoPrice != nil {
		if req.PromoStart == nil || req.PromoEnd == nil || req.PromoEnd.Before(*req.PromoStart) {
			utils.RespondError(c, http.StatusBadRequest, &CustomError{"fenêtre de promotion invalide"})
			return
		}
	}

	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	menu.PromoPrice = req.PromoPrice
	menu.PromoStart = req.PromoStart
	menu.PromoEnd = req.PromoEnd
	if err := mc.DB.Model(&models.Menu{}).Where("id = ?", id).
		Updates(map[string]any{
			"promo_price": req.PromoPrice,
			"promo_start": req.PromoStart,
			"promo_end":   req.PromoEnd,
		}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastMenuUpdate(menu)
	utils.RespondJSON(c, http.StatusOK, "Promotion mise à jour", menu)
}

// UploadImage stores a dish photo under the local uploads directory and
// returns its public path.
func (mc *MenuController) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ext := filepath.Ext(file.Filename)
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		utils.RespondError(c, http.StatusBadRequest, &CustomError{"format d'image non supporté"})
		return
	}

	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Image enregistrée", gin.H{
		"image_url": "/uploads/" + name,
	})
}
