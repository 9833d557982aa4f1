package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/utils"
)

type StaffController struct {
	DB *gorm.DB
}

func NewStaffController(db *gorm.DB) *StaffController {
	return &StaffController{DB: db}
}

// ListStaff returns the roster. PIN hashes never serialize.
func (sc *StaffController) ListStaff(c *gin.Context) {
	var staff []models.StaffMember
	if err := sc.DB.Order("name ASC").Find(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff", staff)
}

// LoginRoster is the pre-login listing the PIN pad shows: active staff
// only, names and roles, no contact details.
func (sc *StaffController) LoginRoster(c *gin.Context) {
	var staff []models.StaffMember
	if err := sc.DB.Select("id", "name", "role", "avatar").
		Where("active = ?", true).
		Order("name ASC").
		Find(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff", staff)
}

func (sc *StaffController) CreateStaff(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Role  string `json:"role" binding:"required,oneof=admin server kitchen manager"`
		PIN   string `json:"pin" binding:"required,len=4,numeric"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	staff := models.StaffMember{
		Name:   req.Name,
		Role:   req.Role,
		PIN:    string(hash),
		Active: true,
		Email:  req.Email,
		Phone:  req.Phone,
	}
	if err := sc.DB.Create(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.InfoLogger.Printf("Staff %s (%s) created", staff.Name, staff.Role)
	utils.RespondJSON(c, http.StatusCreated, "Membre du personnel créé", staff)
}

func (sc *StaffController) UpdateStaff(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var staff models.StaffMember
	if err := sc.DB.First(&staff, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name   *string `json:"name"`
		Role   *string `json:"role" binding:"omitempty,oneof=admin server kitchen manager"`
		PIN    *string `json:"pin" binding:"omitempty,len=4,numeric"`
		Active *bool   `json:"active"`
		Email  *string `json:"email"`
		Phone  *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Role != nil {
		staff.Role = *req.Role
	}
	if req.PIN != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.PIN), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		staff.PIN = string(hash)
	}
	if req.Active != nil {
		staff.Active = *req.Active
	}
	if req.Email != nil {
		staff.Email = *req.Email
	}
	if req.Phone != nil {
		staff.Phone = *req.Phone
	}

	if err := sc.DB.Save(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Membre du personnel mis à jour", staff)
}

// DeleteStaff deactivates rather than deletes, so past invoices keep a
// resolvable server name.
func (sc *StaffController) DeleteStaff(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := sc.DB.Model(&models.StaffMember{}).Where("id = ?", id).
		Update("active", false).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Membre du personnel désactivé", nil)
}

// Profile returns the staff row behind the presented token.
func (sc *StaffController) Profile(c *gin.Context) {
	staff := currentStaff(c, sc.DB)
	if staff == nil {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", staff)
}
