package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/utils"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// SignInAnonymously issues a customer token bound to a device key. It is
// idempotent: posting again with an existing device key returns a fresh
// token for the same key, so the scan flow can call it unconditionally.
func (ac *AuthController) SignInAnonymously(c *gin.Context) {
	var req struct {
		DeviceKey string `json:"device_key"`
	}
	// Body is optional; a missing device key gets a generated one.
	_ = c.ShouldBindJSON(&req)

	deviceKey := req.DeviceKey
	if deviceKey == "" {
		deviceKey = uuid.New().String()
	}

	token, err := utils.GenerateAnonymousToken(deviceKey)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Anonymous session ready", gin.H{
		"device_key": deviceKey,
		"token":      token,
	})
}

// Login authenticates a staff member with their 4-digit PIN.
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		StaffID uint   `json:"staff_id" binding:"required"`
		PIN     string `json:"pin" binding:"required,len=4"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var staff models.StaffMember
	if err := ac.DB.First(&staff, req.StaffID).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, ErrBadPIN)
		return
	}
	if !staff.Active {
		utils.RespondError(c, http.StatusForbidden, &CustomError{"compte désactivé"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PIN), []byte(req.PIN)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, ErrBadPIN)
		return
	}

	token, err := utils.GenerateStaffToken(strconv.Itoa(int(staff.ID)), staff.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Staff %s (%s) logged in", staff.Name, staff.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"staff": staff,
	})
}

// Logout blacklists the presented token for the rest of its lifetime.
func (ac *AuthController) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token != "" {
		utils.BlacklistToken(token)
	}
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}
