package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
)

// paramID parses a numeric path parameter.
func paramID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return uint(id), nil
}

// deviceKey returns the anonymous subject the auth middleware extracted
// from the customer token.
func deviceKey(c *gin.Context) string {
	if v, ok := c.Get("subject_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// currentRole returns the role claim set by the auth middleware.
func currentRole(c *gin.Context) string {
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// currentStaff loads the staff row behind a staff token; nil for customers.
func currentStaff(c *gin.Context, db *gorm.DB) *models.StaffMember {
	id, err := strconv.ParseUint(deviceKey(c), 10, 32)
	if err != nil {
		return nil
	}
	var staff models.StaffMember
	if err := db.First(&staff, uint(id)).Error; err != nil {
		return nil
	}
	return &staff
}
