package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/restoscan/resto-app/services"
	"github.com/restoscan/resto-app/utils"
)

type ScanController struct {
	Resolver *services.SessionResolver
}

func NewScanController(resolver *services.SessionResolver) *ScanController {
	return &ScanController{Resolver: resolver}
}

// Scan resolves a scanned table label for the calling device. An empty or
// missing label drops the device to takeaway mode.
func (sc *ScanController) Scan(c *gin.Context) {
	var req struct {
		Table string `json:"table"`
	}
	// A bare scan with no body is a takeaway entry.
	_ = c.ShouldBindJSON(&req)
	if req.Table == "" {
		// The QR payload puts the label in the query string.
		req.Table = c.Query("table")
	}

	result, err := sc.Resolver.Resolve(deviceKey(c), req.Table)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if result.AccessDenied {
		// Blocking screen: the envelope's status=false is the contract the
		// customer app keys on.
		utils.RespondJSON(c, http.StatusForbidden, result.Message, result)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Scan resolved", result)
}

// SessionState reports whether the device's session is still current; a
// stale epoch resets the device to takeaway and says so.
func (sc *ScanController) SessionState(c *gin.Context) {
	result, err := sc.Resolver.CheckSessionState(deviceKey(c))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session state", result)
}
