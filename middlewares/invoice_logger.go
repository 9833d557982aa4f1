package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/restoscan/resto-app/utils"
)

// InvoiceLoggerMiddleware traces printable ticket generation so failed
// renders are visible next to the invoice reference in the logs.
func InvoiceLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.InfoLogger.Printf("Rendering ticket for invoice %s", c.Param("reference"))

		c.Next()

		if c.Writer.Status() == 200 {
			utils.InfoLogger.Printf("Ticket rendered for invoice %s", c.Param("reference"))
		} else {
			utils.ErrorLogger.Printf("Failed to render ticket for invoice %s", c.Param("reference"))
		}
	}
}
