package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/restoscan/resto-app/utils"
)

// WebSocketAuthMiddleware authenticates the upgrade request. Browsers
// cannot set headers on WebSocket handshakes, so the token rides in the
// query string.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("subject_id", claims.SubjectID)
		c.Set("role", claims.Role)

		c.Next()
	}
}
