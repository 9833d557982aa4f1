package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/restoscan/resto-app/utils"
)

// AuthMiddleware validates the bearer token and exposes its subject and
// role to handlers. Customer tokens carry the device key as subject;
// staff tokens carry the staff id.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		if claims.SubjectID == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid subject in token"))
			c.Abort()
			return
		}

		c.Set("subject_id", claims.SubjectID)
		c.Set("role", claims.Role)

		c.Next()
	}
}
