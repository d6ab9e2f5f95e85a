package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurakani/kurakani/utils"
)

// AuthMiddleware requires a valid bearer token and stores the username claim
// in the request context. Every failure mode gets the same message so the
// response never reveals which check rejected the token.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}
		username, err := utils.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("username", username)
		c.Next()
	}
}
