package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware -> token lewat ?token= karena browser tidak bisa
// mengirim header pada handshake websocket
func (a *Auth) WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled {
			c.Next()
			return
		}

		token := c.Query("token")
		if token == "" || !a.authenticate(c, token) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
