package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/utils"
)

// RequireRole -> hanya role yang disebut yang boleh lewat. admin selalu boleh.
func (a *Auth) RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]bool{"admin": true}
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		if !a.Enabled {
			c.Next()
			return
		}

		userRole := c.GetString("role")
		if userRole == "" {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}
		if !allowed[userRole] {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", strings.Join(roles, " or ")))
			c.Abort()
			return
		}

		c.Next()
	}
}
