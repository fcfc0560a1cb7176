package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/utils"
)

// Auth memeriksa token staff. Jika Enabled false semua request diteruskan
// tanpa identitas.
type Auth struct {
	Tokens  *utils.TokenIssuer
	Enabled bool
}

func NewAuth(tokens *utils.TokenIssuer, enabled bool) *Auth {
	return &Auth{Tokens: tokens, Enabled: enabled}
}

// AuthMiddleware -> Authorization: Bearer <token>
func (a *Auth) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("format token tidak valid"))
			c.Abort()
			return
		}

		if !a.authenticate(c, strings.TrimPrefix(authHeader, "Bearer ")) {
			utils.RespondError(c, http.StatusUnauthorized, utils.ErrInvalidToken)
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate -> simpan user_id, name dan role ke context
func (a *Auth) authenticate(c *gin.Context, tokenString string) bool {
	claims, err := a.Tokens.ParseToken(tokenString)
	if err != nil {
		return false
	}

	c.Set("user_id", claims.UserID)
	c.Set("name", claims.Name)
	c.Set("role", claims.Role)
	return true
}
