package middleware

import (
	"fmt"
	"strings"

	"github.com/akulinichev/reminderhub/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Context keys set when a request carries a valid bearer token.
const (
	PrincipalKey = "principal"
	OwnerIDKey   = "owner_id"
	IsAdminKey   = "is_admin"
)

// Principal extracts the authenticated user from an Authorization: Bearer
// token. Identity issuing lives in the surrounding application; this core
// only needs to know whether a principal is present and who it is. An
// absent or invalid token is not an error here — the request simply carries
// no principal and downstream gates decide what that means.
func Principal(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.Next()
			return
		}

		sub, _ := claims["sub"].(string)
		admin, _ := claims["admin"].(bool)

		c.Set(PrincipalKey, sub)
		c.Set(OwnerIDKey, sub)
		c.Set(IsAdminKey, admin)
		c.Next()
	}
}
