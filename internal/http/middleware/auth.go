package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/ride-profit/internal/auth"
	"github.com/nurpe/ride-profit/internal/model"
)

const principalKey = "principal"

// TokenParser turns a bearer token into a principal.
type TokenParser interface {
	Parse(raw string) (model.Principal, error)
}

var _ TokenParser = (*auth.Parser)(nil)

func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		principal, err := parser.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		SetPrincipal(c, principal)
		c.Next()
	}
}

func SetPrincipal(c *gin.Context, principal model.Principal) {
	c.Set(principalKey, principal)
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}
