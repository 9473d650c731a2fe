package middleware

import (
	"net/http"
	"strings"

	"rpsls_wager/internal/logger"
	"rpsls_wager/internal/service"

	"github.com/gin-gonic/gin"
)

// PartyKey is the gin context key holding the authenticated party.
const PartyKey = "party"

// JWT requires a bearer token and stores its party in the context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		party, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PartyKey, party)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), "party", party))
		c.Next()
	}
}
