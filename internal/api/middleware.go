package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/claimflow/internal/auth"
	"github.com/Veraticus/claimflow/internal/model"
)

const principalKey = "principal"

// requireAuth validates the bearer token and stashes the principal on the
// request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := auth.VerifyToken(token, s.secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(principalKey, claims)
		c.Next()
	}
}

// requireRole rejects principals whose role is not in the allowed set.
func requireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// principal returns the authenticated token claims, or nil outside the
// authenticated route groups.
func principal(c *gin.Context) *auth.TokenClaims {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*auth.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
