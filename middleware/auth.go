package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"staybook/services"

	"github.com/gin-gonic/gin"
)

const (
	CookieName       = "token"
	currentUserIDKey = "currentUserID"
)

// TokenFromRequest reads the credential from the token cookie, falling back
// to an Authorization: Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(CookieName); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware rejects requests without a valid credential and stores the
// caller id for handlers.
func AuthMiddleware(resolver *services.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolver.Resolve(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			if errors.Is(err, services.ErrUnavailable) {
				c.Header("Retry-After", "1")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"code": 0, "kind": "unavailable", "mess": "Identity service unavailable, retry later"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 0, "kind": "unauthenticated", "mess": "Unauthenticated"})
			return
		}

		c.Set(currentUserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth resolves the caller when a valid credential is present and
// otherwise lets the request through as anonymous.
func OptionalAuth(resolver *services.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := TokenFromRequest(c); token != "" {
			if userID, err := resolver.Resolve(c.Request.Context(), token); err == nil {
				c.Set(currentUserIDKey, userID)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller, or 0 for anonymous.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(currentUserIDKey)
}
