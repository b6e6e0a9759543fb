package auth

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const (
	// TokenHeader is the header the web client sends its session token in.
	TokenHeader = "x-auth-token"

	UserIDKey = "user_id"
	RolesKey  = "roles"
)

// Authenticate validates the session token and injects the caller identity
// into the gin context. Both "x-auth-token: <jwt>" and
// "Authorization: Bearer <jwt>" are accepted.
func Authenticate(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader(TokenHeader)
		if tokenStr == "" {
			tokenStr = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := issuer.ValidateToken(tokenStr)
		if err != nil {
			_, code := errors.MapToHTTPStatus(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code})
			return
		}

		c.Set(UserIDKey, domain.UserID(claims.UserID))
		c.Set(RolesKey, claims.Roles)
		c.Next()
	}
}

// RequireRole lets the request through only if the caller carries role.
// It must be chained after Authenticate.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !lo.Contains(RolesFrom(c), string(role)) {
			_, code := errors.MapToHTTPStatus(errors.ErrForbidden)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": code})
			return
		}
		c.Next()
	}
}

// UserIDFrom returns the authenticated caller.
func UserIDFrom(c *gin.Context) (domain.UserID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(domain.UserID)
	return id, ok
}

func RolesFrom(c *gin.Context) []string {
	return c.GetStringSlice(RolesKey)
}
