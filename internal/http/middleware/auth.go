// README: Bearer-credential authentication and role guards.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridehub/internal/auth"
	"ridehub/internal/types"
)

const identityKey = "caller_identity"

// Authenticate resolves the bearer credential to a caller identity and
// stashes it in the request context. Requests without a valid credential
// are rejected here, before any handler runs.
func Authenticate(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "authorization header required")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			abort(c, http.StatusUnauthorized, "bearer token required")
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
func RequireRoles(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CallerIdentity(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "unauthorized access")
	}
}

// CallerIdentity returns the identity set by Authenticate.
func CallerIdentity(c *gin.Context) (types.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return types.Identity{}, false
	}
	identity, ok := v.(types.Identity)
	return identity, ok
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"statusCode": status,
		"message":    msg,
	})
}
