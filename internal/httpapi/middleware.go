package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lostfound/internal/auth"
	"lostfound/internal/policy"
	"lostfound/internal/users"
)

const ctxUserKey = "user"

// RequireUser enforces a bearer token and loads the account behind it. The
// token carries only the user id; the record is re-fetched on every request
// so a role change (or deletion) takes effect without waiting for expiry.
func (h *Handler) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		userID, err := h.tokens.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": tokenErrorMessage(err)})
			return
		}
		u, err := h.users.Get(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Must run after RequireUser.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actorFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, auth.ErrTokenMalformed):
		return "token malformed"
	default:
		return "invalid token"
	}
}

func currentUser(c *gin.Context) users.User {
	u, _ := c.MustGet(ctxUserKey).(users.User)
	return u
}

func actorFrom(c *gin.Context) policy.Actor {
	u := currentUser(c)
	return policy.Actor{ID: u.ID, Role: u.Role}
}
