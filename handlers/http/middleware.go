package httpHandler

import (
	"net/http"
	"strings"

	"lung-server/auth"

	"github.com/gin-gonic/gin"
)

const (
	authUserKey = "auth_user_id"
	authCookie  = "Authorization"
)

// RequireAuth validates the bearer token (or Authorization cookie). With
// required=false requests without a token pass through, and so do requests
// carrying only a stale cookie. An explicit bearer token must be valid.
func RequireAuth(tokens *auth.Tokens, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := requestToken(c)
		if token == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
				return
			}
			c.Next()
			return
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			if fromCookie && !required {
				c.SetCookie(authCookie, "", -1, "", "", false, true)
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(authUserKey, userID)
		c.Next()
	}
}

// Authorize rejects requests whose token belongs to someone other than userID.
func Authorize(c *gin.Context, userID string) bool {
	authed, ok := c.Get(authUserKey)
	if !ok || userID == "" {
		return true
	}
	if authed.(string) != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return false
	}
	return true
}

// requestToken prefers the Authorization header and falls back to the cookie.
func requestToken(c *gin.Context) (string, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), false
		}
		return "", false
	}
	if cookie, err := c.Cookie(authCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}
