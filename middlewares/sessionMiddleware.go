package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
)

const sessionHeader = "token"

// SessionMiddleware resolves the admin console `token` header to a UID.
// Requests without the header fall through to bearer authentication.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(sessionHeader))
		if token == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		uid, ok, err := models.ResolveSession(ctx, token)
		if err != nil {
			config.LogError(config.GetLogger(), "sessionMiddleware.go", "SessionMiddleware", "resolve session", nil, err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		ctx = utils.SetTokenInContext(ctx, token)
		ctx = utils.SetUsernameInContext(ctx, uid)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
