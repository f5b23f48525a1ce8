package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
)

const baseHeader = "x-base-id"

// BaseMiddleware picks the client base for the request from the x-base-id header,
// falling back to the user's default base, and checks the user may act on it.
// Must run after CurrentUserMiddleware.
func BaseMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		uid, ok := utils.GetUsernameFromContext(ctx)
		if !ok || uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, err := models.GetUserByUID(ctx, uid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		baseId := strings.TrimSpace(c.GetHeader(baseHeader))
		if baseId == "" && user.DefaultBaseId != nil {
			baseId = *user.DefaultBaseId
		}
		if baseId == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": utils.ErrorBaseRequired.Error()})
			return
		}

		allowed, err := models.CanAccessBase(ctx, user, baseId)
		if err != nil {
			config.LogError(config.GetLogger(), "baseMiddleware.go", "BaseMiddleware", "CanAccessBase", baseId, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		base, err := models.GetClientBase(ctx, baseId)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "client base not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if base.IsActive != nil && !*base.IsActive && !user.Admin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "client base is disabled"})
			return
		}

		c.Request = c.Request.WithContext(utils.SetBaseIdInContext(ctx, baseId))
		c.Next()
	}
}
