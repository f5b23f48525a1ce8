package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/realtime"
	"github.com/mmdatafocus/finance_backend/utils"
)

// realtimeHandler upgrades to a WebSocket subscribed to the request's base.
func realtimeHandler(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		baseId, _ := utils.GetBaseIdFromContext(ctx)
		uid, _ := utils.GetUsernameFromContext(ctx)
		if err := hub.Serve(c.Writer, c.Request, baseId, uid); err != nil {
			config.LogError(config.GetLogger(), "realtime.go", "realtimeHandler", "upgrade", baseId, err)
		}
	}
}
