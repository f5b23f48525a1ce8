package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/sirupsen/logrus"
)

// CorrelationMiddleware generates a correlation id once per request and attaches it to the context.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header("x-correlation-id", cid)
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	}
}

// ReadinessMiddleware returns 503 until the database and Redis are connected.
// /healthz always answers so the startup probe passes while dependencies connect.
func ReadinessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	}
}

// ErrorLogger logs only requests that collected errors.
func ErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":           c.FullPath(),
				"status":         c.Writer.Status(),
				"correlation_id": cid,
			}).Error(c.Errors.String())
		}
	}
}

// WebSocketCredentials copies ?access_token=, ?token= and ?base_id= into the
// matching headers for the WebSocket path, since browsers cannot set headers on
// the upgrade request. It must run before the session and auth middleware.
func WebSocketCredentials(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path != path {
			c.Next()
			return
		}
		q := c.Request.URL.Query()
		if v := q.Get("access_token"); v != "" && c.GetHeader("Authorization") == "" {
			c.Request.Header.Set("Authorization", "Bearer "+v)
		}
		if v := q.Get("token"); v != "" && c.GetHeader("token") == "" {
			c.Request.Header.Set("token", v)
		}
		if v := q.Get("base_id"); v != "" && c.GetHeader(baseHeader) == "" {
			c.Request.Header.Set(baseHeader, v)
		}
		c.Next()
	}
}
