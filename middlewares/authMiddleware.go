package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
)

type authString string

const bearerPrefix = "Bearer "

// AuthMiddleware validates `Authorization: Bearer <jwt>`. The subject is the UID.
// A session already resolved by SessionMiddleware wins.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}
		if uid, ok := utils.GetUsernameFromContext(c.Request.Context()); ok && uid != "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(auth, bearerPrefix) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claims, err := utils.JwtValidate(strings.TrimSpace(auth[len(bearerPrefix):]))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), authString("auth"), claims)
		ctx = utils.SetUsernameInContext(ctx, claims.Subject)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func CtxValue(ctx context.Context) *utils.JwtCustomClaim {
	raw, _ := ctx.Value(authString("auth")).(*utils.JwtCustomClaim)
	return raw
}

// CurrentUserMiddleware loads the authenticated user, creating it on first sight of
// a bearer token, and puts its id, name and admin flag in the request context.
func CurrentUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		uid, ok := utils.GetUsernameFromContext(ctx)
		if !ok || uid == "" {
			c.Next()
			return
		}

		var (
			user *models.User
			err  error
		)
		if claims := CtxValue(ctx); claims != nil {
			user, err = models.EnsureUser(ctx, uid, claims.Email, claims.Name)
		} else {
			user, err = models.GetUserByUID(ctx, uid)
		}
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			config.LogError(config.GetLogger(), "authMiddleware.go", "CurrentUserMiddleware", "load user", uid, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !user.Active() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user is disabled"})
			return
		}

		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetUserNameInContext(ctx, user.Name)
		ctx = utils.SetIsAdminInContext(ctx, user.Admin())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anyone who is not a platform admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := utils.GetUserIdFromContext(ctx); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !utils.IsAdmin(ctx) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
