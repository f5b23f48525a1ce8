package middlewares_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/middlewares"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenDatabase(sqlite.Open(fmt.Sprintf("file:mw_%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	config.SetDB(db)
	config.SetRedisClient(nil)
	require.NoError(t, models.MigrateTable())
}

// useRedis installs an in-process redis as the shared client for one test.
func useRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetRedisClient(client)
	t.Cleanup(func() {
		config.SetRedisClient(nil)
		_ = client.Close()
	})
	return mr
}

func adminContext() context.Context {
	ctx := utils.SetIsAdminInContext(context.Background(), true)
	return utils.SetUsernameInContext(ctx, "admin-uid")
}

// router mounts the auth chain in front of an echo handler that reports
// what ended up in the request context.
func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.SessionMiddleware())
	r.Use(middlewares.AuthMiddleware())
	r.Use(middlewares.CurrentUserMiddleware())

	echo := func(c *gin.Context) {
		ctx := c.Request.Context()
		uid, _ := utils.GetUsernameFromContext(ctx)
		baseId, _ := utils.GetBaseIdFromContext(ctx)
		c.JSON(http.StatusOK, gin.H{"uid": uid, "base_id": baseId, "admin": utils.IsAdmin(ctx)})
	}
	r.GET("/me", middlewares.RequireUser(), echo)
	r.GET("/admin", middlewares.RequireAdmin(), echo)
	r.GET("/base", middlewares.RequireUser(), middlewares.BaseMiddleware(), echo)
	return r
}

func bearer(t *testing.T, uid string, isAdmin bool) string {
	t.Helper()
	token, err := utils.JwtGenerate(uid, uid+"@example.com", isAdmin)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnonymousRequestIsRejected(t *testing.T) {
	setupDB(t)
	w := do(router(), "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("x-correlation-id"))
}

func TestUnknownSessionTokenIsRejected(t *testing.T) {
	setupDB(t)
	w := do(router(), "/me", map[string]string{"token": "missing"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidBearerIsRejected(t *testing.T) {
	setupDB(t)
	w := do(router(), "/me", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router(), "/me", map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerCreatesUserOnFirstRequest(t *testing.T) {
	setupDB(t)
	w := do(router(), "/me", map[string]string{"Authorization": bearer(t, "uid-1", false)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"uid-1"`)

	user, err := models.GetUserByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1@example.com", user.Email)
	assert.False(t, user.Admin())
}

func TestAdminClaimIsNotTrusted(t *testing.T) {
	setupDB(t)
	// the admin flag comes from the user row, never from the token
	w := do(router(), "/admin", map[string]string{"Authorization": bearer(t, "uid-2", true)})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDisabledUserIsForbidden(t *testing.T) {
	setupDB(t)
	_, err := models.EnsureUser(context.Background(), "uid-3", "uid-3@example.com", "Three")
	require.NoError(t, err)
	active, err := models.ToggleUserAuthStatus(adminContext(), "uid-3")
	require.NoError(t, err)
	require.False(t, active)

	w := do(router(), "/me", map[string]string{"Authorization": bearer(t, "uid-3", false)})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBaseMiddlewareAppliesAccessRule(t *testing.T) {
	setupDB(t)
	base, err := models.CreateClientBase(adminContext(), &models.NewClientBase{Name: "Loja Centro"})
	require.NoError(t, err)
	other, err := models.CreateClientBase(adminContext(), &models.NewClientBase{Name: "Loja Norte"})
	require.NoError(t, err)
	_, err = models.AddAuthorizedUid(adminContext(), base.ID, &models.NewAuthorizedUid{Uid: "member"})
	require.NoError(t, err)

	r := router()
	auth := bearer(t, "member", false)

	// no header and no default base
	w := do(r, "/base", map[string]string{"Authorization": auth})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, "/base", map[string]string{"Authorization": auth, "x-base-id": base.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), base.ID)

	w = do(r, "/base", map[string]string{"Authorization": auth, "x-base-id": other.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBaseMiddlewareFallsBackToDefaultBase(t *testing.T) {
	setupDB(t)
	base, err := models.CreateClientBase(adminContext(), &models.NewClientBase{Name: "Loja Sul"})
	require.NoError(t, err)
	_, err = models.CreateAdminUser(adminContext(), &models.NewAdminUser{
		Email:    "owner@example.com",
		Name:     "Owner",
		Password: "secret123",
		Uid:      "owner",
		BaseId:   &base.ID,
	})
	require.NoError(t, err)

	w := do(router(), "/base", map[string]string{"Authorization": bearer(t, "owner", false)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), base.ID)
	assert.Contains(t, w.Body.String(), `"admin":true`)
}
