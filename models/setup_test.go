package models_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// setupDB opens a private in-memory database and migrates it. Redis is left
// unset so caches and locks are no-ops.
func setupDB(t *testing.T) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenDatabase(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	config.SetDB(db)
	config.SetRedisClient(nil)
	require.NoError(t, models.MigrateTable())
}

// useRedis points the cache layer at an in-process redis for one test.
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
	ctx := context.Background()
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetUsernameInContext(ctx, "admin-uid")
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Admin")
	return ctx
}

// newBase creates a seeded client base and returns a member context scoped to it.
func newBase(t *testing.T, name string) (context.Context, *models.ClientBase) {
	t.Helper()
	base, err := models.CreateClientBase(adminContext(), &models.NewClientBase{Name: name})
	require.NoError(t, err)

	ctx := context.Background()
	ctx = utils.SetBaseIdInContext(ctx, base.ID)
	ctx = utils.SetUsernameInContext(ctx, "member-uid")
	ctx = utils.SetUserIdInContext(ctx, 2)
	ctx = utils.SetUserNameInContext(ctx, "Member")
	return ctx, base
}

func movementTypeByName(t *testing.T, ctx context.Context, name string) *models.MovementType {
	t.Helper()
	types, err := models.GetMovementTypes(ctx, &name, nil)
	require.NoError(t, err)
	require.NotEmpty(t, types)
	return types[0]
}

func categoryByName(t *testing.T, ctx context.Context, name string) *models.Category {
	t.Helper()
	categories, err := models.GetCategories(ctx, &name, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	return categories[0]
}

func money(s string) utils.Money {
	return utils.Money{Decimal: dec(s)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
