package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenDatabase(sqlite.Open(fmt.Sprintf("file:wf_%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	config.SetDB(db)
	config.SetRedisClient(nil)
	require.NoError(t, models.MigrateTable())
}

func newBase(t *testing.T) context.Context {
	t.Helper()
	admin := utils.SetIsAdminInContext(context.Background(), true)
	admin = utils.SetUsernameInContext(admin, "admin-uid")
	base, err := models.CreateClientBase(admin, &models.NewClientBase{Name: "Padaria"})
	require.NoError(t, err)

	ctx := utils.SetBaseIdInContext(context.Background(), base.ID)
	ctx = utils.SetUsernameInContext(ctx, "member-uid")
	ctx = utils.SetUserNameInContext(ctx, "Member")
	return ctx
}

func category(t *testing.T, ctx context.Context, name string) *models.Category {
	t.Helper()
	categories, err := models.GetCategories(ctx, &name, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	return categories[0]
}

func date(t *testing.T, s string) models.MyDateString {
	t.Helper()
	d, err := models.ParseMyDate(s)
	require.NoError(t, err)
	return d
}

func amount(s string) utils.Money {
	return utils.Money{Decimal: decimal.RequireFromString(s)}
}
