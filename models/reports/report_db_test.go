package reports_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/models/reports"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBase(t *testing.T) context.Context {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenDatabase(sqlite.Open(fmt.Sprintf("file:rep_%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	config.SetDB(db)
	config.SetRedisClient(nil)
	require.NoError(t, models.MigrateTable())

	admin := utils.SetIsAdminInContext(context.Background(), true)
	admin = utils.SetUsernameInContext(admin, "admin-uid")
	base, err := models.CreateClientBase(admin, &models.NewClientBase{Name: "Loja Centro"})
	require.NoError(t, err)
	ctx := utils.SetBaseIdInContext(context.Background(), base.ID)
	return utils.SetUsernameInContext(ctx, "member-uid")
}

func mustDate(t *testing.T, s string) models.MyDateString {
	t.Helper()
	d, err := models.ParseMyDate(s)
	require.NoError(t, err)
	return d
}

func money(s string) utils.Money {
	return utils.Money{Decimal: decimal.RequireFromString(s)}
}

func TestGenerateDREReportFromClosings(t *testing.T) {
	ctx := setupBase(t)
	store, err := models.GetDefaultStore(ctx)
	require.NoError(t, err)
	name := "Dinheiro"
	dinheiro, err := models.GetMovementTypes(ctx, &name, nil)
	require.NoError(t, err)
	name = "Sangria"
	sangria, err := models.GetMovementTypes(ctx, &name, nil)
	require.NoError(t, err)

	for _, day := range []string{"2024-04-01", "2024-04-02", "2024-05-01"} {
		_, err := models.SaveStoreClosing(ctx, &models.NewStoreClosing{
			StoreId:        store.ID,
			Date:           mustDate(t, day),
			InitialBalance: money("0"),
			FinalBalance:   money("80"),
			Items: []*models.NewMovementItem{
				{MovementTypeId: dinheiro[0].ID, Amount: money("100")},
				{MovementTypeId: sangria[0].ID, Amount: money("20")},
			},
		})
		require.NoError(t, err)
	}

	result, err := reports.GenerateDREReport(ctx, mustDate(t, "2024-04-01"), mustDate(t, "2024-04-30"), nil)
	require.NoError(t, err)
	require.Len(t, result.PerStore, 1)
	assert.Equal(t, "Matriz", result.PerStore[0].StoreName)
	assert.Equal(t, 2, result.Consolidated.ClosingCount)
	assert.True(t, result.Consolidated.TotalEntradas.Equal(decimal.RequireFromString("200")))
	assert.True(t, result.Consolidated.Resultado.Equal(decimal.RequireFromString("160")))
	assert.True(t, result.Consolidated.NetResult.Equal(decimal.RequireFromString("160")))
}

func TestCategorySummary(t *testing.T) {
	ctx := setupBase(t)
	vendasName, aluguelName := "Vendas", "Aluguel"
	vendas, err := models.GetCategories(ctx, &vendasName, nil, nil)
	require.NoError(t, err)
	aluguel, err := models.GetCategories(ctx, &aluguelName, nil, nil)
	require.NoError(t, err)

	for _, in := range []models.NewTransaction{
		{Description: "v1", Amount: money("100"), Discount: money("5"), CategoryId: vendas[0].ID, Date: mustDate(t, "2024-04-03"), Type: models.CategoryTypeIncome},
		{Description: "v2", Amount: money("50"), CategoryId: vendas[0].ID, Date: mustDate(t, "2024-04-04"), Type: models.CategoryTypeIncome},
		{Description: "a1", Amount: money("70"), CategoryId: aluguel[0].ID, Date: mustDate(t, "2024-04-05"), Type: models.CategoryTypeExpense},
		{Description: "fora", Amount: money("999"), CategoryId: vendas[0].ID, Date: mustDate(t, "2024-06-01"), Type: models.CategoryTypeIncome},
	} {
		input := in
		_, err := models.CreateTransaction(ctx, &input)
		require.NoError(t, err)
	}

	summary, err := reports.GetCategorySummary(ctx, mustDate(t, "2024-04-01"), mustDate(t, "2024-04-30"), nil)
	require.NoError(t, err)
	require.Len(t, summary.Details, 2)
	assert.Equal(t, "Vendas", summary.Details[0].CategoryName)
	assert.Equal(t, 2, summary.Details[0].TransactionCount)
	assert.True(t, summary.TotalIncome.Equal(decimal.RequireFromString("145")), summary.TotalIncome.String())
	assert.True(t, summary.TotalExpense.Equal(decimal.RequireFromString("70")))
	assert.True(t, summary.Net.Equal(decimal.RequireFromString("75")))

	_, err = reports.GetCategorySummary(ctx, mustDate(t, "2024-04-30"), mustDate(t, "2024-04-01"), nil)
	assert.Error(t, err)
}
