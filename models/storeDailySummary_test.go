package models_test

import (
	"testing"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfillStoreDailySummaries(t *testing.T) {
	setupDB(t)
	ctx, base := newBase(t, "Oficina")
	vendas := categoryByName(t, ctx, "Vendas")
	aluguel := categoryByName(t, ctx, "Aluguel")

	for _, in := range []models.NewTransaction{
		{Description: "v1", Amount: money("100"), Discount: money("5"), CategoryId: vendas.ID, Date: mustDate(t, "2024-03-10"), Type: models.CategoryTypeIncome},
		{Description: "v2", Amount: money("50"), CategoryId: vendas.ID, Date: mustDate(t, "2024-03-10"), Type: models.CategoryTypeIncome},
		{Description: "a1", Amount: money("30"), CategoryId: aluguel.ID, Date: mustDate(t, "2024-03-10"), Type: models.CategoryTypeExpense},
	} {
		input := in
		_, err := models.CreateTransaction(ctx, &input)
		require.NoError(t, err)
	}

	// a leftover row for a day that has no transactions
	stale := models.StoreDailySummary{
		BaseId:           base.ID,
		StoreId:          0,
		SummaryDate:      time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		TotalIncome:      dec("999"),
		TransactionCount: 1,
	}
	require.NoError(t, config.GetDB().Create(&stale).Error)

	n, err := models.BackfillStoreDailySummaries(ctx, base.ID, mustDate(t, "2024-03-01"), mustDate(t, "2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := models.GetStoreDailySummaries(ctx, mustDate(t, "2024-03-01"), mustDate(t, "2024-03-31"), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].TransactionCount)
	assert.True(t, rows[0].TotalIncome.Equal(dec("145")), rows[0].TotalIncome.String())
	assert.True(t, rows[0].TotalExpense.Equal(dec("30")))
	assert.True(t, rows[0].Net().Equal(dec("115")))

	_, err = models.BackfillStoreDailySummaries(ctx, base.ID, mustDate(t, "2024-03-31"), mustDate(t, "2024-03-01"))
	assert.Error(t, err)
}
