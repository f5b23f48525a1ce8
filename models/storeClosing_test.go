package models_test

import (
	"testing"

	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) models.MyDateString {
	t.Helper()
	d, err := models.ParseMyDate(s)
	require.NoError(t, err)
	return d
}

func TestSaveStoreClosingComputesTotals(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Mercado")

	store, err := models.GetDefaultStore(ctx)
	require.NoError(t, err)
	dinheiro := movementTypeByName(t, ctx, "Dinheiro")
	sangria := movementTypeByName(t, ctx, "Sangria")
	troco := movementTypeByName(t, ctx, "Troco")

	closing, err := models.SaveStoreClosing(ctx, &models.NewStoreClosing{
		StoreId:        store.ID,
		Date:           mustDate(t, "2024-03-10"),
		InitialBalance: money("100"),
		FinalBalance:   money("420.50"),
		Items: []*models.NewMovementItem{
			{MovementTypeId: dinheiro.ID, Amount: money("300"), Discount: money("10")},
			{MovementTypeId: dinheiro.ID, Amount: money("50.50")},
			{MovementTypeId: sangria.ID, Amount: money("40"), Discount: money("5")},
			{MovementTypeId: troco.ID, Amount: money("20")},
		},
	})
	require.NoError(t, err)

	assert.True(t, closing.TotalEntradas.Equal(dec("340.50")), closing.TotalEntradas.String())
	assert.True(t, closing.TotalSaidas.Equal(dec("40")), closing.TotalSaidas.String())
	assert.True(t, closing.TotalOutros.Equal(dec("20")), closing.TotalOutros.String())
	assert.True(t, closing.NetResult.Equal(dec("320.50")), closing.NetResult.String())
	assert.Len(t, closing.Items, 4)

	saved, err := models.GetStoreClosing(ctx, closing.ID)
	require.NoError(t, err)
	assert.Len(t, saved.Items, 4)
	assert.True(t, saved.NetResult.Equal(dec("320.50")))
}

func TestSaveStoreClosingReplacesSameDay(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Mercado")

	store, err := models.GetDefaultStore(ctx)
	require.NoError(t, err)
	pix := movementTypeByName(t, ctx, "PIX")

	first, err := models.SaveStoreClosing(ctx, &models.NewStoreClosing{
		StoreId: store.ID,
		Date:    mustDate(t, "2024-03-11"),
		Items: []*models.NewMovementItem{
			{MovementTypeId: pix.ID, Amount: money("10")},
			{MovementTypeId: pix.ID, Amount: money("20")},
		},
	})
	require.NoError(t, err)

	second, err := models.SaveStoreClosing(ctx, &models.NewStoreClosing{
		StoreId:      store.ID,
		Date:         mustDate(t, "2024-03-11"),
		FinalBalance: money("5"),
		Items: []*models.NewMovementItem{
			{MovementTypeId: pix.ID, Amount: money("7")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	saved, err := models.GetStoreClosing(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, saved.Items, 1)
	assert.True(t, saved.TotalEntradas.Equal(dec("7")))
	assert.True(t, saved.NetResult.Equal(dec("5")))
}

func TestSaveStoreClosingRejectsForeignMovementType(t *testing.T) {
	setupDB(t)
	ctxA, _ := newBase(t, "Base A")
	ctxB, _ := newBase(t, "Base B")

	storeA, err := models.GetDefaultStore(ctxA)
	require.NoError(t, err)
	typeB := movementTypeByName(t, ctxB, "PIX")

	_, err = models.SaveStoreClosing(ctxA, &models.NewStoreClosing{
		StoreId: storeA.ID,
		Date:    mustDate(t, "2024-03-12"),
		Items:   []*models.NewMovementItem{{MovementTypeId: typeB.ID, Amount: money("1")}},
	})
	assert.Error(t, err)
}

func TestSaveStoreClosingReplacesTransactions(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Mercado")

	store, err := models.GetDefaultStore(ctx)
	require.NoError(t, err)
	vendas := categoryByName(t, ctx, "Vendas")
	date := mustDate(t, "2024-03-13")

	for _, amount := range []string{"10", "15"} {
		_, err := models.CreateTransaction(ctx, &models.NewTransaction{
			Description: "venda balcão",
			Amount:      money(amount),
			CategoryId:  vendas.ID,
			Date:        date,
			Type:        models.CategoryTypeIncome,
			StoreId:     &store.ID,
		})
		require.NoError(t, err)
	}

	replace := true
	_, err = models.SaveStoreClosing(ctx, &models.NewStoreClosing{
		StoreId:             store.ID,
		Date:                date,
		ReplaceTransactions: &replace,
	})
	require.NoError(t, err)

	remaining, err := models.ListTransactions(ctx, models.TransactionFilter{StoreId: &store.ID})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCalculateClosingPreviewDoesNotPersist(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Mercado")

	store, err := models.GetDefaultStore(ctx)
	require.NoError(t, err)
	dinheiro := movementTypeByName(t, ctx, "Dinheiro")

	preview, err := models.CalculateClosingPreview(ctx, &models.NewStoreClosing{
		StoreId:        store.ID,
		Date:           mustDate(t, "2024-03-14"),
		InitialBalance: money("50"),
		FinalBalance:   money("60"),
		Items: []*models.NewMovementItem{
			{MovementTypeId: dinheiro.ID, Amount: money("12"), Discount: money("2")},
			{MovementTypeId: 999999, Amount: money("100")},
		},
	})
	require.NoError(t, err)
	assert.True(t, preview.TotalEntradas.Equal(dec("10")))
	assert.True(t, preview.NetResult.Equal(dec("10")))
	assert.Zero(t, preview.ID)

	closings, err := models.ListStoreClosings(ctx, models.MyDateString{}, models.MyDateString{}, nil, false)
	require.NoError(t, err)
	assert.Empty(t, closings)
}

func TestSaveStoreClosingRejectsDiscountAboveAmount(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Mercado")

	store, err := models.GetDefaultStore(ctx)
	require.NoError(t, err)
	pix := movementTypeByName(t, ctx, "PIX")

	_, err = models.SaveStoreClosing(ctx, &models.NewStoreClosing{
		StoreId: store.ID,
		Date:    mustDate(t, "2024-03-12"),
		Items: []*models.NewMovementItem{
			{MovementTypeId: pix.ID, Amount: money("10"), Discount: money("10")},
			{MovementTypeId: pix.ID, Amount: money("10"), Discount: money("10.01")},
		},
	})
	require.ErrorIs(t, err, utils.ErrorInvalid)
	assert.Contains(t, err.Error(), "item 2: discount cannot exceed amount")
}
