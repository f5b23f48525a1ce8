package workflow

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffectedDaysIncludesOldAndNewPayloads(t *testing.T) {
	storeA, storeB := 1, 2
	oldObj, _ := json.Marshal(map[string]any{"store_id": storeA, "date": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	newObj, _ := json.Marshal(map[string]any{"store_id": storeB, "date": time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)})

	days, err := affectedDays(config.PubSubMessage{
		StoreId:   storeB,
		EventDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		OldObj:    oldObj,
		NewObj:    newObj,
	})
	if err != nil {
		t.Fatalf("affectedDays: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 distinct days, got %d: %+v", len(days), days)
	}
	if days[0].StoreId != storeB || days[1].StoreId != storeA {
		t.Fatalf("unexpected order or stores: %+v", days)
	}
}

func TestAffectedDaysNullStore(t *testing.T) {
	oldObj := []byte(`{"store_id":null,"date":"2024-03-01T00:00:00Z"}`)
	days, err := affectedDays(config.PubSubMessage{OldObj: oldObj})
	if err != nil {
		t.Fatalf("affectedDays: %v", err)
	}
	if len(days) != 1 || days[0].StoreId != 0 {
		t.Fatalf("expected one day without store, got %+v", days)
	}
}

func TestAffectedDaysRejectsBadPayload(t *testing.T) {
	if _, err := affectedDays(config.PubSubMessage{NewObj: []byte("{")}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestProcessMessageRebuildsSummaryOnce(t *testing.T) {
	setupDB(t)
	ctx := newBase(t)
	vendas := category(t, ctx, "Vendas")
	aluguel := category(t, ctx, "Aluguel")

	for _, in := range []models.NewTransaction{
		{Description: "venda", Amount: amount("100"), Discount: amount("10"), CategoryId: vendas.ID, Date: date(t, "2024-07-01"), Type: models.CategoryTypeIncome},
		{Description: "aluguel", Amount: amount("40"), CategoryId: aluguel.ID, Date: date(t, "2024-07-01"), Type: models.CategoryTypeExpense},
	} {
		input := in
		_, err := models.CreateTransaction(ctx, &input)
		require.NoError(t, err)
	}

	processor := NewOutboxDirectProcessor(config.GetDB(), config.GetLogger())
	processed := processor.ProcessOnce(context.Background())
	assert.GreaterOrEqual(t, processed, 2)

	left, err := models.ListUnprocessedOutbox(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, left)

	summaries, err := models.GetStoreDailySummaries(ctx, date(t, "2024-07-01"), date(t, "2024-07-01"), nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].TotalIncome.Equal(amount("90").Decimal))
	assert.True(t, summaries[0].TotalExpense.Equal(amount("40").Decimal))
	assert.Equal(t, 2, summaries[0].TransactionCount)

	// a redelivery of an already handled message is skipped
	var rec models.PubSubMessageRecord
	require.NoError(t, config.GetDB().Where("reference_type = ?", models.ReferenceTypeTransaction).First(&rec).Error)
	require.NoError(t, ProcessMessage(context.Background(), nil, models.ConvertToPubSubMessage(rec)))

	var keys int64
	require.NoError(t, config.GetDB().Model(&models.IdempotencyKey{}).
		Where("message_id = ? AND status = ?", strconv.Itoa(rec.ID), models.IdempotencyStatusSucceeded).Count(&keys).Error)
	assert.Equal(t, int64(1), keys)

	again, err := models.GetStoreDailySummaries(ctx, date(t, "2024-07-01"), date(t, "2024-07-01"), nil)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 2, again[0].TransactionCount)
}

func TestProcessMessageDeleteRemovesSummary(t *testing.T) {
	setupDB(t)
	ctx := newBase(t)
	vendas := category(t, ctx, "Vendas")

	tr, err := models.CreateTransaction(ctx, &models.NewTransaction{
		Description: "venda", Amount: amount("15"), CategoryId: vendas.ID, Date: date(t, "2024-08-10"), Type: models.CategoryTypeIncome,
	})
	require.NoError(t, err)
	processor := NewOutboxDirectProcessor(config.GetDB(), nil)
	processor.ProcessOnce(context.Background())

	_, err = models.DeleteTransaction(ctx, tr.ID)
	require.NoError(t, err)
	processor.ProcessOnce(context.Background())

	summaries, err := models.GetStoreDailySummaries(ctx, date(t, "2024-08-10"), date(t, "2024-08-10"), nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestProcessMessageRequiresBase(t *testing.T) {
	if err := ProcessMessage(context.Background(), nil, config.PubSubMessage{ReferenceType: "TRANSACTION"}); err == nil {
		t.Fatalf("expected error for message without base")
	}
}
