package reports

import (
	"context"
	"sort"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/shopspring/decimal"
)

type CategorySummaryDetail struct {
	CategoryId       int                 `json:"category_id"`
	CategoryName     string              `json:"category_name"`
	Type             models.CategoryType `json:"type"`
	Amount           decimal.Decimal     `json:"amount"`
	TransactionCount int                 `json:"transaction_count"`
}

type CategorySummary struct {
	StartDate    models.MyDateString      `json:"start_date"`
	EndDate      models.MyDateString      `json:"end_date"`
	TotalIncome  decimal.Decimal          `json:"total_income"`
	TotalExpense decimal.Decimal          `json:"total_expense"`
	Net          decimal.Decimal          `json:"net"`
	Details      []*CategorySummaryDetail `json:"details"`
}

// GetCategorySummary totals transactions (net of discount) per category in [start, end].
func GetCategorySummary(ctx context.Context, start models.MyDateString, end models.MyDateString, storeId *int) (*CategorySummary, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if start.IsZero() || end.IsZero() {
		return nil, utils.Invalid("start and end dates are required")
	}
	if end.Time().Before(start.Time()) {
		return nil, utils.Invalid("end date is before start date")
	}
	started := time.Now()
	storeKey := 0
	if storeId != nil {
		storeKey = *storeId
	}
	cacheKey := reportCacheKey(reportCategorySummary, baseId, start.String(), end.String(), storeKey)

	var cached CategorySummary
	if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
		return &cached, nil
	}

	filter := models.TransactionFilter{StartDate: &start, EndDate: &end, StoreId: storeId}
	dbCtx := filter.Apply(config.GetDB().WithContext(ctx).Model(&models.Transaction{}).Where("base_id = ?", baseId))

	var details []*CategorySummaryDetail
	err := dbCtx.
		Select("category_id, type, SUM(amount - discount) AS amount, COUNT(*) AS transaction_count").
		Group("category_id, type").
		Scan(&details).Error
	if err != nil {
		return nil, err
	}

	categories, err := models.GetCategories(ctx, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	result := &CategorySummary{
		StartDate:    start,
		EndDate:      end,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Details:      details,
	}
	for _, row := range details {
		row.CategoryName = names[row.CategoryId]
		if row.Type == models.CategoryTypeIncome {
			result.TotalIncome = result.TotalIncome.Add(row.Amount)
		} else {
			result.TotalExpense = result.TotalExpense.Add(row.Amount)
		}
	}
	result.Net = result.TotalIncome.Sub(result.TotalExpense)
	sort.SliceStable(result.Details, func(i, j int) bool {
		if result.Details[i].Type != result.Details[j].Type {
			return result.Details[i].Type == models.CategoryTypeIncome
		}
		return result.Details[i].Amount.GreaterThan(result.Details[j].Amount)
	})

	_ = cacheSet(cacheKey, result)
	logSlowReport(ctx, reportCategorySummary, started, nil)
	return result, nil
}
