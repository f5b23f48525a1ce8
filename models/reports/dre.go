package reports

import (
	"context"
	"sort"
	"time"

	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/shopspring/decimal"
)

type DRETotals struct {
	TotalEntradas decimal.Decimal `json:"total_entradas"`
	TotalSaidas   decimal.Decimal `json:"total_saidas"`
	TotalOutros   decimal.Decimal `json:"total_outros"`
	NetResult     decimal.Decimal `json:"net_result"`
	Resultado     decimal.Decimal `json:"resultado"`
	ClosingCount  int             `json:"closing_count"`
}

func zeroTotals() DRETotals {
	return DRETotals{
		TotalEntradas: decimal.Zero,
		TotalSaidas:   decimal.Zero,
		TotalOutros:   decimal.Zero,
		NetResult:     decimal.Zero,
		Resultado:     decimal.Zero,
	}
}

func (t *DRETotals) addClosing(c *models.StoreClosing) {
	t.TotalEntradas = t.TotalEntradas.Add(c.TotalEntradas)
	t.TotalSaidas = t.TotalSaidas.Add(c.TotalSaidas)
	t.TotalOutros = t.TotalOutros.Add(c.TotalOutros)
	t.NetResult = t.NetResult.Add(c.NetResult)
	t.Resultado = t.TotalEntradas.Sub(t.TotalSaidas)
	t.ClosingCount++
}

func (t *DRETotals) addTotals(o DRETotals) {
	t.TotalEntradas = t.TotalEntradas.Add(o.TotalEntradas)
	t.TotalSaidas = t.TotalSaidas.Add(o.TotalSaidas)
	t.TotalOutros = t.TotalOutros.Add(o.TotalOutros)
	t.NetResult = t.NetResult.Add(o.NetResult)
	t.Resultado = t.TotalEntradas.Sub(t.TotalSaidas)
	t.ClosingCount += o.ClosingCount
}

type DREStoreResult struct {
	StoreId   int    `json:"store_id"`
	StoreName string `json:"store_name"`
	DRETotals
}

type DREResult struct {
	StartDate    models.MyDateString `json:"start_date"`
	EndDate      models.MyDateString `json:"end_date"`
	StoreId      *int                `json:"store_id"`
	PerStore     []*DREStoreResult   `json:"per_store"`
	Consolidated DRETotals           `json:"consolidated"`
}

func inPeriod(date time.Time, start time.Time, end time.Time) bool {
	d := models.DateOnly(date)
	if !start.IsZero() && d.Before(models.DateOnly(start)) {
		return false
	}
	if !end.IsZero() && d.After(models.DateOnly(end)) {
		return false
	}
	return true
}

// GenerateDRE folds closings dated within [start, end] into per-store and consolidated
// totals. A zero start or end leaves that side open; storeId restricts to one store.
// Stores are listed by ascending id and the consolidated totals are their sum.
func GenerateDRE(closings []*models.StoreClosing, start time.Time, end time.Time, storeId *int) *DREResult {
	byStore := make(map[int]*DREStoreResult)
	for _, c := range closings {
		if c == nil || !inPeriod(c.Date, start, end) {
			continue
		}
		if storeId != nil && *storeId > 0 && c.StoreId != *storeId {
			continue
		}
		row, ok := byStore[c.StoreId]
		if !ok {
			row = &DREStoreResult{StoreId: c.StoreId, DRETotals: zeroTotals()}
			byStore[c.StoreId] = row
		}
		row.addClosing(c)
	}

	result := &DREResult{
		StartDate:    models.NewMyDate(start),
		EndDate:      models.NewMyDate(end),
		StoreId:      storeId,
		PerStore:     make([]*DREStoreResult, 0, len(byStore)),
		Consolidated: zeroTotals(),
	}
	if start.IsZero() {
		result.StartDate = models.MyDateString{}
	}
	if end.IsZero() {
		result.EndDate = models.MyDateString{}
	}
	for _, row := range byStore {
		result.PerStore = append(result.PerStore, row)
	}
	sort.Slice(result.PerStore, func(i, j int) bool {
		return result.PerStore[i].StoreId < result.PerStore[j].StoreId
	})
	for _, row := range result.PerStore {
		result.Consolidated.addTotals(row.DRETotals)
	}
	return result
}

// GenerateDREReport builds the DRE of the current base from its stored closings.
func GenerateDREReport(ctx context.Context, start models.MyDateString, end models.MyDateString, storeId *int) (*DREResult, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	started := time.Now()
	storeKey := 0
	if storeId != nil {
		storeKey = *storeId
	}
	cacheKey := reportCacheKey(reportDRE, baseId, start.String(), end.String(), storeKey)

	var cached DREResult
	if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
		return &cached, nil
	}

	closings, err := models.ListStoreClosings(ctx, start, end, storeId, false)
	if err != nil {
		return nil, err
	}
	result := GenerateDRE(closings, start.Time(), end.Time(), storeId)

	stores, err := models.GetStores(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(stores))
	for _, s := range stores {
		names[s.ID] = s.Name
	}
	for _, row := range result.PerStore {
		row.StoreName = names[row.StoreId]
	}

	_ = cacheSet(cacheKey, result)
	logSlowReport(ctx, reportDRE, started, map[string]any{"closings": len(closings)})
	return result, nil
}
