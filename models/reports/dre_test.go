package reports

import (
	"testing"
	"time"

	"github.com/mmdatafocus/finance_backend/models"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func closing(storeId int, date string, entradas, saidas, outros, net string) *models.StoreClosing {
	return &models.StoreClosing{
		StoreId:       storeId,
		Date:          day(date),
		TotalEntradas: d(entradas),
		TotalSaidas:   d(saidas),
		TotalOutros:   d(outros),
		NetResult:     d(net),
	}
}

func sampleClosings() []*models.StoreClosing {
	return []*models.StoreClosing{
		closing(2, "2024-01-10", "100", "30", "5", "70"),
		closing(1, "2024-01-10", "200", "50", "0", "150"),
		closing(1, "2024-01-11", "80.50", "10.25", "1", "70.25"),
		closing(2, "2024-02-01", "999", "1", "0", "998"),
		closing(3, "2023-12-31", "10", "0", "0", "10"),
	}
}

func TestGenerateDREPerStoreAndConsolidated(t *testing.T) {
	result := GenerateDRE(sampleClosings(), day("2024-01-01"), day("2024-01-31"), nil)

	if len(result.PerStore) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(result.PerStore))
	}
	if result.PerStore[0].StoreId != 1 || result.PerStore[1].StoreId != 2 {
		t.Fatalf("stores not in ascending order: %d, %d", result.PerStore[0].StoreId, result.PerStore[1].StoreId)
	}

	s1 := result.PerStore[0]
	if !s1.TotalEntradas.Equal(d("280.50")) || !s1.TotalSaidas.Equal(d("60.25")) || s1.ClosingCount != 2 {
		t.Fatalf("unexpected store 1 totals: %+v", s1.DRETotals)
	}
	if !s1.Resultado.Equal(d("220.25")) {
		t.Fatalf("expected store 1 resultado 220.25, got %s", s1.Resultado)
	}

	c := result.Consolidated
	if !c.TotalEntradas.Equal(d("380.50")) || !c.TotalSaidas.Equal(d("90.25")) || !c.TotalOutros.Equal(d("6")) {
		t.Fatalf("unexpected consolidated totals: %+v", c)
	}
	if !c.NetResult.Equal(d("290.25")) || c.ClosingCount != 3 {
		t.Fatalf("unexpected consolidated net/count: %s %d", c.NetResult, c.ClosingCount)
	}
	if !c.Resultado.Equal(c.TotalEntradas.Sub(c.TotalSaidas)) {
		t.Fatalf("resultado must equal entradas minus saidas")
	}
}

func TestGenerateDREConsolidatedEqualsSumOfStores(t *testing.T) {
	result := GenerateDRE(sampleClosings(), time.Time{}, time.Time{}, nil)

	sum := zeroTotals()
	for _, row := range result.PerStore {
		sum.addTotals(row.DRETotals)
	}
	c := result.Consolidated
	if !sum.TotalEntradas.Equal(c.TotalEntradas) || !sum.TotalSaidas.Equal(c.TotalSaidas) ||
		!sum.TotalOutros.Equal(c.TotalOutros) || !sum.NetResult.Equal(c.NetResult) || sum.ClosingCount != c.ClosingCount {
		t.Fatalf("consolidated %+v differs from sum of stores %+v", c, sum)
	}
	if c.ClosingCount != 5 {
		t.Fatalf("open period should include every closing, got %d", c.ClosingCount)
	}
}

func TestGenerateDREStoreFilterAndInclusiveBounds(t *testing.T) {
	store := 1
	result := GenerateDRE(sampleClosings(), day("2024-01-11"), day("2024-01-11"), &store)
	if len(result.PerStore) != 1 || result.PerStore[0].StoreId != 1 {
		t.Fatalf("expected only store 1, got %+v", result.PerStore)
	}
	if result.Consolidated.ClosingCount != 1 || !result.Consolidated.TotalEntradas.Equal(d("80.50")) {
		t.Fatalf("expected the single closing on the bound date, got %+v", result.Consolidated)
	}
}

func TestGenerateDREEmpty(t *testing.T) {
	result := GenerateDRE(nil, day("2024-01-01"), day("2024-01-31"), nil)
	if len(result.PerStore) != 0 {
		t.Fatalf("expected no stores")
	}
	if !result.Consolidated.TotalEntradas.IsZero() || result.Consolidated.ClosingCount != 0 {
		t.Fatalf("expected zero totals, got %+v", result.Consolidated)
	}
}
