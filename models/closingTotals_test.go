package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals(t *testing.T) {
	types := map[int]MovementCategory{
		1: MovementCategoryEntrada,
		2: MovementCategorySaida,
		3: MovementCategoryOutros,
		4: MovementCategory("unknown"),
	}

	tests := []struct {
		name      string
		movements []MovementLine
		entradas  string
		saidas    string
		outros    string
	}{
		{
			name:     "empty",
			entradas: "0", saidas: "0", outros: "0",
		},
		{
			name: "entrada subtracts discount",
			movements: []MovementLine{
				{MovementTypeId: 1, Amount: d("100"), Discount: d("10")},
				{MovementTypeId: 1, Amount: d("50.25"), Discount: decimal.Zero},
			},
			entradas: "140.25", saidas: "0", outros: "0",
		},
		{
			name: "saida and outros ignore discount",
			movements: []MovementLine{
				{MovementTypeId: 2, Amount: d("30"), Discount: d("5")},
				{MovementTypeId: 3, Amount: d("12.5"), Discount: d("2")},
			},
			entradas: "0", saidas: "30", outros: "12.5",
		},
		{
			name: "missing and unknown types are skipped",
			movements: []MovementLine{
				{MovementTypeId: 1, Amount: d("10"), Discount: decimal.Zero},
				{MovementTypeId: 99, Amount: d("1000"), Discount: decimal.Zero},
				{MovementTypeId: 4, Amount: d("500"), Discount: decimal.Zero},
			},
			entradas: "10", saidas: "0", outros: "0",
		},
		{
			name: "no float drift",
			movements: []MovementLine{
				{MovementTypeId: 1, Amount: d("0.1"), Discount: decimal.Zero},
				{MovementTypeId: 1, Amount: d("0.2"), Discount: decimal.Zero},
			},
			entradas: "0.3", saidas: "0", outros: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotals(tt.movements, types)
			if !got.TotalEntradas.Equal(d(tt.entradas)) {
				t.Fatalf("entradas: want %s, got %s", tt.entradas, got.TotalEntradas)
			}
			if !got.TotalSaidas.Equal(d(tt.saidas)) {
				t.Fatalf("saidas: want %s, got %s", tt.saidas, got.TotalSaidas)
			}
			if !got.TotalOutros.Equal(d(tt.outros)) {
				t.Fatalf("outros: want %s, got %s", tt.outros, got.TotalOutros)
			}
		})
	}
}

func TestCalculateTotalsIsOrderIndependent(t *testing.T) {
	types := map[int]MovementCategory{1: MovementCategoryEntrada, 2: MovementCategorySaida}
	a := []MovementLine{
		{MovementTypeId: 1, Amount: d("10"), Discount: d("1")},
		{MovementTypeId: 2, Amount: d("4")},
		{MovementTypeId: 1, Amount: d("7.5")},
	}
	b := []MovementLine{a[2], a[0], a[1]}

	ga, gb := CalculateTotals(a, types), CalculateTotals(b, types)
	if !ga.TotalEntradas.Equal(gb.TotalEntradas) || !ga.TotalSaidas.Equal(gb.TotalSaidas) {
		t.Fatalf("totals depend on order: %+v vs %+v", ga, gb)
	}
}

func TestNetResult(t *testing.T) {
	if got := NetResult(d("100"), d("250.50")); !got.Equal(d("150.50")) {
		t.Fatalf("want 150.50, got %s", got)
	}
	if got := NetResult(d("300"), d("200")); !got.Equal(d("-100")) {
		t.Fatalf("want -100, got %s", got)
	}
}
