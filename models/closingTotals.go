package models

import "github.com/shopspring/decimal"

// ClosingTotals are the derived sums of a store closing.
type ClosingTotals struct {
	TotalEntradas decimal.Decimal `json:"total_entradas"`
	TotalSaidas   decimal.Decimal `json:"total_saidas"`
	TotalOutros   decimal.Decimal `json:"total_outros"`
}

// MovementLine is the part of a movement item the totals depend on.
type MovementLine struct {
	MovementTypeId int
	Amount         decimal.Decimal
	Discount       decimal.Decimal
}

// CalculateTotals folds movement items into closing totals, routing each item by
// its movement type's category:
//
//	entrada: amount - discount
//	saida:   amount
//	outros:  amount
//
// Items whose movement type is missing from movementTypes, or whose category is
// unknown, are skipped.
func CalculateTotals(movements []MovementLine, movementTypes map[int]MovementCategory) ClosingTotals {
	totals := ClosingTotals{
		TotalEntradas: decimal.Zero,
		TotalSaidas:   decimal.Zero,
		TotalOutros:   decimal.Zero,
	}
	for _, m := range movements {
		category, ok := movementTypes[m.MovementTypeId]
		if !ok {
			continue
		}
		switch category {
		case MovementCategoryEntrada:
			totals.TotalEntradas = totals.TotalEntradas.Add(m.Amount.Sub(m.Discount))
		case MovementCategorySaida:
			totals.TotalSaidas = totals.TotalSaidas.Add(m.Amount)
		case MovementCategoryOutros:
			totals.TotalOutros = totals.TotalOutros.Add(m.Amount)
		}
	}
	return totals
}

// NetResult is final minus initial balance. It is not reconciled against the totals.
func NetResult(initialBalance, finalBalance decimal.Decimal) decimal.Decimal {
	return finalBalance.Sub(initialBalance)
}
