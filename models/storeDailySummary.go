package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreDailySummary is a query-friendly aggregate used by the dashboard.
//
// Grain: (base_id, store_id, summary_date). store_id 0 collects transactions without a store.
// Values are stored as positive numbers, net of discount.
//
// NOTE: This table is derived data; RebuildStoreDailySummary recomputes a row from transactions.
type StoreDailySummary struct {
	BaseId           string          `gorm:"primaryKey;size:64;index:idx_sds_base_date,priority:1" json:"base_id"`
	StoreId          int             `gorm:"primaryKey" json:"store_id"`
	SummaryDate      time.Time       `gorm:"primaryKey;index:idx_sds_base_date,priority:2" json:"summary_date"`
	TotalIncome      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_income"`
	TotalExpense     decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_expense"`
	TransactionCount int             `gorm:"not null;default:0" json:"transaction_count"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Net is income minus expense.
func (s StoreDailySummary) Net() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpense)
}

// RebuildStoreDailySummary recomputes one (base, store, date) row from transactions.
// A day without transactions deletes the row.
func RebuildStoreDailySummary(tx *gorm.DB, baseId string, storeId int, date time.Time) error {
	date = DateOnly(date)

	dbCtx := tx.Model(&Transaction{}).Where("base_id = ? AND date = ?", baseId, date)
	if storeId > 0 {
		dbCtx = dbCtx.Where("store_id = ?", storeId)
	} else {
		dbCtx = dbCtx.Where("store_id IS NULL")
	}
	var rows []*Transaction
	if err := dbCtx.Find(&rows).Error; err != nil {
		return err
	}

	if len(rows) == 0 {
		return tx.Where("base_id = ? AND store_id = ? AND summary_date = ?", baseId, storeId, date).
			Delete(&StoreDailySummary{}).Error
	}

	summary := StoreDailySummary{
		BaseId:           baseId,
		StoreId:          storeId,
		SummaryDate:      date,
		TotalIncome:      decimal.Zero,
		TotalExpense:     decimal.Zero,
		TransactionCount: len(rows),
	}
	for _, row := range rows {
		if row.Type == CategoryTypeIncome {
			summary.TotalIncome = summary.TotalIncome.Add(row.NetAmount())
		} else {
			summary.TotalExpense = summary.TotalExpense.Add(row.NetAmount())
		}
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "base_id"}, {Name: "store_id"}, {Name: "summary_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_income", "total_expense", "transaction_count", "updated_at"}),
	}).Create(&summary).Error
}

// GetStoreDailySummaries lists summary rows in [start, end], optionally for one store.
func GetStoreDailySummaries(ctx context.Context, start MyDateString, end MyDateString, storeId *int) ([]*StoreDailySummary, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	dbCtx := config.GetDB().WithContext(ctx).
		Where("base_id = ? AND summary_date >= ? AND summary_date <= ?", baseId, start.Time(), end.Time())
	if storeId != nil && *storeId > 0 {
		dbCtx = dbCtx.Where("store_id = ?", *storeId)
	}
	var results []*StoreDailySummary
	if err := dbCtx.Order("summary_date, store_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type summaryKey struct {
	StoreId int
	Date    time.Time
}

// BackfillStoreDailySummaries rebuilds every summary row of baseId in [start, end],
// including rows whose transactions are gone. It returns the number of keys rebuilt.
func BackfillStoreDailySummaries(ctx context.Context, baseId string, start MyDateString, end MyDateString) (int, error) {
	if baseId == "" {
		return 0, utils.ErrorBaseRequired
	}
	if end.Time().Before(start.Time()) {
		return 0, utils.Invalid("end date is before start date")
	}
	count := 0
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []*Transaction
		if err := tx.Select("store_id", "date").
			Where("base_id = ? AND date >= ? AND date <= ?", baseId, start.Time(), end.Time()).
			Find(&rows).Error; err != nil {
			return err
		}
		var existing []*StoreDailySummary
		if err := tx.Select("store_id", "summary_date").
			Where("base_id = ? AND summary_date >= ? AND summary_date <= ?", baseId, start.Time(), end.Time()).
			Find(&existing).Error; err != nil {
			return err
		}

		keys := make(map[summaryKey]struct{})
		for _, row := range rows {
			storeId := 0
			if row.StoreId != nil {
				storeId = *row.StoreId
			}
			keys[summaryKey{StoreId: storeId, Date: DateOnly(row.Date)}] = struct{}{}
		}
		for _, s := range existing {
			keys[summaryKey{StoreId: s.StoreId, Date: DateOnly(s.SummaryDate)}] = struct{}{}
		}
		for key := range keys {
			if err := RebuildStoreDailySummary(tx, baseId, key.StoreId, key.Date); err != nil {
				return err
			}
		}
		count = len(keys)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
