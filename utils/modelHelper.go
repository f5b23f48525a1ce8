package utils

import (
	"context"
	"errors"

	"github.com/mmdatafocus/finance_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// FetchSingleModel loads a row by primary key without tenant filtering.
// (may return RecordNotFound)
func FetchSingleModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {
	dbCtx := config.GetDB().WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	if err := dbCtx.First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// FetchModel loads a row by id inside baseId.
// (may return RecordNotFound)
func FetchModel[T any](ctx context.Context, baseId string, id int, associations ...string) (*T, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	if err := dbCtx.First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// FetchAllModels loads every row of baseId.
func FetchAllModels[T any](ctx context.Context, baseId string, associations ...string) ([]*T, error) {
	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
