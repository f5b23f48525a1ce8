package utils

import (
	"context"
	"reflect"

	"github.com/mmdatafocus/finance_backend/config"
)

// ValidateResourceId checks the id exists inside baseId; returns ErrorRecordNotFound otherwise.
func ValidateResourceId[T any](ctx context.Context, baseId string, id interface{}) error {
	count, err := ResourceCountWhere[T](ctx, baseId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// ValidateResourcesId checks ALL ids exist inside baseId.
func ValidateResourcesId[M any, ID comparable](ctx context.Context, baseId string, ids []ID) error {
	unqIds := UniqueSlice(ids)
	if len(unqIds) == 0 {
		return nil
	}

	count, err := ResourceCountWhere[M](ctx, baseId, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}
	return nil
}

func ValidateUnique[T any](ctx context.Context, baseId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if exceptId == nil || reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, baseId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, baseId, column+" = ? AND NOT id = ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return Duplicate("duplicate " + column)
	}
	return nil
}

// ResourceCountWhere counts records with WHERE base_id = ? AND condition.
// baseId can be blank for admin users.
func ResourceCountWhere[T any](ctx context.Context, baseId string, condition string, value ...interface{}) (int64, error) {
	var model T

	dbCtx := config.GetDB().WithContext(ctx).Model(&model)
	if baseId != "" {
		dbCtx = dbCtx.Where("base_id = ?", baseId)
	}
	dbCtx = dbCtx.Where(condition, value...)

	var count int64
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
