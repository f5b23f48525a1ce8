package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"gorm.io/gorm"
)

type Resource interface {
	GetBaseId() string
}

type HasId struct {
	ID int `gorm:"primary_key" json:"id"`
}

// GetResource looks in redis first, then in the db scoped to ctx's base, and caches the result.
// (may return RecordNotFound error)
func GetResource[T Resource](ctx context.Context, id int, associations ...string) (*T, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	result, err := utils.RetrieveRedis[T](id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result, err = utils.FetchModel[T](ctx, baseId, id, associations...)
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedis[T](result, id); err != nil {
			return nil, err
		}
	} else if (*result).GetBaseId() != baseId {
		return nil, utils.ErrorRecordNotFound
	}

	return result, nil
}

// ListAllResource lists every row of ctx's base as AllModelT, from redis or db, caching the result.
func ListAllResource[ModelT any, AllModelT any](ctx context.Context, orders ...string) ([]*AllModelT, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	results, err := utils.RetrieveRedisList[AllModelT](baseId)
	if err != nil {
		return nil, err
	}
	if results == nil {
		var model ModelT
		dbCtx := config.GetDB().WithContext(ctx).Model(&model).Where("base_id = ?", baseId)
		if len(orders) == 0 {
			orders = []string{"id"}
		}
		for _, order := range orders {
			dbCtx = dbCtx.Order(order)
		}
		if err = dbCtx.Find(&results).Error; err != nil {
			return nil, err
		}
		if err := utils.StoreRedisList[AllModelT](results, baseId); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// MapAllResource indexes ListAllResource by id.
func MapAllResource[ModelT any, AllModelT Identifier](ctx context.Context) (map[int]*AllModelT, error) {
	list, err := ListAllResource[ModelT, AllModelT](ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[int]*AllModelT, len(list))
	for _, item := range list {
		m[(*item).GetId()] = item
	}
	return m, nil
}

// ToggleActiveModel flips is_active, writes a history row and an outbox event, then clears caches.
func ToggleActiveModel[T RedisCleaner](ctx context.Context, baseId string, id int, isActive bool, refType ReferenceType) (*T, error) {
	var result T
	db := config.GetDB()

	if err := db.WithContext(ctx).Where("base_id = ?", baseId).First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmt := tx.Model(&result).UpdateColumn("is_active", isActive)
		if stmt.Error != nil {
			return stmt.Error
		}
		actionType := HistoryActionInactive
		if isActive {
			actionType = HistoryActionActive
		}
		// UpdateColumn skips hooks, so history is written here
		if err := createHistory(tx, actionType, id, stmt.Statement.Table, nil, nil, "toggled "+utils.GetTypeName[T]()); err != nil {
			return err
		}
		return PublishEvent(tx, baseId, 0, DateOnly(timeNow()), id, refType, result, result, PubSubMessageActionUpdate)
	})
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(result); err != nil {
		return nil, err
	}
	return &result, nil
}
