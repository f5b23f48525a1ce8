package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/finance_backend/models"
	"gorm.io/gorm"
)

type movementItemReader struct {
	db *gorm.DB
}

// closing ids are tenant-checked by the caller; movement items carry no base_id
func (r *movementItemReader) getMovementItems(ctx context.Context, closingIds []int) []*dataloader.Result[[]*models.MovementItem] {
	var results []models.MovementItem
	err := r.db.WithContext(ctx).
		Where("closing_id IN ?", closingIds).
		Order("id").
		Find(&results).Error
	if err != nil {
		return handleError[[]*models.MovementItem](len(closingIds), err)
	}
	return generateLoaderArrayResults(results, closingIds)
}

func GetMovementItems(ctx context.Context, closingId int) ([]*models.MovementItem, error) {
	loaders := For(ctx)
	return loaders.movementItemLoader.Load(ctx, closingId)()
}
