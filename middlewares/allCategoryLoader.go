package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/finance_backend/models"
)

func getAllCategories(ctx context.Context, ids []int) []*dataloader.Result[*models.AllCategory] {
	resultMap, err := models.MapAllCategory(ctx)
	if err != nil {
		return handleError[*models.AllCategory](len(ids), err)
	}
	return mapLoaderResults(resultMap, ids)
}

func GetAllCategory(ctx context.Context, id int) (*models.AllCategory, error) {
	loaders := For(ctx)
	return loaders.allCategoryLoader.Load(ctx, id)()
}
