package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/finance_backend/models"
)

func getAllStores(ctx context.Context, ids []int) []*dataloader.Result[*models.AllStore] {
	resultMap, err := models.MapAllStore(ctx)
	if err != nil {
		return handleError[*models.AllStore](len(ids), err)
	}
	return mapLoaderResults(resultMap, ids)
}

func GetAllStore(ctx context.Context, id int) (*models.AllStore, error) {
	loaders := For(ctx)
	return loaders.allStoreLoader.Load(ctx, id)()
}
