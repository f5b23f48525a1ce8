package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/finance_backend/models"
)

func getAllMovementTypes(ctx context.Context, ids []int) []*dataloader.Result[*models.AllMovementType] {
	resultMap, err := models.MapAllMovementType(ctx)
	if err != nil {
		return handleError[*models.AllMovementType](len(ids), err)
	}
	return mapLoaderResults(resultMap, ids)
}

func GetAllMovementType(ctx context.Context, id int) (*models.AllMovementType, error) {
	loaders := For(ctx)
	return loaders.allMovementTypeLoader.Load(ctx, id)()
}
