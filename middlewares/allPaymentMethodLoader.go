package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/finance_backend/models"
)

func getAllPaymentMethods(ctx context.Context, ids []int) []*dataloader.Result[*models.AllPaymentMethod] {
	resultMap, err := models.MapAllPaymentMethod(ctx)
	if err != nil {
		return handleError[*models.AllPaymentMethod](len(ids), err)
	}
	return mapLoaderResults(resultMap, ids)
}

func GetAllPaymentMethod(ctx context.Context, id int) (*models.AllPaymentMethod, error) {
	loaders := For(ctx)
	return loaders.allPaymentMethodLoader.Load(ctx, id)()
}
