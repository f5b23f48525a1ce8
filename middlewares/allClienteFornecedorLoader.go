package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/finance_backend/models"
)

func getAllClientesFornecedores(ctx context.Context, ids []int) []*dataloader.Result[*models.AllClienteFornecedor] {
	resultMap, err := models.MapAllClienteFornecedor(ctx)
	if err != nil {
		return handleError[*models.AllClienteFornecedor](len(ids), err)
	}
	return mapLoaderResults(resultMap, ids)
}

func GetAllClienteFornecedor(ctx context.Context, id int) (*models.AllClienteFornecedor, error) {
	loaders := For(ctx)
	return loaders.allClienteFornecedorLoader.Load(ctx, id)()
}
