package middlewares

import (
	"context"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders batch reference lookups made while rendering listings.
type Loaders struct {
	allStoreLoader             *dataloader.Loader[int, *models.AllStore]
	allCategoryLoader          *dataloader.Loader[int, *models.AllCategory]
	allPaymentMethodLoader     *dataloader.Loader[int, *models.AllPaymentMethod]
	allMovementTypeLoader      *dataloader.Loader[int, *models.AllMovementType]
	allClienteFornecedorLoader *dataloader.Loader[int, *models.AllClienteFornecedor]

	movementItemLoader *dataloader.Loader[int, []*models.MovementItem]

	transactionDocumentLoader  *dataloader.Loader[int, []*models.Document]
	storeClosingDocumentLoader *dataloader.Loader[int, []*models.Document]
}

func NewLoaders(conn *gorm.DB) *Loaders {
	movementItemReader := &movementItemReader{db: conn}
	transactionDocumentReader := &documentReader{db: conn, referenceType: models.ReferenceTypeTransaction}
	storeClosingDocumentReader := &documentReader{db: conn, referenceType: models.ReferenceTypeStoreClosing}

	return &Loaders{
		allStoreLoader:             dataloader.NewBatchedLoader(getAllStores, dataloader.WithWait[int, *models.AllStore](time.Millisecond)),
		allCategoryLoader:          dataloader.NewBatchedLoader(getAllCategories, dataloader.WithWait[int, *models.AllCategory](time.Millisecond)),
		allPaymentMethodLoader:     dataloader.NewBatchedLoader(getAllPaymentMethods, dataloader.WithWait[int, *models.AllPaymentMethod](time.Millisecond)),
		allMovementTypeLoader:      dataloader.NewBatchedLoader(getAllMovementTypes, dataloader.WithWait[int, *models.AllMovementType](time.Millisecond)),
		allClienteFornecedorLoader: dataloader.NewBatchedLoader(getAllClientesFornecedores, dataloader.WithWait[int, *models.AllClienteFornecedor](time.Millisecond)),

		movementItemLoader: dataloader.NewBatchedLoader(movementItemReader.getMovementItems, dataloader.WithWait[int, []*models.MovementItem](time.Millisecond)),

		transactionDocumentLoader:  dataloader.NewBatchedLoader(transactionDocumentReader.GetDocuments, dataloader.WithWait[int, []*models.Document](time.Millisecond)),
		storeClosingDocumentLoader: dataloader.NewBatchedLoader(storeClosingDocumentReader.GetDocuments, dataloader.WithWait[int, []*models.Document](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// WithLoaders attaches fresh loaders to ctx (CLI tools, tests).
func WithLoaders(ctx context.Context, conn *gorm.DB) context.Context {
	return context.WithValue(ctx, loadersKey, NewLoaders(conn))
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// mapLoaderResults answers ids from a cached id map; unknown ids get the type's default.
func mapLoaderResults[T models.Data](resultMap map[int]*T, ids []int) []*dataloader.Result[*T] {
	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		result, ok := resultMap[id]
		if !ok || result == nil || reflect.ValueOf(*result).IsZero() {
			var zero T
			v := zero.GetDefault(id).(T)
			result = &v
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: result})
	}
	return loaderResults
}

// T must be struct
// each id has many related results
func generateLoaderArrayResults[T models.RelatedData](results []T, referenceIds []int) (loaderResults []*dataloader.Result[[]*T]) {
	resultMap := make(map[int][]*T)
	for _, result := range results {
		// creating a new variable every turn, to avoid pointing to the adddress of result
		copy := result
		resultMap[result.GetReferenceId()] = append(resultMap[result.GetReferenceId()], &copy)
	}
	for _, id := range referenceIds {
		resultArray := resultMap[id]
		loaderResults = append(loaderResults, &dataloader.Result[[]*T]{Data: resultArray})
	}
	return loaderResults
}
