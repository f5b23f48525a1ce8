package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/finance_backend/models"
	"gorm.io/gorm"
)

type documentReader struct {
	db            *gorm.DB
	referenceType models.ReferenceType
}

func (r *documentReader) GetDocuments(ctx context.Context, referenceIds []int) []*dataloader.Result[[]*models.Document] {
	var results []models.Document
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id IN ?", r.referenceType, referenceIds).
		Order("id").
		Find(&results).Error
	if err != nil {
		return handleError[[]*models.Document](len(referenceIds), err)
	}
	return generateLoaderArrayResults(results, referenceIds)
}

func GetTransactionDocuments(ctx context.Context, transactionId int) ([]*models.Document, error) {
	loaders := For(ctx)
	return loaders.transactionDocumentLoader.Load(ctx, transactionId)()
}

func GetStoreClosingDocuments(ctx context.Context, closingId int) ([]*models.Document, error) {
	loaders := For(ctx)
	return loaders.storeClosingDocumentLoader.Load(ctx, closingId)()
}
