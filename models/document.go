package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"gorm.io/gorm"
)

// Document is an uploaded attachment of a transaction or a closing.
type Document struct {
	ID            int           `gorm:"primary_key" json:"id"`
	BaseId        string        `gorm:"size:64;index;not null" json:"base_id"`
	DocumentUrl   string        `gorm:"size:512;not null" json:"document_url"`
	ReferenceType ReferenceType `gorm:"size:32;index:idx_document_ref,priority:1" json:"reference_type"`
	ReferenceID   int           `gorm:"index:idx_document_ref,priority:2" json:"reference_id"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func validateDocumentReference(ctx context.Context, baseId string, referenceType ReferenceType, referenceId int) error {
	switch referenceType {
	case ReferenceTypeTransaction:
		return utils.ValidateResourceId[Transaction](ctx, baseId, referenceId)
	case ReferenceTypeStoreClosing:
		return utils.ValidateResourceId[StoreClosing](ctx, baseId, referenceId)
	}
	return utils.Invalid("documents can only be attached to transactions and closings")
}

// AttachDocument records an already-uploaded object for the referenced record.
func AttachDocument(ctx context.Context, referenceType ReferenceType, referenceId int, documentUrl string) (*Document, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if documentUrl == "" {
		return nil, utils.Invalid("document url is required")
	}
	if err := validateDocumentReference(ctx, baseId, referenceType, referenceId); err != nil {
		return nil, err
	}
	document := Document{
		BaseId:        baseId,
		DocumentUrl:   documentUrl,
		ReferenceType: referenceType,
		ReferenceID:   referenceId,
	}
	if err := config.GetDB().WithContext(ctx).Create(&document).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

func GetDocuments(ctx context.Context, referenceType ReferenceType, referenceId int) ([]*Document, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	var results []*Document
	err := config.GetDB().WithContext(ctx).
		Where("base_id = ? AND reference_type = ? AND reference_id = ?", baseId, referenceType, referenceId).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteDocument removes the row and then the stored object. A failed object
// delete is logged, not returned, since the row is already gone.
func DeleteDocument(ctx context.Context, id int) (*Document, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	document, err := utils.FetchModel[Document](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Delete(document).Error; err != nil {
		return nil, err
	}
	if key := utils.ExtractObjectKeyFromURL(document.DocumentUrl); key != "" {
		if err := utils.DeleteObjectFromGCS(ctx, key); err != nil {
			config.LogError(config.GetLogger(), "Document", "DeleteDocument", "delete object", key, err)
		}
	}
	return document, nil
}

// deleteDocuments drops the rows of a deleted parent. Stored objects are left in the bucket.
func deleteDocuments(tx *gorm.DB, baseId string, referenceType ReferenceType, referenceId int) error {
	return tx.Where("base_id = ? AND reference_type = ? AND reference_id = ?", baseId, referenceType, referenceId).
		Delete(&Document{}).Error
}
