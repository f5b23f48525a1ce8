package models

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
)

var attachmentFolders = map[ReferenceType]string{
	ReferenceTypeTransaction:  "transactions",
	ReferenceTypeStoreClosing: "closings",
}

// UploadAttachment stores the file and records it as a Document of the referenced
// transaction or closing. The reference is checked before anything is uploaded.
func UploadAttachment(ctx context.Context, referenceType ReferenceType, referenceId int, filename string, data []byte) (*Document, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	folder, ok := attachmentFolders[referenceType]
	if !ok {
		return nil, utils.Invalid("documents can only be attached to transactions and closings")
	}
	if err := validateDocumentReference(ctx, baseId, referenceType, referenceId); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, utils.Invalid("file is empty")
	}
	if int64(len(data)) > MaxUploadSizeBytes {
		return nil, utils.Invalid("file size exceeds 5MB limit")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, utils.Invalid("file has no extension")
	}
	mimeType, err := utils.DetectUploadMimeType(filename, data)
	if err != nil {
		return nil, err
	}

	key := objectKey(baseId, folder, ext)
	if err := uploadObject(ctx, key, data, mimeType); err != nil {
		return nil, err
	}
	document, err := AttachDocument(ctx, referenceType, referenceId, utils.BuildObjectAccessURL(key))
	if err != nil {
		// the row failed, do not leave the object behind
		if delErr := utils.DeleteObjectFromGCS(ctx, key); delErr != nil {
			config.LogError(config.GetLogger(), "Attachment", "UploadAttachment", "delete orphan object", key, delErr)
		}
		return nil, err
	}
	return document, nil
}
