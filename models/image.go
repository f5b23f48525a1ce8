package models

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/mmdatafocus/finance_backend/utils"
)

const (
	MaxUploadSizeBytes int64 = 5 * 1024 * 1024
	thumbnailWidth           = 200
)

type UploadResponse struct {
	ImageUrl     string `json:"image_url"`
	ThumbnailUrl string `json:"thumbnail_url,omitempty"`
	ObjectKey    string `json:"object_key"`
}

// uploadObject is replaced in tests.
var uploadObject = utils.UploadBytesToGCS

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// objectKey lays objects out as <base>/<folder>/<uuid><ext>.
func objectKey(baseId string, folder string, ext string) string {
	return path.Join(baseId, folder, uuid.NewString()+ext)
}

func thumbnailObjectKey(key string) string {
	name := strings.TrimSuffix(path.Base(key), path.Ext(key)) + ".jpg"
	return path.Join(path.Dir(key), "thumbnails", name)
}

func generateThumbnail(originalData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(originalData))
	if err != nil {
		return nil, err
	}
	thumbnail := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	var thumbnailBuffer bytes.Buffer
	if err := imaging.Encode(&thumbnailBuffer, thumbnail, imaging.JPEG); err != nil {
		return nil, err
	}
	return thumbnailBuffer.Bytes(), nil
}

// uploadImage stores the original and its 200px JPEG thumbnail.
func uploadImage(ctx context.Context, baseId string, folder string, data []byte) (*UploadResponse, error) {
	if int64(len(data)) > MaxUploadSizeBytes {
		return nil, utils.Invalid("file size exceeds 5MB limit")
	}
	mimeType, err := utils.DetectUploadMimeType("", data)
	if err != nil {
		return nil, err
	}
	ext, ok := imageExtensions[mimeType]
	if !ok {
		return nil, utils.Invalid("icon must be a PNG or JPEG image")
	}
	thumbnailData, err := generateThumbnail(data)
	if err != nil {
		return nil, err
	}

	key := objectKey(baseId, folder, ext)
	if err := uploadObject(ctx, key, data, mimeType); err != nil {
		return nil, err
	}
	thumbKey := thumbnailObjectKey(key)
	if err := uploadObject(ctx, thumbKey, thumbnailData, "image/jpeg"); err != nil {
		return nil, err
	}
	return &UploadResponse{
		ImageUrl:     utils.BuildObjectAccessURL(key),
		ThumbnailUrl: utils.BuildObjectAccessURL(thumbKey),
		ObjectKey:    key,
	}, nil
}

// UploadIcon stores an icon for a store or a category and points the record at it.
func UploadIcon(ctx context.Context, referenceType ReferenceType, id int, data []byte) (*UploadResponse, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	var folder string
	switch referenceType {
	case ReferenceTypeStore:
		if err := utils.ValidateResourceId[Store](ctx, baseId, id); err != nil {
			return nil, err
		}
		folder = "stores"
	case ReferenceTypeCategory:
		if err := utils.ValidateResourceId[Category](ctx, baseId, id); err != nil {
			return nil, err
		}
		folder = "categories"
	default:
		return nil, utils.Invalid("icons can only be set on stores and categories")
	}

	response, err := uploadImage(ctx, baseId, folder, data)
	if err != nil {
		return nil, err
	}

	if referenceType == ReferenceTypeStore {
		_, err = SetStoreIcon(ctx, id, response.ThumbnailUrl)
	} else {
		_, err = SetCategoryIcon(ctx, id, response.ThumbnailUrl)
	}
	if err != nil {
		return nil, err
	}
	return response, nil
}
