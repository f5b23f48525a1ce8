package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var allowedUploadMimeTypes = map[string]bool{
	"application/pdf":          true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"image/jpeg": true,
	"image/png":  true,
}

// getGoogleClient prefers ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS).
// Set GCS_CREDENTIALS_JSON to pass explicit credentials locally.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

func gcsBucket() (string, error) {
	bucketName := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucketName == "" {
		return "", errors.New("GCS_BUCKET is required")
	}
	return bucketName, nil
}

// DetectUploadMimeType sniffs data and resolves zip containers by extension.
func DetectUploadMimeType(objectName string, data []byte) (string, error) {
	mimeType := http.DetectContentType(data)
	if mimeType == "application/zip" && strings.HasSuffix(objectName, ".xlsx") {
		mimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if !allowedUploadMimeTypes[mimeType] {
		return "", Invalidf("unsupported file type: %s", mimeType)
	}
	return mimeType, nil
}

func UploadBytesToGCS(ctx context.Context, objectName string, data []byte, contentType string) error {
	bucketName, err := gcsBucket()
	if err != nil {
		return err
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to upload bytes to Google Cloud Storage: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// DeleteObjectFromGCS removes objectName; missing objects are not an error.
func DeleteObjectFromGCS(ctx context.Context, objectName string) error {
	bucketName, err := gcsBucket()
	if err != nil {
		return err
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Bucket(bucketName).Object(objectName).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// BuildObjectAccessURL maps an object key to its public URL (STORAGE_PUBLIC_BASE_URL, else storage.googleapis.com).
func BuildObjectAccessURL(objectKey string) string {
	if base := strings.TrimSpace(os.Getenv("STORAGE_PUBLIC_BASE_URL")); base != "" {
		return strings.TrimRight(base, "/") + "/" + objectKey
	}
	if bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET")); bucket != "" {
		return "https://storage.googleapis.com/" + bucket + "/" + objectKey
	}
	return objectKey
}

// ExtractObjectKeyFromURL is the inverse of BuildObjectAccessURL. Returns "" when the URL is not ours.
func ExtractObjectKeyFromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || strings.Contains(rawURL, "..") {
		return ""
	}
	if !strings.Contains(rawURL, "://") && !strings.HasPrefix(rawURL, "/") && strings.Contains(rawURL, "/") {
		return rawURL
	}
	if base := strings.TrimSpace(os.Getenv("STORAGE_PUBLIC_BASE_URL")); base != "" {
		prefix := strings.TrimRight(base, "/") + "/"
		if strings.HasPrefix(rawURL, prefix) {
			return strings.TrimPrefix(rawURL, prefix)
		}
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	p := strings.TrimPrefix(parsed.Path, "/")
	if host == "storage.googleapis.com" || host == "storage.cloud.google.com" {
		parts := strings.SplitN(p, "/", 2)
		if len(parts) == 2 {
			return parts[1]
		}
	}
	if strings.HasSuffix(host, ".storage.googleapis.com") {
		return p
	}
	return ""
}
