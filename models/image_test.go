package models

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func samplePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateThumbnail(t *testing.T) {
	data, err := generateThumbnail(samplePNG(t, 400, 100))
	if err != nil {
		t.Fatalf("generateThumbnail: %v", err)
	}
	thumb, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("format = %s, want jpeg", format)
	}
	if w, h := thumb.Bounds().Dx(), thumb.Bounds().Dy(); w != 200 || h != 50 {
		t.Fatalf("size = %dx%d, want 200x50", w, h)
	}
}

func TestThumbnailObjectKey(t *testing.T) {
	got := thumbnailObjectKey("base-1/stores/abc.png")
	if got != "base-1/stores/thumbnails/abc.jpg" {
		t.Fatalf("thumbnailObjectKey = %s", got)
	}
}

func TestUploadImageStoresOriginalAndThumbnail(t *testing.T) {
	uploaded := map[string]string{}
	prev := uploadObject
	uploadObject = func(_ context.Context, key string, _ []byte, contentType string) error {
		uploaded[key] = contentType
		return nil
	}
	t.Cleanup(func() { uploadObject = prev })

	res, err := uploadImage(context.Background(), "base-1", "categories", samplePNG(t, 300, 300))
	if err != nil {
		t.Fatalf("uploadImage: %v", err)
	}
	if !strings.HasPrefix(res.ObjectKey, "base-1/categories/") || !strings.HasSuffix(res.ObjectKey, ".png") {
		t.Fatalf("unexpected key %s", res.ObjectKey)
	}
	if uploaded[res.ObjectKey] != "image/png" {
		t.Fatalf("original not uploaded as png: %v", uploaded)
	}
	if uploaded[thumbnailObjectKey(res.ObjectKey)] != "image/jpeg" {
		t.Fatalf("thumbnail not uploaded: %v", uploaded)
	}
}

func TestUploadImageRejectsNonImages(t *testing.T) {
	prev := uploadObject
	uploadObject = func(context.Context, string, []byte, string) error {
		t.Fatalf("nothing should be uploaded")
		return nil
	}
	t.Cleanup(func() { uploadObject = prev })

	if _, err := uploadImage(context.Background(), "base-1", "stores", []byte("%PDF-1.4 not an image")); err == nil {
		t.Fatalf("expected error for a pdf")
	}
	big := make([]byte, MaxUploadSizeBytes+1)
	if _, err := uploadImage(context.Background(), "base-1", "stores", big); err == nil {
		t.Fatalf("expected size error")
	}
}
