package storage

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"
)

// Bucket names used by the service.
const (
	BucketOriginalImages = "original-images"
	BucketProcessedAds   = "processed-ads"
	BucketLogos          = "logos"
)

// Store is the artifact store contract: content addressed by bucket+path,
// retrievable through a public URL.
type Store interface {
	// Put persists the bytes and returns a publicly retrievable URL.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	// Fetch resolves a reference (public URL or bucket-relative key) to bytes.
	Fetch(ctx context.Context, ref string) ([]byte, error)
	// Delete removes a previously stored object. Missing objects are not an error.
	Delete(ctx context.Context, bucket, key string) error
}

// UniqueKey builds a per-user namespaced object key so concurrent uploads
// cannot collide: {owner_id}/{unix-ms}-{random}.{ext}.
func UniqueKey(ownerID, originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(originalName), "."))
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s/%d-%06x.%s", ownerID, time.Now().UnixMilli(), rand.Intn(1<<24), ext)
}

// ExtensionForMIME maps the content types this service produces to file
// extensions. Unknown types fall back to "bin".
func ExtensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "bin"
	}
}
