package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore persists artifacts onto the local filesystem and serves them
// through the API's /static/ file server. It is intended for development
// and test environments where an object storage service is not available.
type FileStore struct {
	basePath string
	baseURL  string
	client   *http.Client
}

// NewFileStore initializes a FileStore rooted at basePath. baseURL is the
// public prefix under which the root is served.
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Put writes the bytes under bucket/key and returns the public URL.
// Keys are cleaned to prevent directory traversal.
func (s *FileStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(bucket + "/" + key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return s.baseURL + "/" + cleanKey, nil
}

// Fetch resolves a public URL produced by Put, any other http(s) URL, or a
// root-relative key to bytes.
func (s *FileStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("storage: empty reference")
	}
	if key, ok := s.localKey(ref); ok {
		data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(key)))
		if err != nil {
			return nil, fmt.Errorf("storage: read %s: %w", key, err)
		}
		return data, nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return fetchURL(ctx, s.client, ref)
	}
	return nil, fmt.Errorf("storage: unresolvable reference %q", ref)
}

// Delete removes the object at bucket/key.
func (s *FileStore) Delete(ctx context.Context, bucket, key string) error {
	if s == nil {
		return errors.New("storage: no store configured")
	}
	cleanKey, err := sanitizeKey(bucket + "/" + key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(cleanKey))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

// localKey maps a reference back to a root-relative key when it points at
// this store's public prefix, or is already a bare key.
func (s *FileStore) localKey(ref string) (string, bool) {
	if s.baseURL != "" && strings.HasPrefix(ref, s.baseURL+"/") {
		key, err := sanitizeKey(strings.TrimPrefix(ref, s.baseURL+"/"))
		if err != nil {
			return "", false
		}
		return key, true
	}
	if !strings.Contains(ref, "://") {
		key, err := sanitizeKey(ref)
		if err != nil {
			return "", false
		}
		return key, true
	}
	return "", false
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

func fetchURL(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("storage: fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read body: %w", err)
	}
	return data, nil
}

var _ Store = (*FileStore)(nil)
