package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	supabase "github.com/supabase-community/storage-go"
)

// SupabaseStore persists artifacts in Supabase storage buckets with
// public-read URLs.
type SupabaseStore struct {
	client  *supabase.Client
	baseURL string
	http    *http.Client
}

// NewSupabaseStore builds a store against the given Supabase project URL
// using a service-role key.
func NewSupabaseStore(projectURL, serviceRoleKey string) (*SupabaseStore, error) {
	projectURL = strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if projectURL == "" {
		return nil, errors.New("storage: supabase project url is required")
	}
	if strings.TrimSpace(serviceRoleKey) == "" {
		return nil, errors.New("storage: supabase service role key is required")
	}
	client := supabase.NewClient(projectURL+"/storage/v1", serviceRoleKey, nil)
	return &SupabaseStore{
		client:  client,
		baseURL: projectURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Put uploads the bytes and returns the public object URL.
func (s *SupabaseStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	upsert := true
	if contentType == "" {
		contentType = "image/jpeg"
	}
	_, err := s.client.UploadFile(bucket, key, bytes.NewReader(data), supabase.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload %s/%s: %w", bucket, key, err)
	}
	return s.publicURL(bucket, key), nil
}

// Fetch downloads a reference: objects under this project resolve through
// the storage API, anything else over plain HTTP.
func (s *SupabaseStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("storage: empty reference")
	}
	if bucket, key, ok := s.objectPath(ref); ok {
		data, err := s.client.DownloadFile(bucket, key)
		if err != nil {
			return nil, fmt.Errorf("storage: download %s/%s: %w", bucket, key, err)
		}
		return data, nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return fetchURL(ctx, s.http, ref)
	}
	return nil, fmt.Errorf("storage: unresolvable reference %q", ref)
}

// Delete removes the object. Supabase treats missing objects as an error;
// that case is swallowed to keep deletes idempotent.
func (s *SupabaseStore) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(bucket, []string{key}); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil
		}
		return fmt.Errorf("storage: remove %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *SupabaseStore) publicURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, key)
}

// objectPath splits a public URL of this project back into bucket and key.
func (s *SupabaseStore) objectPath(ref string) (bucket, key string, ok bool) {
	prefix := s.baseURL + "/storage/v1/object/public/"
	if !strings.HasPrefix(ref, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(ref, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

var _ Store = (*SupabaseStore)(nil)
