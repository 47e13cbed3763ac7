package storage

import (
	"context"
	"strings"
	"testing"
)

func TestFileStorePutFetchRoundtrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/static")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	ctx := context.Background()
	url, err := store.Put(ctx, BucketProcessedAds, "user-1/1-abc.jpg", []byte("payload"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	want := "http://localhost:8080/static/processed-ads/user-1/1-abc.jpg"
	if url != want {
		t.Fatalf("Put url mismatch: got %q want %q", url, want)
	}

	data, err := store.Fetch(ctx, url)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("Fetch data mismatch: got %q", data)
	}

	// Bare keys resolve too.
	data, err = store.Fetch(ctx, "processed-ads/user-1/1-abc.jpg")
	if err != nil {
		t.Fatalf("Fetch by key returned error: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("Fetch by key mismatch: got %q", data)
	}
}

func TestFileStoreDeleteIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/static")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, BucketLogos, "u/logo.png", []byte("x"), "image/png"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Delete(ctx, BucketLogos, "u/logo.png"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := store.Delete(ctx, BucketLogos, "u/logo.png"); err != nil {
		t.Fatalf("second Delete returned error: %v", err)
	}
	if _, err := store.Fetch(ctx, "logos/u/logo.png"); err == nil {
		t.Fatalf("expected Fetch to fail after delete")
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
		want    string
	}{
		{name: "plain", key: "a/b.jpg", want: "a/b.jpg"},
		{name: "leading slash", key: "/a/b.jpg", want: "a/b.jpg"},
		{name: "backslashes", key: "a\\b.jpg", want: "a/b.jpg"},
		{name: "dot dot", key: "../etc/passwd", wantErr: true},
		{name: "empty", key: "   ", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitizeKey(tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("sanitizeKey(%q) expected error, got %q", tc.key, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeKey(%q) returned error: %v", tc.key, err)
			}
			if got != tc.want {
				t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestUniqueKeyNamespacesOwner(t *testing.T) {
	key := UniqueKey("user-42", "photo.PNG")
	if !strings.HasPrefix(key, "user-42/") {
		t.Fatalf("UniqueKey missing owner prefix: %q", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("UniqueKey missing lowered extension: %q", key)
	}
	if other := UniqueKey("user-42", "photo.png"); other == key {
		t.Fatalf("UniqueKey produced a collision: %q", key)
	}
}
