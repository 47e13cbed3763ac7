package infra

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfigDefaultStorageBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := "http://localhost:8080/static"
	if cfg.StorageBaseURL != expected {
		t.Fatalf("StorageBaseURL mismatch: got %q want %q", cfg.StorageBaseURL, expected)
	}
}

func TestLoadConfigInheritsPortInStorageBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "1919")
	t.Setenv("STORAGE_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := "http://localhost:1919/static"
	if cfg.StorageBaseURL != expected {
		t.Fatalf("StorageBaseURL mismatch: got %q want %q", cfg.StorageBaseURL, expected)
	}
}

func TestLoadConfigSupabaseRequiresCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for supabase backend without credentials")
	}

	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBackend != StorageBackendSupabase {
		t.Fatalf("StorageBackend mismatch: got %q", cfg.StorageBackend)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_BACKEND", "ftp")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown storage backend")
	}
}

func TestLoadConfigTimeoutOrdering(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COPY_TIMEOUT_SECONDS", "30")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "30")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when provider timeout is not shorter than copy timeout")
	}

	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "20")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.CopyTimeout != 30*time.Second || cfg.ProviderTimeout != 20*time.Second {
		t.Fatalf("timeouts mismatch: copy=%v provider=%v", cfg.CopyTimeout, cfg.ProviderTimeout)
	}
}
