package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TimeoutSec != 20 || cfg.RetryMax != 5 || cfg.MaxConcurrency != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.UserAgent == "" {
		t.Fatal("default user agent missing")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHESSCOM_BASE_URL", "http://localhost:9999/pub")
	t.Setenv("CHESSCOM_TIMEOUT_SEC", "7")
	t.Setenv("FETCH_MAX_CONCURRENCY", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:9999/pub" || cfg.TimeoutSec != 7 || cfg.MaxConcurrency != 3 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadHeadersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.yaml")
	if err := os.WriteFile(path, []byte("X-Contact: ops@example.com\nAccept-Language: en\n"), 0o644); err != nil {
		t.Fatalf("write headers file: %v", err)
	}
	t.Setenv("CHESSCOM_HEADERS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ExtraHeaders["X-Contact"] != "ops@example.com" || cfg.ExtraHeaders["Accept-Language"] != "en" {
		t.Fatalf("headers file not applied: %+v", cfg.ExtraHeaders)
	}

	t.Setenv("CHESSCOM_HEADERS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("missing headers file should fail")
	}
}
