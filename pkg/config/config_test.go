package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testBackendConfig struct {
	BaseURL string        `split_words:"true" required:"true"`
	Timeout time.Duration `split_words:"true" default:"15s"`
}

func TestFromFileExportsDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CFGTEST_BASE_URL=http://backend.local\nCFGTEST_TIMEOUT=3s\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("CFGTEST_BASE_URL")
		os.Unsetenv("CFGTEST_TIMEOUT")
	})

	cfg, err := FromFile[testBackendConfig]("CFGTEST", path)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if cfg.BaseURL != "http://backend.local" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
}

func TestFromFileProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CFGWIN_BASE_URL=http://from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CFGWIN_BASE_URL", "http://from-env")

	cfg, err := FromFile[testBackendConfig]("CFGWIN", path)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if cfg.BaseURL != "http://from-env" {
		t.Fatalf("BaseURL = %q, want process env value", cfg.BaseURL)
	}
	if cfg.Timeout != 15*time.Second {
		t.Fatalf("Timeout default = %v", cfg.Timeout)
	}
}

func TestFromFileMissingRequired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.env")
	if err := os.WriteFile(path, []byte("CFGMISS_TIMEOUT=1s\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CFGMISS_TIMEOUT") })

	if _, err := FromFile[testBackendConfig]("CFGMISS", path); err == nil {
		t.Fatal("expected error for missing required BASE_URL")
	}
}
