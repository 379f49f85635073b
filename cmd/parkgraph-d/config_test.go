package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		envVars     map[string]string
		expectError bool
		errorSubstr string
	}{
		{
			name:        "valid debounce from flag",
			args:        []string{"-debounce", "250ms"},
			expectError: false,
		},
		{
			name:        "zero debounce from flag",
			args:        []string{"-debounce", "0s"},
			expectError: true,
			errorSubstr: "debounce must be positive",
		},
		{
			name:        "negative debounce from flag",
			args:        []string{"-debounce", "-1s"},
			expectError: true,
			errorSubstr: "debounce must be positive",
		},
		{
			name:        "invalid debounce format from flag",
			args:        []string{"-debounce", "soon"},
			expectError: true,
			errorSubstr: "invalid debounce",
		},
		{
			name:        "invalid debounce from env",
			envVars:     map[string]string{"PARKGRAPH_DEBOUNCE": "whenever"},
			expectError: true,
			errorSubstr: "invalid PARKGRAPH_DEBOUNCE",
		},
		{
			name:        "negative cache size",
			args:        []string{"-cache-size", "-5"},
			expectError: true,
			errorSubstr: "cache-size cannot be negative",
		},
		{
			name:        "invalid cache size from env",
			envVars:     map[string]string{"PARKGRAPH_CACHE_SIZE": "lots"},
			expectError: true,
			errorSubstr: "invalid PARKGRAPH_CACHE_SIZE",
		},
		{
			name:        "fs web assets require a directory",
			args:        []string{"-web-assets", "fs"},
			expectError: true,
			errorSubstr: "requires web-dir",
		},
		{
			name:        "unsupported web assets mode",
			args:        []string{"-web-assets", "cdn"},
			expectError: true,
			errorSubstr: "unsupported web-assets mode",
		},
		{
			name:        "tls cert without key",
			args:        []string{"-tls-cert", "cert.pem"},
			expectError: true,
			errorSubstr: "must be set together",
		},
		{
			name:        "empty addr",
			args:        []string{"-addr", "   "},
			expectError: true,
			errorSubstr: "addr cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(tt.args)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errorSubstr)
				} else if !strings.Contains(err.Error(), tt.errorSubstr) {
					t.Errorf("expected error containing %q, got %q", tt.errorSubstr, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PARKGRAPH_ADDR", "")
	t.Setenv("PARKGRAPH_PORT", "")

	cfg, err := LoadConfig([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != "127.0.0.1:8085" {
		t.Errorf("expected default addr 127.0.0.1:8085, got %s", cfg.Addr)
	}
	if cfg.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %v", cfg.Debounce)
	}
	if cfg.CacheSize != 1024 {
		t.Errorf("expected default cache size 1024, got %d", cfg.CacheSize)
	}
	if !cfg.Watch {
		t.Error("expected watch enabled by default")
	}
	if cfg.WebAssetsMode != "embedded" {
		t.Errorf("expected embedded web assets, got %s", cfg.WebAssetsMode)
	}
}

func TestLoadConfig_AddrPrecedence(t *testing.T) {
	t.Setenv("PARKGRAPH_PORT", "9000")

	cfg, err := LoadConfig([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("expected PARKGRAPH_PORT to set addr, got %s", cfg.Addr)
	}

	t.Setenv("PARKGRAPH_ADDR", "0.0.0.0:8086")
	cfg, err = LoadConfig([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != "0.0.0.0:8086" {
		t.Errorf("expected PARKGRAPH_ADDR to win over PARKGRAPH_PORT, got %s", cfg.Addr)
	}

	cfg, err = LoadConfig([]string{"-addr", "127.0.0.1:8087"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8087" {
		t.Errorf("expected flag to win over env, got %s", cfg.Addr)
	}
}

func TestLoadConfig_ResolvesRelativePaths(t *testing.T) {
	cfg, err := LoadConfig([]string{"-data", "data/permissions.csv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !filepath.IsAbs(cfg.DataPath) {
		t.Errorf("expected absolute data path, got %s", cfg.DataPath)
	}
	cwd, _ := os.Getwd()
	want := filepath.Join(cwd, "data", "permissions.csv")
	if cfg.DataPath != want {
		t.Errorf("expected %s, got %s", want, cfg.DataPath)
	}
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	t.Setenv("PARKGRAPH_ADDR", "")
	t.Setenv("PARKGRAPH_PORT", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "parkgraph.yaml")
	content := `addr: 127.0.0.1:9090
data: campus.csv
cache_size: 64
watch: false
redis:
  addr: 127.0.0.1:6379
  prefix: "pass:"
export:
  dir: exports
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig([]string{"-config", path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != "127.0.0.1:9090" {
		t.Errorf("expected addr from file, got %s", cfg.Addr)
	}
	if cfg.CacheSize != 64 {
		t.Errorf("expected cache size from file, got %d", cfg.CacheSize)
	}
	if cfg.Watch {
		t.Error("expected watch disabled by file")
	}
	if cfg.RedisAddr != "127.0.0.1:6379" || cfg.RedisPrefix != "pass:" {
		t.Errorf("expected redis settings from file, got %s %s", cfg.RedisAddr, cfg.RedisPrefix)
	}
	if !strings.HasSuffix(cfg.DataPath, "campus.csv") || !filepath.IsAbs(cfg.DataPath) {
		t.Errorf("expected resolved data path, got %s", cfg.DataPath)
	}
	if !strings.HasSuffix(cfg.ExportDir, "exports") {
		t.Errorf("expected export dir from file, got %s", cfg.ExportDir)
	}

	// Env sits above the file.
	t.Setenv("PARKGRAPH_ADDR", "127.0.0.1:9091")
	cfg, err = LoadConfig([]string{"-config", path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9091" {
		t.Errorf("expected env to win over file, got %s", cfg.Addr)
	}

	// Flags sit above both.
	cfg, err = LoadConfig([]string{"-config", path, "-addr", "127.0.0.1:9092"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9092" {
		t.Errorf("expected flag to win over env and file, got %s", cfg.Addr)
	}
}

func TestLoadConfig_BadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("addr: [not closed"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig([]string{"-config", path}); err == nil {
		t.Fatal("expected error for malformed config file")
	}

	if _, err := LoadConfig([]string{"-config", filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
