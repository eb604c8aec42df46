package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseFullConfig(t *testing.T) {
	yaml := `
github:
  token: ghp_test
trending:
  base_url: https://example.com/trending
search:
  page_size: 50
defaults:
  request_timeout: 45s
store:
  path: /tmp/test.db
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if cfg.GitHub.Token != "ghp_test" {
		t.Errorf("unexpected token %q", cfg.GitHub.Token)
	}
	if cfg.Trending.BaseURL != "https://example.com/trending" {
		t.Errorf("unexpected trending base url %q", cfg.Trending.BaseURL)
	}
	if cfg.Search.PageSize != 50 {
		t.Errorf("unexpected page size %d", cfg.Search.PageSize)
	}
	timeout, err := cfg.Defaults.RequestTimeout()
	if err != nil {
		t.Fatalf("RequestTimeout returned error: %v", err)
	}
	if timeout != 45*time.Second {
		t.Errorf("unexpected timeout %v", timeout)
	}
	if cfg.Store.Path != "/tmp/test.db" {
		t.Errorf("unexpected store path %q", cfg.Store.Path)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if cfg.Trending.BaseURL != "https://github.com/trending" {
		t.Errorf("unexpected default trending url %q", cfg.Trending.BaseURL)
	}
	if cfg.Search.PageSize != 20 {
		t.Errorf("unexpected default page size %d", cfg.Search.PageSize)
	}
	timeout, _ := cfg.Defaults.RequestTimeout()
	if timeout != 30*time.Second {
		t.Errorf("unexpected default timeout %v", timeout)
	}
	if !strings.HasSuffix(cfg.Store.Path, "reposcope.db") {
		t.Errorf("unexpected default store path %q", cfg.Store.Path)
	}
}

func TestParseEnvExpansion(t *testing.T) {
	t.Setenv("REPOSCOPE_TEST_TOKEN", "expanded-token")

	cfg, err := Parse([]byte("github:\n  token: ${REPOSCOPE_TEST_TOKEN}\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.GitHub.Token != "expanded-token" {
		t.Errorf("expected env expansion, got %q", cfg.GitHub.Token)
	}
}

func TestParseMissingEnvVar(t *testing.T) {
	_, err := Parse([]byte("github:\n  token: ${REPOSCOPE_DEFINITELY_UNSET}\n"))
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
	if !strings.Contains(err.Error(), "REPOSCOPE_DEFINITELY_UNSET") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestParseValidation(t *testing.T) {
	if _, err := Parse([]byte("defaults:\n  request_timeout: soon\n")); err == nil {
		t.Error("expected error for bad duration")
	}
	if _, err := Parse([]byte("search:\n  page_size: 500\n")); err == nil {
		t.Error("expected error for out-of-range page size")
	}
	if _, err := Parse([]byte("github:\n  app_id: 123\n")); err == nil {
		t.Error("expected error for app auth without a key")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Search.PageSize != 20 {
		t.Errorf("expected defaults, got page size %d", cfg.Search.PageSize)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("search:\n  page_size: 10\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Search.PageSize != 10 {
		t.Errorf("unexpected page size %d", cfg.Search.PageSize)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandPath("~/x.db"); got != filepath.Join(home, "x.db") {
		t.Errorf("unexpected expansion %q", got)
	}
	if got := ExpandPath("/abs/x.db"); got != "/abs/x.db" {
		t.Errorf("absolute path should pass through, got %q", got)
	}
}
