package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/jacklau/reposcope/internal/provider"
	"github.com/jacklau/reposcope/internal/store"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, nil)
}

// stubClient satisfies provider.Client with canned behavior.
type stubClient struct {
	pingErr error
}

func (s *stubClient) Complete(context.Context, string) (string, error) { return "", nil }
func (s *stubClient) Stream(context.Context, string) (<-chan provider.Chunk, error) {
	ch := make(chan provider.Chunk)
	close(ch)
	return ch, nil
}
func (s *stubClient) Ping(context.Context) error { return s.pingErr }

func TestSaveAssignsIDAndDefaults(t *testing.T) {
	r := newTestRegistry(t)

	cfg := &store.ModelConfig{Provider: "openai", APIKey: "sk-test"}
	if err := r.Save(cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if cfg.ID == "" {
		t.Error("expected an assigned id")
	}
	if cfg.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base URL, got %q", cfg.BaseURL)
	}
	if cfg.Model == "" {
		t.Error("expected a default model")
	}
	if cfg.Name != "OpenAI" {
		t.Errorf("expected default name OpenAI, got %q", cfg.Name)
	}
	if !cfg.Enabled {
		t.Error("new configs should be enabled")
	}

	got, err := r.Get(cfg.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.APIKey != "sk-test" {
		t.Errorf("unexpected api key %q", got.APIKey)
	}
}

func TestSaveValidation(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Save(&store.ModelConfig{Provider: "banana", APIKey: "k"}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if err := r.Save(&store.ModelConfig{Provider: "openai"}); err == nil {
		t.Error("expected error for missing api key")
	}
	if err := r.Save(&store.ModelConfig{Provider: "custom", APIKey: "k"}); err == nil {
		t.Error("expected error for custom provider without base URL")
	}
}

func TestUpdatePatch(t *testing.T) {
	r := newTestRegistry(t)

	cfg := &store.ModelConfig{Provider: "openai", APIKey: "k"}
	if err := r.Save(cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	model := "gpt-4o"
	disabled := false
	if err := r.Update(cfg.ID, store.ModelConfigPatch{Model: &model, Enabled: &disabled}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	got, err := r.Get(cfg.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Model != "gpt-4o" {
		t.Errorf("expected patched model, got %q", got.Model)
	}
	if got.Enabled {
		t.Error("expected config disabled")
	}
	if got.APIKey != "k" {
		t.Errorf("unpatched field changed: %q", got.APIKey)
	}

	bad := "banana"
	if err := r.Update(cfg.ID, store.ModelConfigPatch{Provider: &bad}); err == nil {
		t.Error("expected error patching to unknown provider")
	}
}

func TestNotFoundErrors(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
	if err := r.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
	if err := r.SetActive("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive: expected ErrNotFound, got %v", err)
	}
}

func TestActiveLifecycle(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.Active(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured with no active config, got %v", err)
	}

	cfg := &store.ModelConfig{Provider: "anthropic", APIKey: "k"}
	if err := r.Save(cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := r.SetActive(cfg.ID); err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}

	active, err := r.Active()
	if err != nil {
		t.Fatalf("Active returned error: %v", err)
	}
	if active.ID != cfg.ID {
		t.Errorf("expected active %s, got %s", cfg.ID, active.ID)
	}

	// Deleting the active config clears the selection.
	if err := r.Delete(cfg.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := r.Active(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured after deleting active, got %v", err)
	}
}

func TestResolvePrecedence(t *testing.T) {
	r := newTestRegistry(t)
	var gotCfg provider.Config
	r.newClient = func(cfg provider.Config) (provider.Client, error) {
		gotCfg = cfg
		return &stubClient{}, nil
	}

	stored := &store.ModelConfig{Provider: "anthropic", APIKey: "stored-key"}
	if err := r.Save(stored); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	active := &store.ModelConfig{Provider: "openai", APIKey: "active-key"}
	if err := r.Save(active); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := r.SetActive(active.ID); err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}

	// Explicit id wins over everything.
	_, cfg, err := r.Resolve(stored.ID, "adhoc-key")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.ID != stored.ID || gotCfg.APIKey != "stored-key" {
		t.Errorf("expected explicit config to win, got %+v", gotCfg)
	}

	// Ad-hoc key beats the active config and builds a temporary OpenAI config.
	_, cfg, err = r.Resolve("", "adhoc-key")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.ID != "" || gotCfg.APIKey != "adhoc-key" || gotCfg.Kind != provider.KindOpenAI {
		t.Errorf("expected ad-hoc openai config, got %+v", gotCfg)
	}

	// Otherwise the active config is used.
	_, cfg, err = r.Resolve("", "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.ID != active.ID || gotCfg.APIKey != "active-key" {
		t.Errorf("expected active config, got %+v", gotCfg)
	}
}

func TestResolveNothingConfigured(t *testing.T) {
	r := newTestRegistry(t)
	if _, _, err := r.Resolve("", ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestResolveDisabledConfig(t *testing.T) {
	r := newTestRegistry(t)
	r.newClient = func(provider.Config) (provider.Client, error) { return &stubClient{}, nil }

	cfg := &store.ModelConfig{Provider: "openai", APIKey: "k"}
	if err := r.Save(cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	off := false
	if err := r.Update(cfg.ID, store.ModelConfigPatch{Enabled: &off}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if _, _, err := r.Resolve(cfg.ID, ""); err == nil {
		t.Error("expected error resolving disabled config")
	}
}

func TestTestConnection(t *testing.T) {
	r := newTestRegistry(t)

	pingErr := errors.New("unreachable")
	r.newClient = func(provider.Config) (provider.Client, error) {
		return &stubClient{pingErr: pingErr}, nil
	}

	cfg := &store.ModelConfig{Provider: "openai", APIKey: "k"}
	if err := r.Save(cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := r.TestConnection(context.Background(), cfg.ID); !errors.Is(err, pingErr) {
		t.Errorf("expected ping error, got %v", err)
	}

	r.newClient = func(provider.Config) (provider.Client, error) {
		return &stubClient{}, nil
	}
	if err := r.TestConnection(context.Background(), cfg.ID); err != nil {
		t.Errorf("expected successful test, got %v", err)
	}

	if err := r.TestConnection(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
