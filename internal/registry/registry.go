package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jacklau/reposcope/internal/provider"
	"github.com/jacklau/reposcope/internal/store"
)

var (
	// ErrNotConfigured is returned when an operation needs a provider but no
	// config is active and no ad-hoc credentials were supplied.
	ErrNotConfigured = errors.New("no model configured: add one with 'models add' or pass --api-key")

	// ErrNotFound is returned when a config id does not exist.
	ErrNotFound = errors.New("model config not found")
)

// Registry manages stored model configurations and builds provider clients
// from them.
type Registry struct {
	db     *store.DB
	logger *slog.Logger

	// newClient is swapped in tests to avoid real provider construction.
	newClient func(provider.Config) (provider.Client, error)
}

// New creates a Registry. A nil logger uses slog.Default.
func New(db *store.DB, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		db:        db,
		logger:    logger,
		newClient: provider.New,
	}
}

// List returns all stored configs in creation order.
func (r *Registry) List() ([]store.ModelConfig, error) {
	return r.db.ListConfigs()
}

// Get returns a config by id.
func (r *Registry) Get(id string) (*store.ModelConfig, error) {
	cfg, err := r.db.GetConfig(id)
	if errors.Is(err, store.ErrConfigNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cfg, err
}

// Save validates and stores a new config, assigning it a fresh id. Defaults
// for base URL and model come from the provider kind.
func (r *Registry) Save(cfg *store.ModelConfig) error {
	if err := validate(cfg); err != nil {
		return err
	}

	kind := provider.Kind(cfg.Provider)
	if cfg.BaseURL == "" {
		cfg.BaseURL = kind.DefaultBaseURL()
	}
	if cfg.Model == "" {
		cfg.Model = kind.DefaultModel()
	}
	if cfg.Name == "" {
		cfg.Name = kind.DisplayName(cfg.ProviderLabel)
	}

	cfg.ID = uuid.NewString()
	cfg.Enabled = true

	if err := r.db.SaveConfig(cfg); err != nil {
		return err
	}
	r.logger.Info("model config saved", "id", cfg.ID, "provider", cfg.Provider, "model", cfg.Model)
	return nil
}

// Update applies a partial update to an existing config.
func (r *Registry) Update(id string, patch store.ModelConfigPatch) error {
	if patch.Provider != nil {
		if !validKind(*patch.Provider) {
			return fmt.Errorf("unknown provider %q", *patch.Provider)
		}
	}
	err := r.db.UpdateConfig(id, patch)
	if errors.Is(err, store.ErrConfigNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// Delete removes a config. Deleting the active config clears the active
// selection atomically.
func (r *Registry) Delete(id string) error {
	err := r.db.DeleteConfig(id)
	if errors.Is(err, store.ErrConfigNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// SetActive marks the config as the one used by default.
func (r *Registry) SetActive(id string) error {
	err := r.db.SetActiveConfig(id)
	if errors.Is(err, store.ErrConfigNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// Active returns the currently active config, or ErrNotConfigured when none
// is set.
func (r *Registry) Active() (*store.ModelConfig, error) {
	id, err := r.db.ActiveConfigID()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNotConfigured
	}
	cfg, err := r.db.GetConfig(id)
	if errors.Is(err, store.ErrConfigNotFound) {
		// The pointer is cleared transactionally on delete, so this only
		// happens if the database was edited out-of-band.
		return nil, ErrNotConfigured
	}
	return cfg, err
}

// Resolve picks the provider client for one request. Precedence: an explicit
// config id, then an ad-hoc API key (treated as a temporary OpenAI config),
// then the active config. Fails with ErrNotConfigured before any network
// traffic when nothing is available.
func (r *Registry) Resolve(configID, apiKey string) (provider.Client, *store.ModelConfig, error) {
	var cfg *store.ModelConfig

	switch {
	case configID != "":
		c, err := r.Get(configID)
		if err != nil {
			return nil, nil, err
		}
		cfg = c
	case apiKey != "":
		cfg = &store.ModelConfig{
			Name:     "ad-hoc",
			Provider: string(provider.KindOpenAI),
			APIKey:   apiKey,
		}
	default:
		c, err := r.Active()
		if err != nil {
			return nil, nil, err
		}
		cfg = c
	}

	if !cfg.Enabled && cfg.ID != "" {
		return nil, nil, fmt.Errorf("model config %q is disabled", cfg.ID)
	}
	if cfg.APIKey == "" {
		return nil, nil, ErrNotConfigured
	}

	client, err := r.newClient(toProviderConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("building provider client: %w", err)
	}
	return client, cfg, nil
}

// TestConnection builds the provider client for the config and issues its
// minimal authenticated round trip. Nothing is mutated.
func (r *Registry) TestConnection(ctx context.Context, id string) error {
	cfg, err := r.Get(id)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return ErrNotConfigured
	}

	client, err := r.newClient(toProviderConfig(cfg))
	if err != nil {
		return fmt.Errorf("building provider client: %w", err)
	}
	return client.Ping(ctx)
}

func toProviderConfig(cfg *store.ModelConfig) provider.Config {
	return provider.Config{
		Kind:    provider.Kind(cfg.Provider),
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	}
}

func validate(cfg *store.ModelConfig) error {
	if !validKind(cfg.Provider) {
		return fmt.Errorf("unknown provider %q (want one of %v)", cfg.Provider, provider.Kinds())
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	kind := provider.Kind(cfg.Provider)
	if kind.RequiresBaseURL() && cfg.BaseURL == "" {
		return fmt.Errorf("provider %q requires a base URL", cfg.Provider)
	}
	return nil
}

func validKind(s string) bool {
	for _, k := range provider.Kinds() {
		if provider.Kind(s) == k {
			return true
		}
	}
	return false
}
