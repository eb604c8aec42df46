package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrConfigNotFound is returned when a model config id does not exist.
var ErrConfigNotFound = errors.New("model config not found")

// activeConfigKey is the app_state key holding the active model config id.
const activeConfigKey = "active_model_config"

// ModelConfig is a stored LLM provider configuration. Provider holds the
// provider kind (see the provider package); ProviderLabel carries the
// user-supplied label for custom providers. The APIKey is persisted alongside
// the record and is write-only from the consumer's perspective beyond
// connection testing and use.
type ModelConfig struct {
	ID            string
	Name          string
	Provider      string
	ProviderLabel string
	BaseURL       string
	APIKey        string
	Model         string
	Enabled       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ModelConfigPatch is a partial update; nil fields are left unchanged.
type ModelConfigPatch struct {
	Name          *string
	Provider      *string
	ProviderLabel *string
	BaseURL       *string
	APIKey        *string
	Model         *string
	Enabled       *bool
}

// SaveConfig inserts a new model config row.
func (d *DB) SaveConfig(cfg *ModelConfig) error {
	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	_, err := d.db.Exec(
		`INSERT INTO model_configs (id, name, provider, provider_label, base_url, api_key, model, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ID, cfg.Name, cfg.Provider, cfg.ProviderLabel, cfg.BaseURL, cfg.APIKey, cfg.Model,
		boolToInt(cfg.Enabled), timestamp(cfg.CreatedAt), timestamp(cfg.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving model config: %w", err)
	}
	return nil
}

// GetConfig retrieves a model config by id.
func (d *DB) GetConfig(id string) (*ModelConfig, error) {
	row := d.db.QueryRow(
		`SELECT id, name, provider, provider_label, base_url, api_key, model, enabled, created_at, updated_at
		 FROM model_configs WHERE id = ?`, id,
	)
	return scanConfig(row)
}

// ListConfigs returns all model configs in creation order.
func (d *DB) ListConfigs() ([]ModelConfig, error) {
	rows, err := d.db.Query(
		`SELECT id, name, provider, provider_label, base_url, api_key, model, enabled, created_at, updated_at
		 FROM model_configs ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing model configs: %w", err)
	}
	defer rows.Close()

	var configs []ModelConfig
	for rows.Next() {
		cfg, err := scanConfigRows(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

// UpdateConfig applies a partial update to an existing config and bumps its
// updated_at timestamp.
func (d *DB) UpdateConfig(id string, patch ModelConfigPatch) error {
	cfg, err := d.GetConfig(id)
	if err != nil {
		return err
	}

	if patch.Name != nil {
		cfg.Name = *patch.Name
	}
	if patch.Provider != nil {
		cfg.Provider = *patch.Provider
	}
	if patch.ProviderLabel != nil {
		cfg.ProviderLabel = *patch.ProviderLabel
	}
	if patch.BaseURL != nil {
		cfg.BaseURL = *patch.BaseURL
	}
	if patch.APIKey != nil {
		cfg.APIKey = *patch.APIKey
	}
	if patch.Model != nil {
		cfg.Model = *patch.Model
	}
	if patch.Enabled != nil {
		cfg.Enabled = *patch.Enabled
	}

	_, err = d.db.Exec(
		`UPDATE model_configs SET name = ?, provider = ?, provider_label = ?, base_url = ?, api_key = ?, model = ?, enabled = ?, updated_at = ?
		 WHERE id = ?`,
		cfg.Name, cfg.Provider, cfg.ProviderLabel, cfg.BaseURL, cfg.APIKey, cfg.Model,
		boolToInt(cfg.Enabled), timestamp(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating model config: %w", err)
	}
	return nil
}

// DeleteConfig removes a config. When the deleted config is the active one,
// the active pointer is cleared in the same transaction, so no reader ever
// observes a pointer to a nonexistent config.
func (d *DB) DeleteConfig(id string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM model_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting model config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return ErrConfigNotFound
	}

	if _, err := tx.Exec(`DELETE FROM app_state WHERE key = ? AND value = ?`, activeConfigKey, id); err != nil {
		return fmt.Errorf("clearing active pointer: %w", err)
	}

	return tx.Commit()
}

// SetActiveConfig marks the config as active. The id must exist.
func (d *DB) SetActiveConfig(id string) error {
	if _, err := d.GetConfig(id); err != nil {
		return err
	}
	_, err := d.db.Exec(
		`INSERT INTO app_state (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		activeConfigKey, id,
	)
	if err != nil {
		return fmt.Errorf("setting active config: %w", err)
	}
	return nil
}

// ActiveConfigID returns the active config id, or "" when none is set.
func (d *DB) ActiveConfigID() (string, error) {
	var id string
	err := d.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, activeConfigKey).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading active config: %w", err)
	}
	return id, nil
}

func scanConfig(row *sql.Row) (*ModelConfig, error) {
	var cfg ModelConfig
	var label, baseURL, apiKey, model sql.NullString
	var enabled int
	var created, updated string

	err := row.Scan(&cfg.ID, &cfg.Name, &cfg.Provider, &label, &baseURL, &apiKey, &model, &enabled, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning model config: %w", err)
	}

	cfg.ProviderLabel = label.String
	cfg.BaseURL = baseURL.String
	cfg.APIKey = apiKey.String
	cfg.Model = model.String
	cfg.Enabled = enabled != 0
	cfg.CreatedAt, _ = time.Parse(time.RFC3339, created)
	cfg.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &cfg, nil
}

func scanConfigRows(rows *sql.Rows) (*ModelConfig, error) {
	var cfg ModelConfig
	var label, baseURL, apiKey, model sql.NullString
	var enabled int
	var created, updated string

	err := rows.Scan(&cfg.ID, &cfg.Name, &cfg.Provider, &label, &baseURL, &apiKey, &model, &enabled, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("scanning model config: %w", err)
	}

	cfg.ProviderLabel = label.String
	cfg.BaseURL = baseURL.String
	cfg.APIKey = apiKey.String
	cfg.Model = model.String
	cfg.Enabled = enabled != 0
	cfg.CreatedAt, _ = time.Parse(time.RFC3339, created)
	cfg.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &cfg, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
