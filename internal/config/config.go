package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	GitHub   GitHubConfig   `yaml:"github"`
	Trending TrendingConfig `yaml:"trending"`
	Search   SearchConfig   `yaml:"search"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Store    StoreConfig    `yaml:"store"`
}

// GitHubConfig holds GitHub authentication settings. All fields are optional;
// without them the API is used anonymously.
type GitHubConfig struct {
	Token          string `yaml:"token"`
	AppID          int64  `yaml:"app_id"`
	InstallationID int64  `yaml:"installation_id"`
	PrivateKeyPath string `yaml:"private_key_path"`
	PrivateKey     string `yaml:"private_key"`
}

// TrendingConfig holds trending page scrape settings.
type TrendingConfig struct {
	BaseURL string `yaml:"base_url"`
}

// SearchConfig holds repository search settings.
type SearchConfig struct {
	PageSize int `yaml:"page_size"`
}

// DefaultsConfig holds default operational parameters.
type DefaultsConfig struct {
	RequestTimeoutRaw string `yaml:"request_timeout"`
}

// StoreConfig holds storage settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// RequestTimeout returns the parsed request timeout duration.
func (d DefaultsConfig) RequestTimeout() (time.Duration, error) {
	if d.RequestTimeoutRaw == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(d.RequestTimeoutRaw)
}

// envVarPattern matches ${VAR} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} placeholders with environment variable values.
// Returns an error if any referenced variable is not set.
func expandEnvVars(data []byte) ([]byte, error) {
	var missing []string

	result := envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		val, ok := os.LookupEnv(string(varName))
		if !ok {
			missing = append(missing, string(varName))
			return match
		}
		return []byte(val)
	})

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reposcope/config.yaml"
	}
	return filepath.Join(home, ".reposcope", "config.yaml")
}

// Load reads and parses a config file from the given path. A missing file is
// not an error: everything has a default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses config from raw YAML bytes, expanding env vars and validating.
func Parse(data []byte) (*Config, error) {
	expanded, err := expandEnvVars(data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Trending.BaseURL == "" {
		cfg.Trending.BaseURL = "https://github.com/trending"
	}
	if cfg.Search.PageSize == 0 {
		cfg.Search.PageSize = 20
	}
	if cfg.Defaults.RequestTimeoutRaw == "" {
		cfg.Defaults.RequestTimeoutRaw = "30s"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "~/.reposcope/reposcope.db"
	}
}

func validate(cfg *Config) error {
	if _, err := time.ParseDuration(cfg.Defaults.RequestTimeoutRaw); err != nil {
		return fmt.Errorf("invalid request_timeout %q: %w", cfg.Defaults.RequestTimeoutRaw, err)
	}
	if cfg.Search.PageSize < 1 || cfg.Search.PageSize > 100 {
		return fmt.Errorf("search page_size must be between 1 and 100, got %d", cfg.Search.PageSize)
	}
	if cfg.GitHub.AppID != 0 && cfg.GitHub.PrivateKey == "" && cfg.GitHub.PrivateKeyPath == "" {
		return fmt.Errorf("github app auth requires private_key or private_key_path")
	}
	return nil
}

// ExpandPath resolves a leading ~ in a filesystem path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
