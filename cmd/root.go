package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	gogithub "github.com/google/go-github/v60/github"

	"github.com/jacklau/reposcope/internal/config"
	"github.com/jacklau/reposcope/internal/github"
	"github.com/jacklau/reposcope/internal/insight"
	"github.com/jacklau/reposcope/internal/pubsub"
	"github.com/jacklau/reposcope/internal/registry"
	"github.com/jacklau/reposcope/internal/search"
	"github.com/jacklau/reposcope/internal/store"
	"github.com/jacklau/reposcope/internal/trending"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "reposcope",
	Short: "Discover trending GitHub repositories and analyze them with AI",
	Long: `Reposcope collects trending GitHub repositories, classifies them by topic,
searches GitHub with AI-optimized queries, and generates cached streaming
AI insights about any repository.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", fmt.Sprintf("config file (default %s)", config.DefaultPath()))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// components holds initialized components for use by subcommands.
type components struct {
	Config    *config.Config
	Store     *store.DB
	GHClient  *gogithub.Client
	Fetcher   *github.Fetcher
	Context   *github.ContextSource
	Collector *trending.Collector
	Searcher  *search.Searcher
	Registry  *registry.Registry
	Broker    *pubsub.Broker[insight.Notification]
	Engine    *insight.Engine
	Logger    *slog.Logger
}

// initComponents creates all components from config.
func initComponents(cfg *config.Config, logger *slog.Logger) (*components, error) {
	c := &components{
		Config: cfg,
		Logger: logger,
	}

	dbPath := config.ExpandPath(cfg.Store.Path)
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	c.Store = db

	gh, err := github.NewClient(github.Auth{
		Token:          cfg.GitHub.Token,
		AppID:          cfg.GitHub.AppID,
		InstallationID: cfg.GitHub.InstallationID,
		PrivateKey:     []byte(cfg.GitHub.PrivateKey),
		PrivateKeyPath: cfg.GitHub.PrivateKeyPath,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}
	c.GHClient = gh

	timeout, err := cfg.Defaults.RequestTimeout()
	if err != nil {
		return nil, fmt.Errorf("parsing request timeout: %w", err)
	}

	c.Fetcher = github.NewFetcher(timeout, logger)
	c.Context = github.NewContextSource(gh, c.Fetcher, logger)
	c.Collector = trending.NewCollector(c.Fetcher, cfg.Trending.BaseURL, logger)
	c.Searcher = search.NewSearcher(gh, cfg.Search.PageSize, logger)
	c.Registry = registry.New(db, logger)
	c.Broker = pubsub.NewBroker[insight.Notification]()
	c.Engine = insight.NewEngine(db, c.Context, c.Broker, logger)

	return c, nil
}
