package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacklau/reposcope/internal/repo"
	"github.com/jacklau/reposcope/internal/store"
	"github.com/jacklau/reposcope/internal/trending"
)

var (
	trendingLanguage string
	trendingSince    string
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending GitHub repositories with topic classification",
	Long: `Fetch the GitHub trending page, classify each repository by topic,
mark repositories with cached insights, and store the listing for offline use.`,
	Args: cobra.NoArgs,
	RunE: runTrending,
}

func init() {
	trendingCmd.Flags().StringVarP(&trendingLanguage, "language", "l", "", "filter by programming language")
	trendingCmd.Flags().StringVarP(&trendingSince, "since", "s", "daily", "time window: daily, weekly or monthly")
	rootCmd.AddCommand(trendingCmd)
}

func runTrending(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c, err := initComponents(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing components: %w", err)
	}
	defer c.Store.Close()

	repos, err := c.Collector.Collect(cmd.Context(), trendingLanguage, trending.Since(trendingSince))
	if err != nil {
		return err
	}
	repos = repo.DedupeByURL(repos)

	urls := make([]string, len(repos))
	for i, r := range repos {
		urls[i] = r.URL
	}
	cached, err := c.Engine.CheckBatch(urls)
	if err != nil {
		return fmt.Errorf("checking cached insights: %w", err)
	}

	if err := c.Store.ReplaceRepoCache(store.SourceTrending, repos); err != nil {
		logger.Warn("persisting trending listing failed", "error", err)
	}

	printRepos(cmd.OutOrStdout(), repos, cached)
	return nil
}
