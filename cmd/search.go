package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jacklau/reposcope/internal/repo"
	"github.com/jacklau/reposcope/internal/search"
	"github.com/jacklau/reposcope/internal/store"
)

var (
	searchRewrite bool
	searchConfig  string
	searchAPIKey  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search GitHub repositories, optionally with an AI-rewritten query",
	Long: `Search GitHub repositories sorted by stars. With --rewrite the query is
first translated into GitHub search qualifiers by the configured model; if
the rewrite fails, the raw query is used unchanged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVarP(&searchRewrite, "rewrite", "r", false, "rewrite the query with the configured model")
	searchCmd.Flags().StringVar(&searchConfig, "model-config", "", "model config id to use for the rewrite")
	searchCmd.Flags().StringVar(&searchAPIKey, "api-key", "", "ad-hoc OpenAI API key for the rewrite")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	query := strings.Join(args, " ")
	rewritten := ""

	if searchRewrite {
		client, _, err := c.Registry.Resolve(searchConfig, searchAPIKey)
		if err != nil {
			return err
		}
		out, err := search.Rewrite(cmd.Context(), client, query)
		if err != nil {
			// The rewrite is an optimization; a plain search still works.
			logger.Warn("query rewrite failed, using raw query", "error", err)
		} else {
			rewritten = out
			fmt.Fprintf(cmd.OutOrStdout(), "Query rewritten to: %s\n\n", rewritten)
		}
	}

	effective := query
	if rewritten != "" {
		effective = rewritten
	}

	repos, err := c.Searcher.Search(cmd.Context(), effective)
	if err != nil {
		return err
	}
	repos = repo.DedupeByURL(repos)

	if err := c.Store.LogSearch(query, rewritten); err != nil {
		logger.Warn("recording search history failed", "error", err)
	}
	if err := c.Store.ReplaceRepoCache(store.SourceSearch, repos); err != nil {
		logger.Warn("persisting search listing failed", "error", err)
	}

	urls := make([]string, len(repos))
	for i, r := range repos {
		urls[i] = r.URL
	}
	cached, err := c.Engine.CheckBatch(urls)
	if err != nil {
		return fmt.Errorf("checking cached insights: %w", err)
	}

	printRepos(cmd.OutOrStdout(), repos, cached)
	return nil
}
