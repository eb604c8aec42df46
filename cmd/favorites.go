package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite <owner/repo>",
	Short: "Toggle a repository in the favorites list",
	Long: `Toggle the favorited state of a repository. Favoriting stores a snapshot
of the repository's metadata as it is known right now; running the command
again removes it.`,
	Args: cobra.ExactArgs(1),
	RunE: runFavorite,
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List favorited repositories, most recently added first",
	Args:  cobra.NoArgs,
	RunE:  runFavorites,
}

func init() {
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func runFavorite(cmd *cobra.Command, args []string) error {
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

	r, err := resolveRepo(cmd.Context(), c, args[0])
	if err != nil {
		return err
	}

	nowFavorite, err := c.Store.ToggleFavorite(r)
	if err != nil {
		return fmt.Errorf("toggling favorite: %w", err)
	}

	if nowFavorite {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites.\n", r.FullName())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites.\n", r.FullName())
	}
	return nil
}

func runFavorites(cmd *cobra.Command, args []string) error {
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

	repos, err := c.Store.ListFavorites()
	if err != nil {
		return fmt.Errorf("listing favorites: %w", err)
	}
	if len(repos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No favorites yet. Add one with 'reposcope favorite <owner/repo>'.")
		return nil
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
