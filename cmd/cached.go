package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacklau/reposcope/internal/insight"
	"github.com/jacklau/reposcope/internal/repo"
)

var cachedDeep bool

var cachedCmd = &cobra.Command{
	Use:   "cached <owner/repo>",
	Short: "Print the stored insight for a repository without generating",
	Args:  cobra.ExactArgs(1),
	RunE:  runCached,
}

func init() {
	cachedCmd.Flags().BoolVarP(&cachedDeep, "deep", "d", false, "look up the deep-mode insight")
	rootCmd.AddCommand(cachedCmd)
}

func runCached(cmd *cobra.Command, args []string) error {
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

	author, name, err := repo.SplitFullName(args[0])
	if err != nil {
		return err
	}
	url := "https://github.com/" + author + "/" + name

	mode := insight.ModeStandard
	if cachedDeep {
		mode = insight.ModeDeep
	}

	text, ok, err := c.Engine.Cached(url, mode)
	if err != nil {
		return fmt.Errorf("reading insight cache: %w", err)
	}
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "No cached %s insight for %s. Run 'reposcope insight %s' to generate one.\n", mode, args[0], args[0])
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
