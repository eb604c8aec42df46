package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacklau/reposcope/internal/insight"
	"github.com/jacklau/reposcope/internal/pubsub"
)

var (
	insightDeep    bool
	insightRefresh bool
	insightConfig  string
	insightAPIKey  string
)

var insightCmd = &cobra.Command{
	Use:   "insight <owner/repo>",
	Short: "Generate (or replay) a streaming AI analysis of a repository",
	Long: `Generate an AI insight for a repository and stream it to stdout. Results
are cached per repository and analysis mode; a cached insight is replayed
without contacting the model. Use --refresh to force regeneration and
--deep to include the file tree and manifest in the analysis.`,
	Args: cobra.ExactArgs(1),
	RunE: runInsight,
}

func init() {
	insightCmd.Flags().BoolVarP(&insightDeep, "deep", "d", false, "gather file tree and manifest context")
	insightCmd.Flags().BoolVar(&insightRefresh, "refresh", false, "regenerate even when a cached insight exists")
	insightCmd.Flags().StringVar(&insightConfig, "model-config", "", "model config id to use")
	insightCmd.Flags().StringVar(&insightAPIKey, "api-key", "", "ad-hoc OpenAI API key")
	rootCmd.AddCommand(insightCmd)
}

func runInsight(cmd *cobra.Command, args []string) error {
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

	client, modelCfg, err := c.Registry.Resolve(insightConfig, insightAPIKey)
	if err != nil {
		return err
	}
	logger.Debug("provider resolved", "provider", modelCfg.Provider, "model", modelCfg.Model)

	r, err := resolveRepo(cmd.Context(), c, args[0])
	if err != nil {
		return err
	}

	mode := insight.ModeStandard
	if insightDeep {
		mode = insight.ModeDeep
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sub := c.Broker.Subscribe(ctx)

	// Failures surface as rendered events, not process errors: partial
	// output plus an inline error message is a defined terminal state.
	out := cmd.OutOrStdout()
	for evt := range c.Engine.Generate(ctx, r, client, mode, insightRefresh) {
		switch evt.Type {
		case insight.Token:
			fmt.Fprint(out, evt.Text)
		case insight.Error:
			fmt.Fprintf(out, "\n\n[generation failed: %s]\n", evt.Text)
		case insight.Done:
			fmt.Fprintln(out)
		}
	}

	if n, ok := pendingNotification(sub); ok {
		logger.Info("generation finished",
			"url", n.URL, "mode", string(n.Mode),
			"duration", n.Duration.Round(time.Millisecond), "failed", n.Err != "")
	}

	return nil
}

// pendingNotification drains one buffered completion summary. The engine
// publishes before it closes the event stream, so by the time Done has been
// consumed any notification is already waiting; a cache replay publishes
// nothing and the receive must not block.
func pendingNotification(sub <-chan pubsub.Event[insight.Notification]) (insight.Notification, bool) {
	select {
	case evt, ok := <-sub:
		if !ok {
			return insight.Notification{}, false
		}
		return evt.Payload, true
	default:
		return insight.Notification{}, false
	}
}
