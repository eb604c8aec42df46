package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jacklau/reposcope/internal/provider"
	"github.com/jacklau/reposcope/internal/registry"
	"github.com/jacklau/reposcope/internal/store"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage LLM model configurations",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored model configurations",
	Args:  cobra.NoArgs,
	RunE:  runModelsList,
}

var (
	addName     string
	addProvider string
	addLabel    string
	addBaseURL  string
	addAPIKey   string
	addModel    string
)

var modelsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a model configuration",
	Args:  cobra.NoArgs,
	RunE:  runModelsAdd,
}

var (
	updateName    string
	updateBaseURL string
	updateAPIKey  string
	updateModel   string
	updateEnabled string
)

var modelsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a model configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsUpdate,
}

var modelsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a model configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsRemove,
}

var modelsUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Select the active model configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsUse,
}

var modelsActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the active model configuration",
	Args:  cobra.NoArgs,
	RunE:  runModelsActive,
}

var modelsTestCmd = &cobra.Command{
	Use:   "test <id>",
	Short: "Test connectivity of a model configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsTest,
}

func init() {
	modelsAddCmd.Flags().StringVar(&addName, "name", "", "display name (defaults to the provider name)")
	modelsAddCmd.Flags().StringVar(&addProvider, "provider", "", fmt.Sprintf("provider kind, one of %v", provider.Kinds()))
	modelsAddCmd.Flags().StringVar(&addLabel, "label", "", "label for custom providers")
	modelsAddCmd.Flags().StringVar(&addBaseURL, "base-url", "", "API base URL (defaults per provider)")
	modelsAddCmd.Flags().StringVar(&addAPIKey, "api-key", "", "API key")
	modelsAddCmd.Flags().StringVar(&addModel, "model", "", "model name (defaults per provider)")
	modelsAddCmd.MarkFlagRequired("provider")
	modelsAddCmd.MarkFlagRequired("api-key")

	modelsUpdateCmd.Flags().StringVar(&updateName, "name", "", "display name")
	modelsUpdateCmd.Flags().StringVar(&updateBaseURL, "base-url", "", "API base URL")
	modelsUpdateCmd.Flags().StringVar(&updateAPIKey, "api-key", "", "API key")
	modelsUpdateCmd.Flags().StringVar(&updateModel, "model", "", "model name")
	modelsUpdateCmd.Flags().StringVar(&updateEnabled, "enabled", "", "true or false")

	modelsCmd.AddCommand(modelsListCmd, modelsAddCmd, modelsUpdateCmd, modelsRemoveCmd, modelsUseCmd, modelsActiveCmd, modelsTestCmd)
	rootCmd.AddCommand(modelsCmd)
}

// openRegistry is the shared setup for all models subcommands.
func openRegistry() (*components, error) {
	logger := setupLogger()
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	c, err := initComponents(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing components: %w", err)
	}
	return c, nil
}

func runModelsList(cmd *cobra.Command, args []string) error {
	c, err := openRegistry()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	configs, err := c.Registry.List()
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No model configurations. Add one with 'reposcope models add'.")
		return nil
	}

	activeID := ""
	if active, err := c.Registry.Active(); err == nil {
		activeID = active.ID
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPROVIDER\tMODEL\tENABLED\tACTIVE")
	for _, cfg := range configs {
		mark := ""
		if cfg.ID == activeID {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
			cfg.ID, cfg.Name, provider.Kind(cfg.Provider).DisplayName(cfg.ProviderLabel), cfg.Model, cfg.Enabled, mark)
	}
	w.Flush()
	return nil
}

func runModelsAdd(cmd *cobra.Command, args []string) error {
	c, err := openRegistry()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	cfg := &store.ModelConfig{
		Name:          addName,
		Provider:      addProvider,
		ProviderLabel: addLabel,
		BaseURL:       addBaseURL,
		APIKey:        addAPIKey,
		Model:         addModel,
	}
	if err := c.Registry.Save(cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added model config %s (%s, %s).\n", cfg.ID, cfg.Name, cfg.Model)

	// First config becomes active automatically.
	if _, err := c.Registry.Active(); errors.Is(err, registry.ErrNotConfigured) {
		if err := c.Registry.SetActive(cfg.ID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Set as active model config.")
	}
	return nil
}

func runModelsUpdate(cmd *cobra.Command, args []string) error {
	c, err := openRegistry()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	var patch store.ModelConfigPatch
	if cmd.Flags().Changed("name") {
		patch.Name = &updateName
	}
	if cmd.Flags().Changed("base-url") {
		patch.BaseURL = &updateBaseURL
	}
	if cmd.Flags().Changed("api-key") {
		patch.APIKey = &updateAPIKey
	}
	if cmd.Flags().Changed("model") {
		patch.Model = &updateModel
	}
	if cmd.Flags().Changed("enabled") {
		enabled := updateEnabled == "true"
		patch.Enabled = &enabled
	}

	if err := c.Registry.Update(args[0], patch); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated model config %s.\n", args[0])
	return nil
}

func runModelsRemove(cmd *cobra.Command, args []string) error {
	c, err := openRegistry()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	if err := c.Registry.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed model config %s.\n", args[0])
	return nil
}

func runModelsUse(cmd *cobra.Command, args []string) error {
	c, err := openRegistry()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	if err := c.Registry.SetActive(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Active model config is now %s.\n", args[0])
	return nil
}

func runModelsActive(cmd *cobra.Command, args []string) error {
	c, err := openRegistry()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	cfg, err := c.Registry.Active()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%s, model %s)\n",
		cfg.ID, cfg.Name, provider.Kind(cfg.Provider).DisplayName(cfg.ProviderLabel), cfg.Model)
	return nil
}

func runModelsTest(cmd *cobra.Command, args []string) error {
	c, err := openRegistry()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	if err := c.Registry.TestConnection(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Connection OK.")
	return nil
}
