package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage configuration",
	Annotations: map[string]string{configOnly: "true"},
	Long:        `View and change settings stored in config.toml.`,
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Annotations: map[string]string{configOnly: "true"},
	Args:        cobra.NoArgs,
	RunE:        runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:         "set [key] [value]",
	Short:       "Change a setting",
	Annotations: map[string]string{configOnly: "true"},
	Long:        `Validates and stores a single setting, for example "chunking.window 800".`,
	Args:        cobra.ExactArgs(2),
	RunE:        runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file path",
	Annotations: map[string]string{configOnly: "true"},
	Args:        cobra.NoArgs,
	RunE:        runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[storage]")
	cmd.Printf("  dir = %s\n", settings.Storage.Dir)
	cmd.Printf("  metadata_backend = %s (%s)\n", settings.Storage.MetadataBackend, settings.Storage.MetadataBackend.Description())
	cmd.Println()

	cmd.Println("[chunking]")
	cmd.Printf("  window = %d\n", settings.Chunking.Window)
	cmd.Printf("  overlap = %d\n", settings.Chunking.Overlap)
	cmd.Printf("  max_chunks = %d\n", settings.Chunking.MaxChunks)
	cmd.Printf("  lookback = %d\n", settings.Chunking.Lookback)
	cmd.Println()

	cmd.Println("[ingest]")
	cmd.Printf("  max_file_bytes = %d\n", settings.Ingest.MaxFileBytes)
	cmd.Printf("  max_text_chars = %d\n", settings.Ingest.MaxTextChars)
	cmd.Printf("  extract_timeout_seconds = %d\n", int(settings.Ingest.ExtractTimeout.Seconds()))
	cmd.Printf("  concurrency = %d\n", settings.Ingest.Concurrency)
	cmd.Println()

	cmd.Println("[retrieval]")
	cmd.Printf("  max_results = %d\n", settings.Retrieval.MaxResults)
	cmd.Println()

	cmd.Println("[watch]")
	cmd.Printf("  rate_per_second = %g\n", settings.Watch.RatePerSecond)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}
