// Package cli implements the docctx command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/docctx/internal/adapters/driven/config/file"
	filestore "github.com/custodia-labs/docctx/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/docctx/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docctx/internal/chunker"
	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
	"github.com/custodia-labs/docctx/internal/core/ports/driving"
	"github.com/custodia-labs/docctx/internal/core/services"
	"github.com/custodia-labs/docctx/internal/extractors"
	"github.com/custodia-labs/docctx/internal/logger"
)

// HomeEnv overrides the default home directory.
const HomeEnv = "DOCCTX_HOME"

// Command annotations controlling what setup wires.
const (
	// skipWiring marks commands that need no services.
	skipWiring = "skip-wiring"

	// configOnly marks commands that need only the settings, so that a
	// broken configuration can still be inspected and repaired.
	configOnly = "config-only"
)

var version = "dev"

// Flags.
var (
	verbose bool
	homeDir string
)

// Services wired by PersistentPreRunE. Tests assign these directly.
var (
	documentService  driving.DocumentService
	retrievalService driving.RetrievalService
	settingsService  driving.SettingsService
	configStore      driven.ConfigStore
	watchRate        float64
	closeStores      func() error
)

var rootCmd = &cobra.Command{
	Use:   "docctx",
	Short: "Local document context for LLM prompts",
	Long: `docctx ingests local documents (text, markdown, HTML, PDF, DOCX, CSV),
splits them into overlapping chunks and answers keyword queries with a
context string ready to place in a prompt.

Documents are identified by the digest of their bytes, so ingesting the
same file twice stores it once.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "configuration directory (default $"+HomeEnv+" or ~/.docctx)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipWiring] == "true" {
		return nil
	}

	if cmd.Annotations[configOnly] == "true" {
		if settingsService != nil {
			return nil
		}
		home, err := resolveHome()
		if err != nil {
			return err
		}
		_, err = wireSettings(home)
		return err
	}

	if documentService != nil {
		return nil
	}
	home, err := resolveHome()
	if err != nil {
		return err
	}
	return wire(home)
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeStores == nil {
		return nil
	}
	err := closeStores()
	closeStores = nil
	return err
}

// resolveHome picks the home directory from --home, then the environment,
// then the default.
func resolveHome() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	if env := os.Getenv(HomeEnv); env != "" {
		return env, nil
	}
	home, err := configfile.DefaultHome()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return home, nil
}

// wireSettings builds the config store and settings service rooted at home.
func wireSettings(home string) (*services.SettingsService, error) {
	logger.Debug("home: %s", home)

	cfg, err := configfile.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	svc := services.NewSettingsService(cfg, home)
	settingsService = svc
	configStore = cfg
	return svc, nil
}

// wire builds the stores and services rooted at home.
func wire(home string) error {
	logger.Section("Startup")

	settingsSvc, err := wireSettings(home)
	if err != nil {
		return err
	}
	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings in %s: %w", configStore.Path(), err)
	}

	meta, closer, err := openMetadataStore(settings.Storage)
	if err != nil {
		return err
	}
	sidecars, err := filestore.NewSidecarStore(settings.Storage.Dir)
	if err != nil {
		if closer != nil {
			closer() //nolint:errcheck
		}
		return fmt.Errorf("opening sidecar store: %w", err)
	}
	logger.Debug("storage: %s (%s index)", settings.Storage.Dir, settings.Storage.MetadataBackend)

	cache := services.NewChunkCache(meta, sidecars)
	documentService = services.NewDocumentService(
		meta,
		sidecars,
		cache,
		extractors.FromSettings(settings.Ingest),
		chunker.FromSettings(settings.Chunking),
		settings.Ingest,
	)
	retrievalService = services.NewRetrievalService(meta, cache, settings.Retrieval.MaxResults)
	watchRate = settings.Watch.RatePerSecond
	closeStores = closer
	return nil
}

func openMetadataStore(s domain.StorageSettings) (driven.MetadataStore, func() error, error) {
	switch s.MetadataBackend {
	case domain.MetadataBackendSQLite:
		store, err := sqlite.NewStore(s.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite index in %s: %w", filepath.Clean(s.Dir), err)
		}
		return store, store.Close, nil
	case domain.MetadataBackendFile:
		store, err := filestore.NewMetadataStore(s.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening metadata index: %w", err)
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown metadata backend %q", domain.ErrInvalidInput, s.MetadataBackend)
	}
}

// describeError turns domain errors into a short user-facing reason.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.Is(err, domain.ErrUnsupported):
		return "unsupported format"
	case errors.Is(err, domain.ErrTooLarge):
		return "file too large"
	case errors.Is(err, domain.ErrEmptyContent):
		return "no text could be extracted"
	case errors.Is(err, domain.ErrExtractionTimeout):
		return "extraction timed out"
	default:
		return err.Error()
	}
}
