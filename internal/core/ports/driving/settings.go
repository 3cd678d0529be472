package driving

import "github.com/custodia-labs/docctx/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single setting by key after validating it.
	Set(key, value string) error

	// Keys returns all recognised setting keys, sorted.
	Keys() []string
}
