package loader

import (
	"log/slog"

	"github.com/kfreiman/docloader/internal/storage"
)

// DirectoryLoaderConfig holds configuration for a directory loader
type DirectoryLoaderConfig struct {
	Disk           storage.Disk
	Rules          []Rule
	MaxConcurrency int          // Optional: defaults to DefaultMaxConcurrency
	Logger         *slog.Logger // Optional: defaults to slog.Default()
}

// NewDirectoryLoaderWithConfig creates a directory loader with rules
// registered in the order given
func NewDirectoryLoaderWithConfig(config DirectoryLoaderConfig) *DirectoryLoader {
	d := NewDirectoryLoader(config.Disk)

	if config.MaxConcurrency != 0 {
		d = d.WithMaxConcurrency(config.MaxConcurrency)
	}
	if config.Logger != nil {
		d = d.WithLogger(config.Logger)
	}
	for _, rule := range config.Rules {
		d = d.WithLoader(rule.Pattern, rule.Loader)
	}

	return d
}
