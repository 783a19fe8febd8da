package loader

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/storage"
)

// DefaultMaxConcurrency is the number of loaders run in parallel when none is configured
const DefaultMaxConcurrency = 8

// DirectoryLoader loads every file below a directory with the loader bound to
// the first glob pattern matching the file's qualified path.
//
// A DirectoryLoader is itself a document.Loader, so it can be registered under
// a pattern of another DirectoryLoader. The With* methods return a modified
// copy and never change the receiver, which keeps a loader safe to share
// between concurrent Load calls.
type DirectoryLoader struct {
	disk           storage.Disk
	rules          registry
	maxConcurrency int
	logger         *slog.Logger
}

// NewDirectoryLoader creates a directory loader reading through disk
func NewDirectoryLoader(disk storage.Disk) *DirectoryLoader {
	return &DirectoryLoader{
		disk:           disk,
		maxConcurrency: DefaultMaxConcurrency,
		logger:         slog.Default(),
	}
}

// WithLoader binds pattern to l. Registering a pattern again replaces its
// loader without moving it in the match order.
//
// Patterns are matched against the qualified path with '/' as separator:
// '*' and '?' never cross a '/', only '**' does. "/root/*.md" therefore
// matches /root/a.md but not /root/sub/a.md; use "/root/**.md" or
// "**/*.md" to reach nested files.
func (d *DirectoryLoader) WithLoader(pattern string, l document.Loader) *DirectoryLoader {
	c := *d
	c.rules = d.rules.with(pattern, l)
	return &c
}

// WithMaxConcurrency sets how many loaders may run at the same time
func (d *DirectoryLoader) WithMaxConcurrency(n int) *DirectoryLoader {
	c := *d
	c.maxConcurrency = n
	return &c
}

// WithLogger sets a custom logger for the loader
func (d *DirectoryLoader) WithLogger(logger *slog.Logger) *DirectoryLoader {
	c := *d
	c.logger = logger
	return &c
}

// Patterns returns the registered patterns in match order
func (d *DirectoryLoader) Patterns() []string {
	return d.rules.patterns()
}

// Disk returns the storage the loader reads through
func (d *DirectoryLoader) Disk() storage.Disk {
	return d.disk
}

// MaxConcurrency returns the configured parallelism
func (d *DirectoryLoader) MaxConcurrency() int {
	return d.maxConcurrency
}

// Load walks path, runs the matched loaders and returns their documents in
// scan order. It returns either every document or a single error.
func (d *DirectoryLoader) Load(ctx context.Context, path document.Path) ([]document.Document, error) {
	if d.maxConcurrency < 1 {
		return nil, &ConfigError{
			Field:  "max_concurrency",
			Value:  strconv.Itoa(d.maxConcurrency),
			Reason: "must be at least 1",
		}
	}

	logger := d.logger.With("run_id", uuid.NewString(), "root", path)
	start := time.Now()

	exists, err := d.disk.Exists(ctx, path.String())
	if err != nil {
		logger.ErrorContext(ctx, "failed to resolve load root",
			"error", err,
		)
		return nil, err
	}
	if !exists {
		return nil, &ResourceNotFoundError{Path: path}
	}

	tasks, err := walk(ctx, d.disk, path.String(), d.rules)
	if err != nil {
		logger.ErrorContext(ctx, "directory walk failed",
			"error", err,
		)
		return nil, err
	}

	logger.DebugContext(ctx, "directory walked",
		"tasks", len(tasks),
		"max_concurrency", d.maxConcurrency,
	)

	results, err := execute(ctx, tasks, d.maxConcurrency, logger)
	if err != nil {
		logger.ErrorContext(ctx, "directory load failed",
			"error", err,
			"tasks", len(tasks),
		)
		return nil, err
	}

	docs := flatten(results)

	logger.InfoContext(ctx, "directory loaded",
		"files", len(tasks),
		"documents", len(docs),
		"duration", time.Since(start),
	)

	return docs, nil
}
