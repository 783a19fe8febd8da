package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/cobra"

	"github.com/kfreiman/docloader/internal/mcp"
)

// Version is the current version of docloader
const Version = "1.0.0"

// NewRootCommand creates the docloader command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "docloader",
		Short:   "Load directories of documents with glob-selected parsers",
		Version: Version,
		Long: `docloader walks a directory, picks a parser for every file from an
ordered list of glob=format bindings (first match wins) and parses the
files with bounded parallelism, returning documents in scan order.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("root", "", "storage root (env DOCLOADER_ROOT)")
	flags.String("patterns", "", "comma-separated glob=format bindings (env DOCLOADER_PATTERNS)")
	flags.Int("max-concurrency", 0, "files parsed at the same time, at least 1 (env DOCLOADER_MAX_CONCURRENCY)")
	flags.String("log-format", "", "log output format, text or json (env LOG_FORMAT)")
	flags.String("log-level", "", "log level (env LOG_LEVEL)")

	rootCmd.AddCommand(NewLoadCommand())
	rootCmd.AddCommand(NewSearchCommand())
	rootCmd.AddCommand(NewServeCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// setup reads the environment, applies flag overrides and creates the logger
func setup(cmd *cobra.Command) (mcp.Config, *slog.Logger, error) {
	var logConf cmdConfig
	if err := cleanenv.ReadEnv(&logConf); err != nil {
		return mcp.Config{}, nil, fmt.Errorf("load log config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("log-format") {
		logConf.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("log-level") {
		logConf.Level, _ = flags.GetString("log-level")
	}
	logger := createLogger(logConf)

	cfg, err := mcp.LoadConfig()
	if err != nil {
		return mcp.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.Changed("root") {
		root, _ := flags.GetString("root")
		cfg = cfg.WithRoot(root)
	}
	if flags.Changed("patterns") {
		patterns, _ := flags.GetString("patterns")
		cfg = cfg.WithPatterns(patterns)
	}
	if flags.Changed("max-concurrency") {
		n, _ := flags.GetInt("max-concurrency")
		cfg = cfg.WithMaxConcurrency(n)
	}
	if err := cfg.Validate(); err != nil {
		return mcp.Config{}, nil, err
	}
	return cfg, logger, nil
}
