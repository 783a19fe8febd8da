package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/loader"
	"github.com/kfreiman/docloader/internal/mcp"
	"github.com/kfreiman/docloader/internal/parser"
	"github.com/kfreiman/docloader/internal/storage"
)

// NewLoadCommand creates the load command
func NewLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [path]",
		Short: "Load a directory and print one line per document",
		Long: `Load every file below path whose qualified path matches one of the
configured patterns. Each document is printed as part, path, length and
SHA-256 fingerprint; --json prints the documents instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLoad,
	}
	cmd.Flags().Bool("json", false, "print documents as JSON")
	cmd.Flags().Bool("content", false, "include document content in JSON output")
	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	path = loadPath(cfg.Root, path)

	l, err := newDirectoryLoader(cfg, storage.NewOSDisk(cfg.Root), logger)
	if err != nil {
		return err
	}

	docs, err := l.Load(cmd.Context(), document.Path(path))
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	withContent, _ := cmd.Flags().GetBool("content")
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), mcp.Summarize(docs, withContent))
	}
	return writeSummary(cmd.OutOrStdout(), docs)
}

// loadPath resolves a command line path. Under the filesystem root a relative
// path is taken from the working directory; under any other root it is
// relative to that root.
func loadPath(root, arg string) string {
	if root != "" && root != "/" {
		if arg == "" {
			return "/"
		}
		return arg
	}
	if arg == "" {
		arg = "."
	}
	if filepath.IsAbs(arg) {
		return arg
	}
	if abs, err := filepath.Abs(arg); err == nil {
		return abs
	}
	return arg
}

// newDirectoryLoader builds a directory loader from cfg using the bundled formats
func newDirectoryLoader(cfg mcp.Config, disk *storage.AferoDisk, logger *slog.Logger) (*loader.DirectoryLoader, error) {
	bindings, err := parser.ParseBindings(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	rules, err := parser.NewRegistry(disk).Rules(bindings)
	if err != nil {
		return nil, err
	}
	return loader.NewDirectoryLoaderWithConfig(loader.DirectoryLoaderConfig{
		Disk:           disk,
		Rules:          rules,
		MaxConcurrency: cfg.MaxConcurrency,
		Logger:         logger,
	}), nil
}

// writeSummary prints one line per document in load order
func writeSummary(w io.Writer, docs []document.Document) error {
	for i, doc := range docs {
		if _, err := fmt.Fprintf(w, "part=%d path=%s len=%d sha256=%s\n", i, doc.Path, len(doc.Content), doc.Fingerprint); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
