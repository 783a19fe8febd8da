package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kfreiman/docloader/internal/document"
	"github.com/kfreiman/docloader/internal/loader"
	"github.com/kfreiman/docloader/internal/parser"
)

// DocumentSummary describes a loaded document without necessarily carrying its content
type DocumentSummary struct {
	Part        int               `json:"part"`
	Path        string            `json:"path"`
	Length      int               `json:"len"`
	Fingerprint string            `json:"sha256"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Content     string            `json:"content,omitempty"`
}

// LoadResult is the structured payload of the load_directory tool
type LoadResult struct {
	Path      string            `json:"path"`
	Count     int               `json:"count"`
	Documents []DocumentSummary `json:"documents"`
}

// directoryLoads builds and runs directory loads for the tools. It applies
// per-request overrides on top of the server defaults and retries transient
// storage failures.
type directoryLoads struct {
	base     *loader.DirectoryLoader
	registry *parser.Registry
	retry    RetryPolicy
	logger   *slog.Logger
}

// loaderFor returns the base loader, or a fresh one when the request
// overrides patterns or concurrency
func (d *directoryLoads) loaderFor(patterns string, maxConcurrency int) (*loader.DirectoryLoader, error) {
	l := d.base
	if patterns != "" {
		bindings, err := parser.ParseBindings(patterns)
		if err != nil {
			return nil, &ValidationError{Field: "patterns", Value: patterns, Reason: err.Error()}
		}
		rules, err := d.registry.Rules(bindings)
		if err != nil {
			return nil, &ValidationError{Field: "patterns", Value: patterns, Reason: err.Error()}
		}
		l = loader.NewDirectoryLoaderWithConfig(loader.DirectoryLoaderConfig{
			Disk:           d.base.Disk(),
			Rules:          rules,
			MaxConcurrency: d.base.MaxConcurrency(),
			Logger:         d.logger,
		})
	}
	if maxConcurrency != 0 {
		if maxConcurrency < 0 {
			return nil, &ValidationError{Field: "max_concurrency", Value: fmt.Sprint(maxConcurrency), Reason: "must be at least 1"}
		}
		l = l.WithMaxConcurrency(maxConcurrency)
	}
	return l, nil
}

func (d *directoryLoads) load(ctx context.Context, l *loader.DirectoryLoader, path string) ([]document.Document, error) {
	var docs []document.Document
	err := Retry(ctx, d.retry, func(attempt int) error {
		var err error
		docs, err = l.Load(ctx, document.Path(path))
		if err != nil && attempt > 1 {
			d.logger.WarnContext(ctx, "directory load attempt failed",
				"error", err,
				"attempt", attempt,
				"path", path,
			)
		}
		return err
	})
	return docs, err
}

// LoadDirectoryTool handles the load_directory tool
type LoadDirectoryTool struct {
	loads  *directoryLoads
	logger *slog.Logger
}

// NewLoadDirectoryTool creates a load_directory tool running loads built from base
func NewLoadDirectoryTool(base *loader.DirectoryLoader, registry *parser.Registry) *LoadDirectoryTool {
	logger := slog.Default()
	return &LoadDirectoryTool{
		loads: &directoryLoads{
			base:     base,
			registry: registry,
			retry:    DefaultRetryPolicy,
			logger:   logger,
		},
		logger: logger,
	}
}

// WithLogger sets a custom logger for the tool
func (t *LoadDirectoryTool) WithLogger(logger *slog.Logger) *LoadDirectoryTool {
	t.logger = logger
	t.loads.logger = logger
	return t
}

// WithRetry sets the retry policy for transient storage failures
func (t *LoadDirectoryTool) WithRetry(policy RetryPolicy) *LoadDirectoryTool {
	t.loads.retry = policy
	return t
}

// Call implements the MCP tool handler
func (t *LoadDirectoryTool) Call(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Path           string `json:"path"`
		Patterns       string `json:"patterns"`
		MaxConcurrency int    `json:"max_concurrency"`
		IncludeContent bool   `json:"include_content"`
	}

	if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
		return nil, &ValidationError{
			Field:  "arguments",
			Reason: fmt.Sprintf("invalid JSON format: %v", err),
		}
	}

	if err := validatePath(args.Path); err != nil {
		return errorResult(err), err
	}

	l, err := t.loads.loaderFor(args.Patterns, args.MaxConcurrency)
	if err != nil {
		return errorResult(err), err
	}

	docs, err := t.loads.load(ctx, l, args.Path)
	if err != nil {
		t.logger.ErrorContext(ctx, "load_directory failed",
			"error", err,
			"path", args.Path,
		)
		return errorResult(err), err
	}

	result := LoadResult{
		Path:      args.Path,
		Count:     len(docs),
		Documents: Summarize(docs, args.IncludeContent),
	}
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	t.logger.InfoContext(ctx, "load_directory completed",
		"path", args.Path,
		"documents", len(docs),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, nil
}

// Summarize numbers docs in load order and optionally keeps their content
func Summarize(docs []document.Document, includeContent bool) []DocumentSummary {
	out := make([]DocumentSummary, len(docs))
	for i, doc := range docs {
		out[i] = DocumentSummary{
			Part:        i,
			Path:        doc.Path.String(),
			Length:      len(doc.Content),
			Fingerprint: doc.Fingerprint,
			Metadata:    doc.Metadata,
		}
		if includeContent {
			out[i].Content = doc.Content
		}
	}
	return out
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)},
		},
		IsError: true,
	}
}

// validatePath rejects empty paths and paths that try to leave the storage root
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return &ValidationError{Field: "path", Reason: "required parameter missing"}
	}

	for segment := range strings.SplitSeq(path, "/") {
		if segment == ".." {
			return &SecurityError{
				Type:    "path_traversal",
				Details: fmt.Sprintf("path contains traversal sequence: %s", path),
			}
		}
	}

	if strings.Contains(path, "\x00") {
		return &SecurityError{
			Type:    "null_byte",
			Details: "path contains null bytes",
		}
	}

	return nil
}
