package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kfreiman/docloader/internal/index"
	"github.com/kfreiman/docloader/internal/loader"
	"github.com/kfreiman/docloader/internal/parser"
)

// SearchHit is a single entry of the search_documents result
type SearchHit struct {
	DocumentSummary
	Score float64 `json:"score"`
}

// SearchResult is the structured payload of the search_documents tool
type SearchResult struct {
	Path   string      `json:"path"`
	Query  string      `json:"query"`
	Loaded int         `json:"loaded"`
	Hits   []SearchHit `json:"hits"`
}

// SearchDocumentsTool loads a directory into a fresh in-memory index and queries it
type SearchDocumentsTool struct {
	loads  *directoryLoads
	logger *slog.Logger
}

// NewSearchDocumentsTool creates a search_documents tool running loads built from base
func NewSearchDocumentsTool(base *loader.DirectoryLoader, registry *parser.Registry) *SearchDocumentsTool {
	logger := slog.Default()
	return &SearchDocumentsTool{
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
func (t *SearchDocumentsTool) WithLogger(logger *slog.Logger) *SearchDocumentsTool {
	t.logger = logger
	t.loads.logger = logger
	return t
}

// WithRetry sets the retry policy for transient storage failures
func (t *SearchDocumentsTool) WithRetry(policy RetryPolicy) *SearchDocumentsTool {
	t.loads.retry = policy
	return t
}

// Call implements the MCP tool handler
func (t *SearchDocumentsTool) Call(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Path     string `json:"path"`
		Query    string `json:"query"`
		Limit    int    `json:"limit"`
		Patterns string `json:"patterns"`
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
	if strings.TrimSpace(args.Query) == "" {
		err := &ValidationError{Field: "query", Reason: "required parameter missing"}
		return errorResult(err), err
	}
	if args.Limit < 0 || args.Limit > 100 {
		err := &ValidationError{Field: "limit", Value: fmt.Sprint(args.Limit), Reason: "must be between 1 and 100"}
		return errorResult(err), err
	}

	l, err := t.loads.loaderFor(args.Patterns, 0)
	if err != nil {
		return errorResult(err), err
	}

	docs, err := t.loads.load(ctx, l, args.Path)
	if err != nil {
		t.logger.ErrorContext(ctx, "search_documents load failed",
			"error", err,
			"path", args.Path,
		)
		return errorResult(err), err
	}

	idx, err := index.New(t.logger)
	if err != nil {
		return errorResult(err), err
	}
	defer idx.Close()

	if err := idx.Add(ctx, docs); err != nil {
		return errorResult(err), err
	}

	hits, err := idx.Search(ctx, args.Query, args.Limit)
	if err != nil {
		return errorResult(err), err
	}

	result := SearchResult{
		Path:   args.Path,
		Query:  args.Query,
		Loaded: len(docs),
		Hits:   make([]SearchHit, len(hits)),
	}
	for i, hit := range hits {
		result.Hits[i] = SearchHit{
			DocumentSummary: DocumentSummary{
				Part:        i,
				Path:        hit.Document.Path.String(),
				Length:      len(hit.Document.Content),
				Fingerprint: hit.Document.Fingerprint,
				Metadata:    hit.Document.Metadata,
				Content:     hit.Document.Content,
			},
			Score: hit.Score,
		}
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	t.logger.InfoContext(ctx, "search_documents completed",
		"path", args.Path,
		"query", args.Query,
		"loaded", len(docs),
		"hits", len(hits),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, nil
}
