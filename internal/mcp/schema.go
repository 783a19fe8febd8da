package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

// ServerInstructions contains the MCP server instructions for clients
const ServerInstructions = `docloader - Directory Document Loader

This server walks a directory of the configured storage root, parses every file
bound to a format by a glob pattern and returns the resulting documents in scan
order. Files matching no pattern are skipped. Patterns are evaluated in order
and the first match wins.

## Transport

This server uses streamable HTTP transport only. Connect via:
- POST /mcp  - Streamable HTTP transport (recommended)

## Tools

### load_directory
Load every matching file below a directory.
Parameters:
- path: Directory (or single file) to load, relative to the storage root
- patterns: Optional comma-separated glob=format bindings overriding the defaults
- max_concurrency: Optional number of files parsed at the same time
- include_content: Optional, return document content as well as the summary

Example: {"path": "docs", "patterns": "**/*.md=markdown"}

### search_documents
Load a directory and run a full-text query over the loaded documents.
Parameters:
- path: Directory to load
- query: Search terms
- limit: Optional maximum number of hits (default: 10)
- patterns: Optional comma-separated glob=format bindings

Example: {"path": "docs", "query": "bounded worker pool", "limit": 5}

## Formats

markdown, text, html, pdf. A PDF produces one document per page with text.

## Environment Variables

- DOCLOADER_ROOT: Storage root (default: /)
- DOCLOADER_MAX_CONCURRENCY: Parallel parsers (default: 8)
- DOCLOADER_PATTERNS: Default glob=format bindings
- PORT: HTTP server port (default: 8080)
`

// ToolDefinitions contains the MCP tool definitions
var ToolDefinitions = map[string]*mcp.Tool{
	"load_directory": {
		Name:        "load_directory",
		Description: "Load every file below a directory whose path matches a glob pattern, parsing it with the format bound to the first matching pattern. Returns documents in scan order.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Directory or file to load, relative to the storage root",
				},
				"patterns": map[string]interface{}{
					"type":        "string",
					"description": "Comma-separated glob=format bindings, e.g. '**/*.md=markdown,**/*.txt=text'",
				},
				"max_concurrency": map[string]interface{}{
					"type":        "integer",
					"description": "Number of files parsed at the same time",
					"minimum":     1,
				},
				"include_content": map[string]interface{}{
					"type":        "boolean",
					"description": "Include document content in the result",
					"default":     false,
				},
			},
			"required": []string{"path"},
		},
	},
	"search_documents": {
		Name:        "search_documents",
		Description: "Load a directory and run a BM25 full-text search over the loaded documents. Returns the best matching documents with their scores.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Directory to load, relative to the storage root",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search terms",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of hits (default: 10)",
					"minimum":     1,
					"maximum":     100,
					"default":     10,
				},
				"patterns": map[string]interface{}{
					"type":        "string",
					"description": "Comma-separated glob=format bindings",
				},
			},
			"required": []string{"path", "query"},
		},
	},
}
