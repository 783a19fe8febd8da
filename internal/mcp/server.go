package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kfreiman/docloader/internal/loader"
	"github.com/kfreiman/docloader/internal/parser"
	"github.com/kfreiman/docloader/internal/storage"
)

const (
	serverName    = "DocLoaderServer"
	serverVersion = "1.0.0"
)

// Server encapsulates the MCP server with all its dependencies
type Server struct {
	mcpServer *mcp.Server
	storage   AccessChecker
	loader    *loader.DirectoryLoader
	registry  *parser.Registry
	logger    *slog.Logger
	config    Config
	retry     RetryPolicy
}

// NewServer creates a new MCP server reading from the OS filesystem below cfg.Root
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	return NewServerWithDisk(cfg, storage.NewOSDisk(cfg.Root), logger)
}

// NewServerWithDisk creates a new MCP server reading through disk
func NewServerWithDisk(cfg Config, disk *storage.AferoDisk, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	retry, err := cfg.RetryPolicy()
	if err != nil {
		return nil, err
	}

	registry := parser.NewRegistry(disk)
	bindings, err := parser.ParseBindings(cfg.Patterns)
	if err != nil {
		logger.ErrorContext(context.Background(), "failed to parse patterns",
			"error", err,
			"patterns", cfg.Patterns,
		)
		return nil, fmt.Errorf("parse patterns: %w", err)
	}
	rules, err := registry.Rules(bindings)
	if err != nil {
		return nil, fmt.Errorf("resolve patterns: %w", err)
	}

	s := &Server{
		storage:  disk,
		registry: registry,
		logger:   logger,
		config:   cfg,
		retry:    retry,
		loader: loader.NewDirectoryLoaderWithConfig(loader.DirectoryLoaderConfig{
			Disk:           disk,
			Rules:          rules,
			MaxConcurrency: cfg.MaxConcurrency,
			Logger:         logger,
		}),
	}

	impl := &mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}

	s.mcpServer = mcp.NewServer(impl, &mcp.ServerOptions{
		Instructions: ServerInstructions,
	})

	s.registerTools()

	return s, nil
}

// registerTools registers all tool handlers
func (s *Server) registerTools() {
	loadTool := NewLoadDirectoryTool(s.loader, s.registry).
		WithLogger(s.logger).
		WithRetry(s.retry)
	s.mcpServer.AddTool(ToolDefinitions["load_directory"], loadTool.Call)

	searchTool := NewSearchDocumentsTool(s.loader, s.registry).
		WithLogger(s.logger).
		WithRetry(s.retry)
	s.mcpServer.AddTool(ToolDefinitions["search_documents"], searchTool.Call)
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	httpHandler := mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		JSONResponse: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/mcp", httpHandler)
	mux.HandleFunc("/health/live", s.LivenessHandler)
	mux.HandleFunc("/health/ready", s.ReadinessHandler)
	mux.HandleFunc("/", s.indexHandler)
	return mux
}

// ListenAndServe starts the HTTP server and begins handling requests
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.InfoContext(context.Background(), "starting MCP server",
		"port", s.config.Port,
		"root", s.config.Root,
		"patterns", s.loader.Patterns(),
		"endpoints", []string{"/mcp", "/health/live", "/health/ready", "/"},
	)
	return http.ListenAndServe(addr, s.Handler())
}

// indexHandler returns the server information page
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "docloader MCP Server\n\n")
	fmt.Fprintf(w, "Endpoints:\n")
	fmt.Fprintf(w, "  POST /mcp          - Streamable HTTP transport (recommended)\n")
	fmt.Fprintf(w, "  GET  /health/live  - Liveness probe\n")
	fmt.Fprintf(w, "  GET  /health/ready - Readiness probe\n")
	fmt.Fprintf(w, "  GET  /             - This help message\n\n")
	fmt.Fprintf(w, "Server: %s %s\n", serverName, serverVersion)
}
