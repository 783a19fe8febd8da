package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kfreiman/docloader/internal/mcp"
)

// NewServeCommand creates the command starting the MCP server
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"mcp-server"},
		Short:   "Start an MCP server exposing load_directory and search_documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				port, _ := cmd.Flags().GetInt("port")
				cfg = cfg.WithPort(port)
			}

			logger.InfoContext(ctx, "mcp server starting",
				"port", cfg.Port,
				"root", cfg.Root,
				"max_concurrency", cfg.MaxConcurrency,
			)

			srv, err := mcp.NewServer(cfg, logger)
			if err != nil {
				logger.ErrorContext(ctx, "failed to create MCP server",
					"error", err,
				)
				return err
			}

			if err := srv.ListenAndServe(); err != nil {
				logger.ErrorContext(ctx, "failed to start MCP server",
					"error", err,
				)
				return err
			}
			return nil
		},
	}
	cmd.Flags().Int("port", 8080, "HTTP server port (env PORT)")
	return cmd
}
