package main

import (
	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/mcp"
	"github.com/rohankatakam/insightify/internal/storage"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve stored records over the Model Context Protocol on stdio",
	Long: `Start an MCP server on stdin/stdout exposing the tools
get_daily_record, get_monthly_report and list_days. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return errors.StorageError(err, "failed to open storage")
	}
	defer store.Close()

	return mcp.Serve(ctx, mcp.NewTools(store, logger), Version)
}
