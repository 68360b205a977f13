package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mark3labs/setupwizard/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpFlags struct {
	http bool
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve device-control tools over MCP",
	Long: `Serve the device profile as MCP tools (device-status, set-sim, set-network,
set-services, add-account, remove-account). A running wizard picks up every
change through its profile watcher.

By default the server speaks MCP over stdin/stdout. With --http it listens on
a random local port and prints the endpoint URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Make sure the profile exists before any tool reads it.
		if _, err := loadProfile(cfg); err != nil {
			return fmt.Errorf("failed to load device profile: %w", err)
		}

		srv := mcpserver.New(cfg.Profile)
		if !mcpFlags.http {
			return srv.ServeStdio()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if _, err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start MCP server: %w", err)
		}
		defer func() { _ = srv.Stop() }()

		fmt.Fprintln(cmd.OutOrStdout(), srv.URL())
		<-ctx.Done()
		return nil
	},
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpFlags.http, "http", false, "Serve streamable HTTP on localhost instead of stdio")
}
