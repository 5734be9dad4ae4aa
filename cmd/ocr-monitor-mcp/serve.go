package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-monitor-mcp/internal/config"
	"github.com/ironsheep/ocr-monitor-mcp/internal/ocr"
	"github.com/ironsheep/ocr-monitor-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Run the MCP server on stdin/stdout.

This is also what runs when no subcommand is given. Configure it in your MCP
client (e.g., Claude Desktop) as the command to launch.

When a config file is in use it is watched: log_level and
engine.max_concurrent take effect immediately, pool and buffer sizing on the
next start.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	server.Version = Version
	initial := *e.cfg.Get()

	e.cfg.OnChange(func(cfg *config.Config) {
		if logLevel == "" {
			e.level.Set(cfg.SlogLevel())
		}
		ocr.SetConcurrencyLimit(int64(cfg.Engine.MaxConcurrent))
		if cfg.Pool != initial.Pool || cfg.Buffer != initial.Buffer {
			e.logger.Warn("pool and buffer sizing changes apply after restart")
		}
	})
	if e.cfg.ConfigFileUsed() != "" {
		e.cfg.WatchConfig()
	}

	info := e.rec.Info()
	e.logger.Info("starting MCP server",
		"version", Version,
		"config", e.cfg.ConfigFileUsed(),
		"engine", info.Backend,
		"engine_available", info.Available,
		"pool", initial.Pool.Size)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.srv.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		e.logger.Info("shutting down")
		return nil
	}
}
