// Planbarómetro: strategic capability diagnosis MCP server.
//
// Scores public institutions against a capability model (TOPP by
// default) and raises strategic alerts from the dimension profile.
//
// Usage:
//
//	planbarometro serve              # Start MCP server (stdio transport)
//	planbarometro score answers.yaml # Score a responses file and print JSON
//	planbarometro models             # List available capability models
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/planbarometro/internal/config"
	"github.com/HendryAvila/planbarometro/internal/metrics"
	pbserver "github.com/HendryAvila/planbarometro/internal/server"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "planbarometro",
		Short: "Strategic capability diagnosis MCP server",
		Long: `Planbarómetro scores institutions against a capability model and
raises strategic alerts from the resulting dimension profile.

Configuration is read from ~/.planbarometro/config.yaml (or --config),
then .env, then PLANBAROMETRO_* environment variables.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(scoreCmd(&configPath))
	cmd.AddCommand(modelsCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "planbarometro v%s\n", pbserver.Version)
		},
	})
	return cmd
}

// setup loads the configuration and builds the logger. Logs always go to
// stderr so they never interfere with MCP's stdio transport on stdout.
func setup(configPath string) (*config.Config, *slog.Logger, error) {
	boot := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg, err := config.NewLoader(boot).Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serveCmd(configPath *string) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				cfg.Metrics.Addr = metricsAddr
			}
			return serve(cfg, logger)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address, e.g. :9090")
	return cmd
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec *metrics.Recorder
	if cfg.Metrics.Addr != "" {
		rec = metrics.New()
		go func() {
			if err := rec.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics endpoint failed", slog.String("error", err.Error()))
			}
		}()
	}

	s, cleanup, err := pbserver.New(ctx, cfg, logger, rec)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

func modelsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available capability models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}
			models, err := pbserver.LoadModels(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range models.IDs() {
				m, _ := models.Get(id)
				fmt.Fprintf(out, "%-12s %3d elements  %s\n", m.ID, m.ElementCount(), m.Name)
			}
			return nil
		},
	}
}
