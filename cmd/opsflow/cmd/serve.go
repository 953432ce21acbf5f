package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joelnishanth/opsflow/internal/agents"
	"github.com/joelnishanth/opsflow/internal/api"
	"github.com/joelnishanth/opsflow/internal/events"
	"github.com/joelnishanth/opsflow/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow API server",
	Long: `Starts the HTTP API server exposing workflow management endpoints and
the SSE event stream.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (overrides config)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}

	log := newLogger(cfg)

	catalog, err := buildCatalog(cfg, log)
	if err != nil {
		return err
	}
	runner, err := buildAgentRunner(cfg, log)
	if err != nil {
		return err
	}
	executor := agents.NewSimExecutor(cfg.Workflow.SimulatedLatency)

	bus := events.New(cfg.Workflow.EventBufferSize)
	defer bus.Close()

	registry := service.NewRegistry(catalog, runner, executor, bus, log, orchestratorConfig(cfg))
	server := api.NewServer(registry, catalog, bus, log,
		api.WithCORSOrigins(cfg.Server.CORSOrigins),
		api.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.ShutdownTimeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, cfg.Server.Addr())
}
