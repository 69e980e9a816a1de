package commands

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/infrax/infra-engine/internal/advisor"
	"github.com/infrax/infra-engine/internal/api"
	"github.com/infrax/infra-engine/internal/codegen"
	"github.com/infrax/infra-engine/internal/config"
	"github.com/infrax/infra-engine/internal/cost"
	"github.com/infrax/infra-engine/internal/diagram"
	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/orchestrator"
	"github.com/infrax/infra-engine/internal/planner"
	"github.com/infrax/infra-engine/internal/repository"
	"github.com/infrax/infra-engine/internal/selector"
)

var serverPort string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP API server",
	Long: `Start the orchestration engine HTTP API server.

The server exposes REST endpoints for:
  - Running the intelligent workflow pipeline
  - Browsing stored workflows and their code versions
  - Predictive cost forecasts
  - The infrastructure advisor (chat, validate, scan, query)

Examples:
  # Start server on default port
  infra-engine server

  # Start server on custom port
  infra-engine server --port 9090

Environment variables:
  DATABASE_URL         - PostgreSQL connection string (required)
  LLM_URL              - Completion service base URL (default: http://localhost:8000)
  LLM_TIMEOUT_SECONDS  - Per-completion timeout (default: 60)
  OUTPUT_DIR           - Directory for generated code copies (default: generated)
  CORS_ORIGINS         - Comma-separated CORS origins (default: localhost dev ports)
  LOG_LEVEL            - Logging level (debug/info/warn/error)`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&serverPort, "port", "", "HTTP server port (overrides PORT)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyLogLevel(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	port := serverPort
	if port == "" {
		port = cfg.Port
	}

	log.WithFields(log.Fields{
		"port":    port,
		"llm_url": cfg.LLMURL,
	}).Info("Server configuration loaded")

	store, err := repository.NewPostgres(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	client := llm.NewClient(cfg.LLMURL, cfg.LLMTimeout)
	engine := orchestrator.New(
		planner.New(client),
		selector.New(client),
		cost.New(client),
		codegen.New(),
		diagram.New(client),
		store,
		codegen.NewArtifactWriter(cfg.OutputDir),
	)

	server := api.New(engine, store, advisor.New(client), cfg.CORSOrigins)
	return server.Run(port)
}

func applyLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
