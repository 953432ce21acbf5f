package cmd

import (
	"fmt"

	"github.com/joelnishanth/opsflow/internal/agents"
	"github.com/joelnishanth/opsflow/internal/config"
	"github.com/joelnishanth/opsflow/internal/core"
	"github.com/joelnishanth/opsflow/internal/logging"
	"github.com/joelnishanth/opsflow/internal/plans"
	"github.com/joelnishanth/opsflow/internal/service"
)

// buildCatalog loads the built-in plans plus any custom plan file.
func buildCatalog(cfg *config.Config, log *logging.Logger) (*plans.Catalog, error) {
	catalog := plans.NewCatalog()
	if cfg.Plans.CustomFile != "" {
		n, err := catalog.LoadFile(cfg.Plans.CustomFile)
		if err != nil {
			return nil, fmt.Errorf("loading custom plans: %w", err)
		}
		log.Info("custom plans loaded", "file", cfg.Plans.CustomFile, "count", n)
	}
	return catalog, nil
}

// buildAgentRunner selects the analysis collaborator per configuration.
func buildAgentRunner(cfg *config.Config, log *logging.Logger) (core.AgentRunner, error) {
	switch cfg.Agents.Backend {
	case "llm":
		runner, err := agents.NewLLMRunner(cfg.Agents.Model, cfg.Agents.APIKeyEnv)
		if err != nil {
			return nil, fmt.Errorf("initializing llm backend: %w", err)
		}
		log.Info("using llm agent backend", "model", cfg.Agents.Model)
		return runner, nil
	default:
		return agents.NewSimRunner(cfg.Workflow.SimulatedLatency), nil
	}
}

func orchestratorConfig(cfg *config.Config) service.OrchestratorConfig {
	return service.OrchestratorConfig{
		AnalysisTimeout:  cfg.Workflow.AnalysisTimeout,
		ExecutionTimeout: cfg.Workflow.ExecutionTimeout,
		Retry: &service.RetryPolicy{
			MaxAttempts:  cfg.Workflow.MaxAttempts,
			BaseDelay:    cfg.Workflow.RetryBaseDelay,
			MaxDelay:     10 * cfg.Workflow.RetryBaseDelay,
			JitterFactor: 0.2,
			Multiplier:   2.0,
		},
	}
}
