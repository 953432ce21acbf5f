// Package config defines the engine configuration and its viper-backed loader.
package config

import (
	"fmt"
	"time"
)

// Config is the full engine configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Agents   AgentsConfig   `mapstructure:"agents"`
	Plans    PlansConfig    `mapstructure:"plans"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	// No WriteTimeout: it would cut long-lived SSE streams.
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WorkflowConfig tunes orchestrator behavior.
type WorkflowConfig struct {
	AnalysisTimeout  time.Duration `mapstructure:"analysis_timeout"`
	ExecutionTimeout time.Duration `mapstructure:"execution_timeout"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	RetryBaseDelay   time.Duration `mapstructure:"retry_base_delay"`
	SimulatedLatency time.Duration `mapstructure:"simulated_latency"`
	EventBufferSize  int           `mapstructure:"event_buffer_size"`
}

// AgentsConfig selects and configures the agent backend.
type AgentsConfig struct {
	// Backend is "sim" or "llm".
	Backend   string `mapstructure:"backend"`
	Model     string `mapstructure:"model"`
	APIKeyEnv string `mapstructure:"api_key_env"`
}

// PlansConfig points at optional user-defined plans.
type PlansConfig struct {
	CustomFile string `mapstructure:"custom_file"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Workflow.MaxAttempts < 1 {
		return fmt.Errorf("workflow max_attempts must be at least 1, got %d", c.Workflow.MaxAttempts)
	}
	if c.Workflow.EventBufferSize < 1 {
		return fmt.Errorf("workflow event_buffer_size must be at least 1, got %d", c.Workflow.EventBufferSize)
	}
	switch c.Agents.Backend {
	case "sim", "llm":
	default:
		return fmt.Errorf("unknown agents backend: %q", c.Agents.Backend)
	}
	return nil
}
