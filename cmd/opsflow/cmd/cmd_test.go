package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/joelnishanth/opsflow/internal/agents"
	"github.com/joelnishanth/opsflow/internal/config"
	"github.com/joelnishanth/opsflow/internal/logging"
)

func TestRootCmd_Structure(t *testing.T) {
	if rootCmd.Use != "opsflow" {
		t.Errorf("expected 'opsflow', got '%s'", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("expected non-empty short description")
	}
}

func TestSubcommands_Registered(t *testing.T) {
	expected := []string{"serve", "run", "plans", "version"}
	for _, name := range expected {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s command not registered", name)
		}
	}
}

func TestVersionCmd_Output(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("expected version in output, got: %s", out)
	}
	if !strings.Contains(out, "abc123") {
		t.Errorf("expected commit in output, got: %s", out)
	}
}

func TestBuildCatalog_Builtins(t *testing.T) {
	cfg := &config.Config{}
	catalog, err := buildCatalog(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.Types()) == 0 {
		t.Error("expected built-in plans in catalog")
	}
}

func TestBuildCatalog_CustomFileMissing(t *testing.T) {
	cfg := &config.Config{}
	cfg.Plans.CustomFile = "/nonexistent/plans.yaml"
	if _, err := buildCatalog(cfg, logging.NewNop()); err == nil {
		t.Error("expected error for missing custom plan file")
	}
}

func TestBuildAgentRunner_DefaultsToSim(t *testing.T) {
	cfg := &config.Config{}
	cfg.Agents.Backend = "sim"
	runner, err := buildAgentRunner(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := runner.(*agents.SimRunner); !ok {
		t.Errorf("expected *agents.SimRunner, got %T", runner)
	}
}

func TestOrchestratorConfig_Mapping(t *testing.T) {
	cfg := &config.Config{}
	cfg.Workflow.AnalysisTimeout = 2 * time.Minute
	cfg.Workflow.ExecutionTimeout = 3 * time.Minute
	cfg.Workflow.MaxAttempts = 4
	cfg.Workflow.RetryBaseDelay = 100 * time.Millisecond

	oc := orchestratorConfig(cfg)
	if oc.AnalysisTimeout != 2*time.Minute {
		t.Errorf("expected 2m analysis timeout, got %v", oc.AnalysisTimeout)
	}
	if oc.Retry.MaxAttempts != 4 {
		t.Errorf("expected 4 max attempts, got %d", oc.Retry.MaxAttempts)
	}
	if oc.Retry.MaxDelay != time.Second {
		t.Errorf("expected 1s max delay, got %v", oc.Retry.MaxDelay)
	}
}
