// Package agents provides the analysis and execution collaborators: a
// deterministic simulated backend used by default and in demos, and an
// LLM-backed runner for live analysis.
package agents

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joelnishanth/opsflow/internal/core"
)

// SimRunner is a deterministic simulated analysis backend. For a given
// agent name and request it always synthesizes the same finding and
// confidence, which keeps demo runs and tests reproducible.
type SimRunner struct {
	latency time.Duration

	mu       sync.Mutex
	failures map[string]error
}

// NewSimRunner creates a simulated runner with the given per-agent latency.
func NewSimRunner(latency time.Duration) *SimRunner {
	return &SimRunner{
		latency:  latency,
		failures: make(map[string]error),
	}
}

// FailAgent makes the next calls for the named agent return err.
// Pass nil to clear the injection.
func (s *SimRunner) FailAgent(agent string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, agent)
		return
	}
	s.failures[agent] = err
}

// RunAgent synthesizes a deterministic analysis result for one agent task.
func (s *SimRunner) RunAgent(ctx context.Context, agent string, pctx core.PhaseContext) (*core.AgentResult, error) {
	start := time.Now()

	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	injected := s.failures[agent]
	s.mu.Unlock()
	if injected != nil {
		return nil, injected
	}

	prompt := buildPrompt(agent, pctx)
	confidence := simConfidence(agent, pctx.Request.Service)
	finding := simFinding(agent, pctx)

	return &core.AgentResult{
		Confidence:      confidence,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
		AIBackendUsed:   false,
		Prompt:          prompt,
		Response:        finding.Summary,
		Finding:         finding,
	}, nil
}

// buildPrompt renders the prompt an agent would receive, including the
// findings accumulated from earlier phases.
func buildPrompt(agent string, pctx core.PhaseContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s agent in the %q phase of a %s workflow.\n",
		agent, pctx.PhaseLabel, pctx.WorkflowType)
	fmt.Fprintf(&b, "Service: %s\n", pctx.Request.Service)
	if pctx.Request.Environment != "" {
		fmt.Fprintf(&b, "Environment: %s\n", pctx.Request.Environment)
	}
	if pctx.Request.Severity != "" {
		fmt.Fprintf(&b, "Severity: %s\n", pctx.Request.Severity)
	}
	fmt.Fprintf(&b, "Task: %s\n", pctx.Request.Description)
	if len(pctx.Request.Requirements) > 0 {
		b.WriteString("Requirements:\n")
		keys := make([]string, 0, len(pctx.Request.Requirements))
		for k := range pctx.Request.Requirements {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, pctx.Request.Requirements[k])
		}
	}
	if len(pctx.Findings) > 0 {
		b.WriteString("Findings from earlier phases:\n")
		for _, f := range pctx.Findings {
			fmt.Fprintf(&b, "  [%s] %s\n", f.Agent, f.Summary)
		}
	}
	return b.String()
}

// simConfidence derives a stable confidence in [0.72, 0.97] from the agent
// and service names.
func simConfidence(agent, service string) float64 {
	h := fnv.New32a()
	h.Write([]byte(agent))
	h.Write([]byte{'/'})
	h.Write([]byte(service))
	return 0.72 + float64(h.Sum32()%26)/100.0
}

func simFinding(agent string, pctx core.PhaseContext) core.Finding {
	summary := fmt.Sprintf("%s assessment for %s: no blocking issues found during %q",
		agent, pctx.Request.Service, pctx.PhaseLabel)
	data := map[string]string{
		agent + ".status": "ok",
		agent + ".phase":  pctx.PhaseLabel,
	}
	return core.Finding{Agent: agent, Summary: summary, Data: data}
}

// SimExecutor is the simulated execution collaborator. Each step succeeds
// after the configured latency unless a failure was injected for it.
type SimExecutor struct {
	latency time.Duration

	mu       sync.Mutex
	failures map[string]error
}

// NewSimExecutor creates a simulated executor with the given per-step latency.
func NewSimExecutor(latency time.Duration) *SimExecutor {
	return &SimExecutor{
		latency:  latency,
		failures: make(map[string]error),
	}
}

// FailStep makes the next calls for the named step return err.
func (s *SimExecutor) FailStep(step string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, step)
		return
	}
	s.failures[step] = err
}

// RunStep simulates one post-approval execution step.
func (s *SimExecutor) RunStep(ctx context.Context, step string, rec *core.Recommendation) (*core.ExecutionResult, error) {
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	injected := s.failures[step]
	s.mu.Unlock()
	if injected != nil {
		return nil, injected
	}

	details := fmt.Sprintf("%s completed", step)
	if rec != nil && rec.Headline != "" {
		details = fmt.Sprintf("%s completed per recommendation: %s", step, rec.Headline)
	}
	return &core.ExecutionResult{
		Details: details,
		Data:    map[string]string{"step": step, "status": "ok"},
	}, nil
}
