// Package core holds the domain model of the guided workflow engine:
// agent tasks grouped into barrier-synchronized phases, the guided-step
// checklist, the approval gate, the post-approval execution plan, and the
// ports to the external collaborators that do the actual analysis work.
package core

import "context"

// Finding is one agent's structured contribution to the analysis. Later
// phases' prompts are built from earlier phases' findings.
type Finding struct {
	Agent   string            `json:"agent"`
	Summary string            `json:"summary"`
	Data    map[string]string `json:"data,omitempty"`
}

// PhaseContext is the input handed to the analysis collaborator for each
// agent task: the request, the phase being run, and all findings collected
// from earlier phases.
type PhaseContext struct {
	WorkflowID   WorkflowID
	WorkflowType string
	Request      Request
	PhaseLabel   string
	PhaseIndex   int
	Findings     []Finding
}

// AgentResult is the analysis collaborator's answer for one agent task.
type AgentResult struct {
	Confidence      float64
	ExecutionTimeMS int64
	AIBackendUsed   bool
	Prompt          string
	Response        string
	Finding         Finding
}

// AgentRunner is the analysis collaborator. A returned error is surfaced as
// a failed task, never silently ignored.
type AgentRunner interface {
	RunAgent(ctx context.Context, agent string, pctx PhaseContext) (*AgentResult, error)
}

// ExecutionResult is the execution collaborator's answer for one
// post-approval step.
type ExecutionResult struct {
	Details string
	Data    map[string]string
}

// ExecutionRunner is the execution collaborator for the post-approval phase.
type ExecutionRunner interface {
	RunStep(ctx context.Context, step string, rec *Recommendation) (*ExecutionResult, error)
}
