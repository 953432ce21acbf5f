package core

import (
	"fmt"
	"time"
)

// WorkflowID uniquely identifies a workflow instance.
type WorkflowID string

// WorkflowStatus represents the overall state of a workflow instance.
type WorkflowStatus string

const (
	WorkflowStatusIdle             WorkflowStatus = "idle"
	WorkflowStatusAnalyzing        WorkflowStatus = "analyzing"
	WorkflowStatusAwaitingApproval WorkflowStatus = "awaiting_approval"
	WorkflowStatusExecuting        WorkflowStatus = "executing"
	WorkflowStatusCompleted        WorkflowStatus = "completed"
	WorkflowStatusFailed           WorkflowStatus = "failed"
)

// ApprovalDecision records the human gate outcome. Empty until the gate is
// decided; set exactly once per workflow instance.
type ApprovalDecision string

const (
	ApprovalNone     ApprovalDecision = ""
	ApprovalApproved ApprovalDecision = "approved"
	ApprovalRejected ApprovalDecision = "rejected"
)

// Workflow is the single source of truth for one in-flight workflow
// instance: its status, progress, phases with their agent tasks, the guided
// checklist, and the approval/execution records.
//
// Progress is monotonic non-decreasing for the life of the instance; only a
// hard reset (a fresh instance) returns it to zero.
type Workflow struct {
	ID               WorkflowID       `json:"id"`
	Type             string           `json:"type"`
	Status           WorkflowStatus   `json:"status"`
	Request          Request          `json:"request"`
	Progress         int              `json:"progress"`
	CurrentStepLabel string           `json:"current_step_label,omitempty"`
	Phases           []*Phase         `json:"phases"`
	Steps            *StepTracker     `json:"-"`
	Recommendation   *Recommendation  `json:"recommendation,omitempty"`
	Approval         ApprovalDecision `json:"approval,omitempty"`
	ManualOverride   bool             `json:"manual_override,omitempty"`
	Execution        *ExecutionState  `json:"execution,omitempty"`
	Error            string           `json:"error,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}

// NewIdleWorkflow creates an empty idle instance for a plan: no tasks, zero
// progress. This is the state after construction and after a reset.
func NewIdleWorkflow(plan *PhasePlan) *Workflow {
	return &Workflow{
		Type:      plan.Type,
		Status:    WorkflowStatusIdle,
		Phases:    []*Phase{},
		Steps:     NewStepTracker(plan.GuidedSteps),
		CreatedAt: time.Now(),
	}
}

// Seed populates the instance for a fresh run: an ID, the validated request,
// and all agent tasks pending across every phase of the plan.
func (w *Workflow) Seed(id WorkflowID, plan *PhasePlan, req Request) error {
	if w.Status != WorkflowStatusIdle {
		return ErrInvalidState(CodeWorkflowActive,
			fmt.Sprintf("cannot start workflow in %s state", w.Status))
	}
	w.ID = id
	w.Request = req
	w.Progress = 0
	w.Phases = make([]*Phase, 0, len(plan.Phases))
	for _, spec := range plan.Phases {
		w.Phases = append(w.Phases, NewPhase(spec))
	}
	w.Execution = NewExecutionState(plan.ExecutionSteps)
	w.Status = WorkflowStatusAnalyzing
	return nil
}

// AdvanceProgress raises progress to target. Lower targets are ignored so
// progress never decreases.
func (w *Workflow) AdvanceProgress(target int) {
	if target > 100 {
		target = 100
	}
	if target > w.Progress {
		w.Progress = target
	}
}

// CompleteAnalysis records the recommendation and pauses at the approval
// gate. Called once, after the final phase succeeds.
func (w *Workflow) CompleteAnalysis(rec *Recommendation) error {
	if w.Status != WorkflowStatusAnalyzing {
		return ErrInvalidState(CodeInvalidState,
			fmt.Sprintf("cannot complete analysis in %s state", w.Status))
	}
	if rec == nil {
		return ErrValidation(CodeInvalidPlan, "recommendation cannot be nil")
	}
	w.Recommendation = rec
	w.Status = WorkflowStatusAwaitingApproval
	w.Progress = 100
	return nil
}

// Decide records the approval gate outcome, exactly once, and only while
// awaiting approval. Approval transitions to executing; rejection completes
// the workflow with a manual-override marker and skips the execution plan.
func (w *Workflow) Decide(approved bool) error {
	if w.Status != WorkflowStatusAwaitingApproval {
		return ErrInvalidState(CodeApprovalNotPending,
			fmt.Sprintf("cannot decide approval in %s state", w.Status))
	}
	if w.Approval != ApprovalNone {
		return ErrInvalidState(CodeAlreadyDecided, "approval already decided")
	}
	if approved {
		w.Approval = ApprovalApproved
		w.Status = WorkflowStatusExecuting
		return nil
	}
	w.Approval = ApprovalRejected
	w.ManualOverride = true
	w.Status = WorkflowStatusCompleted
	now := time.Now()
	w.CompletedAt = &now
	return nil
}

// CompleteExecution finishes the workflow after every execution step ran.
func (w *Workflow) CompleteExecution(summary string) error {
	if w.Status != WorkflowStatusExecuting {
		return ErrInvalidState(CodeInvalidState,
			fmt.Sprintf("cannot complete execution in %s state", w.Status))
	}
	w.Status = WorkflowStatusCompleted
	if w.Execution != nil {
		w.Execution.Summary = summary
	}
	now := time.Now()
	w.CompletedAt = &now
	return nil
}

// Fail moves the workflow to the failed state, preserving collected
// telemetry and the furthest-reached progress for diagnostics.
func (w *Workflow) Fail(err error) error {
	if w.Status != WorkflowStatusAnalyzing && w.Status != WorkflowStatusExecuting {
		return ErrInvalidState(CodeInvalidState,
			fmt.Sprintf("cannot fail workflow in %s state", w.Status))
	}
	w.Status = WorkflowStatusFailed
	if err != nil {
		w.Error = err.Error()
	}
	now := time.Now()
	w.CompletedAt = &now
	return nil
}

// IsTerminal returns true for completed or failed instances.
func (w *Workflow) IsTerminal() bool {
	return w.Status == WorkflowStatusCompleted || w.Status == WorkflowStatusFailed
}

// Summary aggregates telemetry across the instance's phases.
func (w *Workflow) Summary() Summary {
	return Summarize(w.Phases)
}
