package core

import "time"

// Snapshot is the read-only view handed to the presentation layer after
// every internal mutation. All nested structures are deep copies.
type Snapshot struct {
	WorkflowID       WorkflowID       `json:"workflow_id"`
	Type             string           `json:"type"`
	Status           WorkflowStatus   `json:"status"`
	Progress         int              `json:"progress"`
	CurrentStepLabel string           `json:"current_step_label,omitempty"`
	GuidedSteps      []GuidedStep     `json:"guided_steps"`
	Phases           []*Phase         `json:"phases"`
	Summary          Summary          `json:"summary"`
	Recommendation   *Recommendation  `json:"recommendation,omitempty"`
	Approval         ApprovalDecision `json:"approval,omitempty"`
	ManualOverride   bool             `json:"manual_override,omitempty"`
	Execution        *ExecutionState  `json:"execution,omitempty"`
	Error            string           `json:"error,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}

// SnapshotOf builds a snapshot from a workflow instance. The caller must
// hold whatever lock guards the instance.
func SnapshotOf(w *Workflow) Snapshot {
	s := Snapshot{
		WorkflowID:       w.ID,
		Type:             w.Type,
		Status:           w.Status,
		Progress:         w.Progress,
		CurrentStepLabel: w.CurrentStepLabel,
		GuidedSteps:      w.Steps.Steps(),
		Phases:           make([]*Phase, 0, len(w.Phases)),
		Summary:          w.Summary(),
		Recommendation:   w.Recommendation.Clone(),
		Approval:         w.Approval,
		ManualOverride:   w.ManualOverride,
		Execution:        w.Execution.Clone(),
		Error:            w.Error,
		CreatedAt:        w.CreatedAt,
	}
	for _, p := range w.Phases {
		s.Phases = append(s.Phases, p.Clone())
	}
	if w.CompletedAt != nil {
		v := *w.CompletedAt
		s.CompletedAt = &v
	}
	return s
}

// AgentTasks flattens the snapshot's phases into a single task list in
// phase order.
func (s Snapshot) AgentTasks() []*AgentTask {
	var tasks []*AgentTask
	for _, p := range s.Phases {
		tasks = append(tasks, p.Tasks...)
	}
	return tasks
}
