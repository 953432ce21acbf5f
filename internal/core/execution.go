package core

import "time"

// ExecStatus represents the state of a post-approval execution step.
type ExecStatus string

const (
	ExecStatusPending   ExecStatus = "pending"
	ExecStatusRunning   ExecStatus = "running"
	ExecStatusCompleted ExecStatus = "completed"
	ExecStatusFailed    ExecStatus = "failed"
)

// ExecutionStep is one step of the post-approval plan. Steps run strictly
// sequentially, unlike analysis phases.
type ExecutionStep struct {
	Name           string     `json:"name"`
	TargetProgress int        `json:"target_progress"`
	Status         ExecStatus `json:"status"`
	Details        string     `json:"details,omitempty"`
	Compensation   string     `json:"compensation,omitempty"`
	Error          string     `json:"error,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ExecutionState tracks the post-approval run: per-step records, the
// execution-scoped progress (0-100 across execution steps), and the final
// success summary once every step completes.
type ExecutionState struct {
	Steps    []*ExecutionStep `json:"steps"`
	Progress int              `json:"progress"`
	Summary  string           `json:"summary,omitempty"`
}

// NewExecutionState seeds execution state from a plan's step specs.
func NewExecutionState(specs []ExecutionStepSpec) *ExecutionState {
	es := &ExecutionState{Steps: make([]*ExecutionStep, 0, len(specs))}
	for _, s := range specs {
		es.Steps = append(es.Steps, &ExecutionStep{
			Name:           s.Name,
			TargetProgress: s.TargetProgress,
			Status:         ExecStatusPending,
			Compensation:   s.Compensation,
		})
	}
	return es
}

// Completed reports whether every step completed.
func (es *ExecutionState) Completed() bool {
	for _, s := range es.Steps {
		if s.Status != ExecStatusCompleted {
			return false
		}
	}
	return true
}

// Clone returns a deep copy for read-only snapshots.
func (es *ExecutionState) Clone() *ExecutionState {
	if es == nil {
		return nil
	}
	c := &ExecutionState{
		Progress: es.Progress,
		Summary:  es.Summary,
		Steps:    make([]*ExecutionStep, 0, len(es.Steps)),
	}
	for _, s := range es.Steps {
		sc := *s
		if s.StartedAt != nil {
			v := *s.StartedAt
			sc.StartedAt = &v
		}
		if s.CompletedAt != nil {
			v := *s.CompletedAt
			sc.CompletedAt = &v
		}
		c.Steps = append(c.Steps, &sc)
	}
	return c
}
