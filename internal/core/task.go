package core

import (
	"fmt"
	"time"
)

// TaskStatus represents the current state of an agent task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// AgentTask is a named unit of analysis work within a phase. Confidence and
// execution time are absent until the task reaches a terminal state; a task
// never transitions out of a terminal state.
type AgentTask struct {
	Name            string     `json:"name"`
	Status          TaskStatus `json:"status"`
	Confidence      *float64   `json:"confidence,omitempty"`
	ExecutionTimeMS *int64     `json:"execution_time_ms,omitempty"`
	AIBackendUsed   bool       `json:"ai_backend_used"`
	Prompt          string     `json:"prompt,omitempty"`
	Response        string     `json:"response,omitempty"`
	Retries         int        `json:"retries,omitempty"`
	Error           string     `json:"error,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// NewAgentTask creates a pending task.
func NewAgentTask(name string) *AgentTask {
	return &AgentTask{
		Name:   name,
		Status: TaskStatusPending,
	}
}

// MarkRunning transitions the task to running state.
func (t *AgentTask) MarkRunning() error {
	if t.Status != TaskStatusPending {
		return ErrInvalidState(CodeInvalidState,
			fmt.Sprintf("cannot start task %s in %s state", t.Name, t.Status))
	}
	t.Status = TaskStatusRunning
	now := time.Now()
	t.StartedAt = &now
	return nil
}

// MarkCompleted transitions the task to completed state and records the
// collaborator's telemetry.
func (t *AgentTask) MarkCompleted(res *AgentResult) error {
	if t.Status != TaskStatusRunning {
		return ErrInvalidState(CodeInvalidState,
			fmt.Sprintf("cannot complete task %s in %s state", t.Name, t.Status))
	}
	if res.Confidence < 0 || res.Confidence > 1 {
		return ErrValidation(CodeInvalidConfidence,
			fmt.Sprintf("confidence %.3f outside [0,1] for task %s", res.Confidence, t.Name))
	}
	t.Status = TaskStatusCompleted
	conf := res.Confidence
	elapsed := res.ExecutionTimeMS
	if elapsed < 0 {
		elapsed = 0
	}
	t.Confidence = &conf
	t.ExecutionTimeMS = &elapsed
	t.AIBackendUsed = res.AIBackendUsed
	t.Prompt = res.Prompt
	t.Response = res.Response
	now := time.Now()
	t.CompletedAt = &now
	return nil
}

// MarkFailed transitions the task to failed state. Pending tasks may be
// failed directly when a sibling task aborts the phase.
func (t *AgentTask) MarkFailed(err error, elapsedMS int64) error {
	if t.IsTerminal() {
		return ErrInvalidState(CodeInvalidState,
			fmt.Sprintf("cannot fail task %s in %s state", t.Name, t.Status))
	}
	t.Status = TaskStatusFailed
	if err != nil {
		t.Error = err.Error()
	}
	if elapsedMS >= 0 {
		t.ExecutionTimeMS = &elapsedMS
	}
	now := time.Now()
	t.CompletedAt = &now
	return nil
}

// IsTerminal returns true if the task is in a terminal state.
func (t *AgentTask) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsSuccess returns true if the task completed successfully.
func (t *AgentTask) IsSuccess() bool {
	return t.Status == TaskStatusCompleted
}

// ElapsedMS returns the recorded execution time, or 0 when absent.
func (t *AgentTask) ElapsedMS() int64 {
	if t.ExecutionTimeMS == nil {
		return 0
	}
	return *t.ExecutionTimeMS
}

// Clone returns a deep copy for read-only snapshots.
func (t *AgentTask) Clone() *AgentTask {
	c := *t
	if t.Confidence != nil {
		v := *t.Confidence
		c.Confidence = &v
	}
	if t.ExecutionTimeMS != nil {
		v := *t.ExecutionTimeMS
		c.ExecutionTimeMS = &v
	}
	if t.StartedAt != nil {
		v := *t.StartedAt
		c.StartedAt = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	return &c
}
