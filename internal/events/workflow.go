package events

// Event type constants for workflow lifecycle events.
const (
	TypeWorkflowStarted   = "workflow_started"
	TypeAnalysisCompleted = "analysis_completed"
	TypeWorkflowCompleted = "workflow_completed"
	TypeWorkflowFailed    = "workflow_failed"
	TypeWorkflowReset     = "workflow_reset"
)

// WorkflowStartedEvent is emitted when a workflow begins analyzing.
type WorkflowStartedEvent struct {
	BaseEvent
	WorkflowType string `json:"workflow_type"`
	Service      string `json:"service"`
	TaskCount    int    `json:"task_count"`
}

// NewWorkflowStartedEvent creates a new workflow started event.
func NewWorkflowStartedEvent(workflowID, workflowType, service string, taskCount int) WorkflowStartedEvent {
	return WorkflowStartedEvent{
		BaseEvent:    NewBaseEvent(TypeWorkflowStarted, workflowID),
		WorkflowType: workflowType,
		Service:      service,
		TaskCount:    taskCount,
	}
}

// AnalysisCompletedEvent is emitted when the final phase succeeds and the
// workflow pauses at the approval gate.
type AnalysisCompletedEvent struct {
	BaseEvent
	Headline          string  `json:"headline"`
	AverageConfidence float64 `json:"average_confidence"`
	WallClockMS       int64   `json:"wall_clock_ms"`
}

// NewAnalysisCompletedEvent creates a new analysis completed event.
func NewAnalysisCompletedEvent(workflowID, headline string, avgConfidence float64, wallClockMS int64) AnalysisCompletedEvent {
	return AnalysisCompletedEvent{
		BaseEvent:         NewBaseEvent(TypeAnalysisCompleted, workflowID),
		Headline:          headline,
		AverageConfidence: avgConfidence,
		WallClockMS:       wallClockMS,
	}
}

// WorkflowCompletedEvent is emitted once per workflow instance, on the
// transition to the completed state. Priority event.
type WorkflowCompletedEvent struct {
	BaseEvent
	ManualOverride bool   `json:"manual_override"`
	Summary        string `json:"summary,omitempty"`
}

// NewWorkflowCompletedEvent creates a new workflow completed event.
func NewWorkflowCompletedEvent(workflowID string, manualOverride bool, summary string) WorkflowCompletedEvent {
	return WorkflowCompletedEvent{
		BaseEvent:      NewBaseEvent(TypeWorkflowCompleted, workflowID),
		ManualOverride: manualOverride,
		Summary:        summary,
	}
}

// WorkflowFailedEvent is emitted when a workflow fails. Priority event.
type WorkflowFailedEvent struct {
	BaseEvent
	Phase string `json:"phase,omitempty"`
	Error string `json:"error"`
}

// NewWorkflowFailedEvent creates a new workflow failed event.
func NewWorkflowFailedEvent(workflowID, phase string, err error) WorkflowFailedEvent {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	return WorkflowFailedEvent{
		BaseEvent: NewBaseEvent(TypeWorkflowFailed, workflowID),
		Phase:     phase,
		Error:     errStr,
	}
}

// WorkflowResetEvent is emitted when an instance is reset to idle.
type WorkflowResetEvent struct {
	BaseEvent
}

// NewWorkflowResetEvent creates a new workflow reset event.
func NewWorkflowResetEvent(workflowID string) WorkflowResetEvent {
	return WorkflowResetEvent{
		BaseEvent: NewBaseEvent(TypeWorkflowReset, workflowID),
	}
}
