package events

// Event type constants for the approval gate and execution plan.
const (
	TypeApprovalDecided        = "approval_decided"
	TypeExecutionStepStarted   = "execution_step_started"
	TypeExecutionStepCompleted = "execution_step_completed"
)

// ApprovalDecidedEvent is emitted when the human gate is decided.
type ApprovalDecidedEvent struct {
	BaseEvent
	Approved bool `json:"approved"`
}

// NewApprovalDecidedEvent creates a new approval decided event.
func NewApprovalDecidedEvent(workflowID string, approved bool) ApprovalDecidedEvent {
	return ApprovalDecidedEvent{
		BaseEvent: NewBaseEvent(TypeApprovalDecided, workflowID),
		Approved:  approved,
	}
}

// ExecutionStepStartedEvent is emitted when a post-approval step begins.
type ExecutionStepStartedEvent struct {
	BaseEvent
	Step string `json:"step"`
}

// NewExecutionStepStartedEvent creates a new execution step started event.
func NewExecutionStepStartedEvent(workflowID, step string) ExecutionStepStartedEvent {
	return ExecutionStepStartedEvent{
		BaseEvent: NewBaseEvent(TypeExecutionStepStarted, workflowID),
		Step:      step,
	}
}

// ExecutionStepCompletedEvent is emitted when a post-approval step finishes.
type ExecutionStepCompletedEvent struct {
	BaseEvent
	Step     string `json:"step"`
	Progress int    `json:"progress"`
}

// NewExecutionStepCompletedEvent creates a new execution step completed event.
func NewExecutionStepCompletedEvent(workflowID, step string, progress int) ExecutionStepCompletedEvent {
	return ExecutionStepCompletedEvent{
		BaseEvent: NewBaseEvent(TypeExecutionStepCompleted, workflowID),
		Step:      step,
		Progress:  progress,
	}
}
