package events

// Event type constants for phase and task events.
const (
	TypePhaseStarted      = "phase_started"
	TypePhaseCompleted    = "phase_completed"
	TypeTaskStatusChanged = "task_status_changed"
)

// PhaseStartedEvent is emitted when a phase's tasks are dispatched.
type PhaseStartedEvent struct {
	BaseEvent
	Phase      string `json:"phase"`
	PhaseIndex int    `json:"phase_index"`
	TaskCount  int    `json:"task_count"`
}

// NewPhaseStartedEvent creates a new phase started event.
func NewPhaseStartedEvent(workflowID, phase string, index, taskCount int) PhaseStartedEvent {
	return PhaseStartedEvent{
		BaseEvent:  NewBaseEvent(TypePhaseStarted, workflowID),
		Phase:      phase,
		PhaseIndex: index,
		TaskCount:  taskCount,
	}
}

// PhaseCompletedEvent is emitted when every task in a phase is terminal.
type PhaseCompletedEvent struct {
	BaseEvent
	Phase    string `json:"phase"`
	Progress int    `json:"progress"`
}

// NewPhaseCompletedEvent creates a new phase completed event.
func NewPhaseCompletedEvent(workflowID, phase string, progress int) PhaseCompletedEvent {
	return PhaseCompletedEvent{
		BaseEvent: NewBaseEvent(TypePhaseCompleted, workflowID),
		Phase:     phase,
		Progress:  progress,
	}
}

// TaskStatusChangedEvent is emitted on every agent task transition.
type TaskStatusChangedEvent struct {
	BaseEvent
	Agent      string   `json:"agent"`
	Phase      string   `json:"phase"`
	Status     string   `json:"status"`
	Confidence *float64 `json:"confidence,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// NewTaskStatusChangedEvent creates a new task status changed event.
func NewTaskStatusChangedEvent(workflowID, agent, phase, status string) TaskStatusChangedEvent {
	return TaskStatusChangedEvent{
		BaseEvent: NewBaseEvent(TypeTaskStatusChanged, workflowID),
		Agent:     agent,
		Phase:     phase,
		Status:    status,
	}
}

// WithConfidence attaches the completed task's confidence.
func (e TaskStatusChangedEvent) WithConfidence(c float64) TaskStatusChangedEvent {
	e.Confidence = &c
	return e
}

// WithError attaches the failed task's error message.
func (e TaskStatusChangedEvent) WithError(msg string) TaskStatusChangedEvent {
	e.Error = msg
	return e
}
