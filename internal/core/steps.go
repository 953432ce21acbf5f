package core

import "fmt"

// StepStatus represents the state of a guided checklist step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusSkipped   StepStatus = "skipped"
)

// GuidedStep is one entry of the coarse, user-facing checklist. It is
// bookkeeping distinct from the phase/task machinery.
type GuidedStep struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   StepStatus `json:"status"`
	Required bool       `json:"required"`
}

// StepTracker maintains the ordered guided-step checklist. At most one step
// is active at any time, and a completed step never reverts.
type StepTracker struct {
	steps []GuidedStep
}

// NewStepTracker seeds a tracker with all steps pending.
func NewStepTracker(specs []GuidedStepSpec) *StepTracker {
	t := &StepTracker{steps: make([]GuidedStep, 0, len(specs))}
	for _, s := range specs {
		t.steps = append(t.steps, GuidedStep{
			ID:       s.ID,
			Title:    s.Title,
			Status:   StepStatusPending,
			Required: s.Required,
		})
	}
	return t
}

// Update sets the status of a step, enforcing the tracker invariants: a step
// cannot become active while an earlier required step is incomplete, a
// completed step never reverts, and activating a step deactivates any
// currently active step by completing it.
func (t *StepTracker) Update(id string, status StepStatus) error {
	idx := t.index(id)
	if idx < 0 {
		return ErrNotFound("guided step", id)
	}
	cur := t.steps[idx].Status
	if cur == StepStatusCompleted && status != StepStatusCompleted {
		return ErrInvalidState(CodeStepRegression,
			fmt.Sprintf("step %s is completed and cannot revert to %s", id, status))
	}
	if status == StepStatusActive {
		for i := 0; i < idx; i++ {
			earlier := t.steps[i]
			if earlier.Required && earlier.Status != StepStatusCompleted {
				return ErrInvalidState(CodeStepOrder,
					fmt.Sprintf("cannot activate %s: required step %s is %s", id, earlier.ID, earlier.Status))
			}
		}
		// Single-active invariant.
		for i := range t.steps {
			if i != idx && t.steps[i].Status == StepStatusActive {
				t.steps[i].Status = StepStatusCompleted
			}
		}
	}
	t.steps[idx].Status = status
	return nil
}

// Complete marks a step completed.
func (t *StepTracker) Complete(id string) error {
	return t.Update(id, StepStatusCompleted)
}

// Activate marks a step active.
func (t *StepTracker) Activate(id string) error {
	return t.Update(id, StepStatusActive)
}

// Skip marks a step skipped.
func (t *StepTracker) Skip(id string) error {
	return t.Update(id, StepStatusSkipped)
}

// Active returns the currently active step, if any.
func (t *StepTracker) Active() (GuidedStep, bool) {
	for _, s := range t.steps {
		if s.Status == StepStatusActive {
			return s, true
		}
	}
	return GuidedStep{}, false
}

// Steps returns a copy of the checklist.
func (t *StepTracker) Steps() []GuidedStep {
	out := make([]GuidedStep, len(t.steps))
	copy(out, t.steps)
	return out
}

// Reset returns every step to pending.
func (t *StepTracker) Reset() {
	for i := range t.steps {
		t.steps[i].Status = StepStatusPending
	}
}

func (t *StepTracker) index(id string) int {
	for i, s := range t.steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}
