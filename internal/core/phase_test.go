package core

import (
	"errors"
	"testing"
)

func testPhase() *Phase {
	return NewPhase(PhaseSpec{
		Label:          "Sizing",
		Agents:         []string{"capacity-planner", "cost-optimizer"},
		TargetProgress: 60,
	})
}

func TestPhase_SeedsPendingTasks(t *testing.T) {
	p := testPhase()
	if len(p.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(p.Tasks))
	}
	for _, task := range p.Tasks {
		if task.Status != TaskStatusPending {
			t.Fatalf("expected pending task, got %s", task.Status)
		}
	}
	if p.Done() {
		t.Fatalf("phase with pending tasks must not be done")
	}
}

func TestPhase_DoneAndSucceeded(t *testing.T) {
	p := testPhase()
	for _, task := range p.Tasks {
		_ = task.MarkRunning()
	}
	_ = p.Tasks[0].MarkCompleted(&AgentResult{Confidence: 0.9, ExecutionTimeMS: 100})
	if p.Done() {
		t.Fatalf("phase is not done with one task running")
	}

	_ = p.Tasks[1].MarkFailed(errors.New("timeout"), 250)
	if !p.Done() {
		t.Fatalf("phase with all terminal tasks must be done")
	}
	if p.Succeeded() {
		t.Fatalf("phase with a failed task must not be succeeded")
	}
}

func TestPhase_WallClockIsMaxWithinPhase(t *testing.T) {
	p := testPhase()
	for _, task := range p.Tasks {
		_ = task.MarkRunning()
	}
	_ = p.Tasks[0].MarkCompleted(&AgentResult{Confidence: 0.9, ExecutionTimeMS: 100})
	_ = p.Tasks[1].MarkCompleted(&AgentResult{Confidence: 0.8, ExecutionTimeMS: 450})

	if got := p.WallClockMS(); got != 450 {
		t.Fatalf("expected wall clock 450 (max), got %d", got)
	}
}

func TestPhase_TaskLookup(t *testing.T) {
	p := testPhase()
	if _, ok := p.Task("capacity-planner"); !ok {
		t.Fatalf("expected to find capacity-planner")
	}
	if _, ok := p.Task("unknown"); ok {
		t.Fatalf("did not expect to find unknown agent")
	}
}
