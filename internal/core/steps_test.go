package core

import "testing"

func testStepSpecs() []GuidedStepSpec {
	return []GuidedStepSpec{
		{ID: "requirements", Title: "Requirements", Required: true},
		{ID: "validation", Title: "Validation", Required: true},
		{ID: "analysis", Title: "Analysis", Required: true},
		{ID: "review", Title: "Review", Required: false},
		{ID: "approval", Title: "Approval", Required: true},
		{ID: "provisioning", Title: "Provisioning", Required: true},
	}
}

func countActive(steps []GuidedStep) int {
	n := 0
	for _, s := range steps {
		if s.Status == StepStatusActive {
			n++
		}
	}
	return n
}

func TestStepTracker_SingleActiveInvariant(t *testing.T) {
	tr := NewStepTracker(testStepSpecs())
	if n := countActive(tr.Steps()); n != 0 {
		t.Fatalf("expected 0 active steps on a fresh tracker, got %d", n)
	}

	if err := tr.Activate("requirements"); err != nil {
		t.Fatalf("unexpected error activating first step: %v", err)
	}
	_ = tr.Complete("requirements")
	if err := tr.Activate("validation"); err != nil {
		t.Fatalf("unexpected error activating validation: %v", err)
	}
	if n := countActive(tr.Steps()); n != 1 {
		t.Fatalf("expected exactly 1 active step, got %d", n)
	}
}

func TestStepTracker_ActivationCompletesPreviousActive(t *testing.T) {
	tr := NewStepTracker(testStepSpecs())
	_ = tr.Activate("requirements")
	_ = tr.Complete("requirements")
	_ = tr.Activate("validation")
	_ = tr.Complete("validation")
	_ = tr.Activate("analysis")

	// Review is optional, so activating approval while analysis is active
	// must complete analysis and leave a single active step.
	_ = tr.Complete("analysis")
	if err := tr.Activate("approval"); err != nil {
		t.Fatalf("unexpected error activating approval: %v", err)
	}
	steps := tr.Steps()
	if n := countActive(steps); n != 1 {
		t.Fatalf("expected exactly 1 active step, got %d", n)
	}
}

func TestStepTracker_OrderingEnforced(t *testing.T) {
	tr := NewStepTracker(testStepSpecs())
	err := tr.Activate("analysis")
	if err == nil {
		t.Fatalf("expected error activating a later step before required earlier steps")
	}
	if !IsCategory(err, ErrCatState) {
		t.Fatalf("expected state error, got %v", err)
	}
}

func TestStepTracker_CompletedNeverReverts(t *testing.T) {
	tr := NewStepTracker(testStepSpecs())
	_ = tr.Activate("requirements")
	_ = tr.Complete("requirements")

	if err := tr.Update("requirements", StepStatusPending); err == nil {
		t.Fatalf("expected error reverting a completed step")
	}
	if err := tr.Update("requirements", StepStatusActive); err == nil {
		t.Fatalf("expected error re-activating a completed step")
	}
}

func TestStepTracker_Reset(t *testing.T) {
	tr := NewStepTracker(testStepSpecs())
	_ = tr.Activate("requirements")
	_ = tr.Complete("requirements")
	tr.Reset()
	for _, s := range tr.Steps() {
		if s.Status != StepStatusPending {
			t.Fatalf("expected all steps pending after reset, got %s for %s", s.Status, s.ID)
		}
	}
}

func TestStepTracker_UnknownStep(t *testing.T) {
	tr := NewStepTracker(testStepSpecs())
	if err := tr.Complete("nope"); err == nil {
		t.Fatalf("expected error for unknown step")
	}
}
