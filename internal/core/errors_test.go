package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_ErrorFormat(t *testing.T) {
	err := ErrValidation(CodeMissingService, "service name cannot be empty")
	want := "[validation] MISSING_SERVICE: service name cannot be empty"
	if err.Error() != want {
		t.Fatalf("unexpected error string: %s", err.Error())
	}

	wrapped := ErrAgentFailure("capacity-planner", "call failed").WithCause(errors.New("boom"))
	if wrapped.Unwrap() == nil {
		t.Fatalf("expected unwrappable cause")
	}
}

func TestDomainError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrInvalidState(CodeApprovalNotPending, "not pending"))
	if !errors.Is(err, ErrInvalidState(CodeApprovalNotPending, "other message")) {
		t.Fatalf("expected category+code match")
	}
	if errors.Is(err, ErrInvalidState(CodeAlreadyDecided, "not pending")) {
		t.Fatalf("did not expect match on different code")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(ErrValidation(CodeMissingService, "x")) {
		t.Fatalf("validation errors are not retryable")
	}
	if !IsRetryable(ErrAgentFailure("a", "transient")) {
		t.Fatalf("agent failures are retryable at the task level")
	}
	if IsRetryable(errors.New("plain")) {
		t.Fatalf("plain errors are not retryable")
	}
}

func TestGetCategory(t *testing.T) {
	if GetCategory(ErrExecutionFailure("step", "x")) != ErrCatExecution {
		t.Fatalf("expected execution category")
	}
	if GetCategory(errors.New("plain")) != ErrCatInternal {
		t.Fatalf("expected internal category for plain errors")
	}
	if !IsCategory(ErrTimeout("slow"), ErrCatTimeout) {
		t.Fatalf("expected timeout category")
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := ErrNotFound("workflow", "wf-9").WithDetail("hint", "check the id")
	if err.Details["hint"] != "check the id" {
		t.Fatalf("expected detail to be recorded")
	}
}
