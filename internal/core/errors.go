package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Malformed or incomplete request
	ErrCatState      ErrorCategory = "state"      // Operation not permitted in current state
	ErrCatAgent      ErrorCategory = "agent"      // Analysis collaborator failure
	ErrCatExecution  ErrorCategory = "execution"  // Post-approval step failure
	ErrCatTimeout    ErrorCategory = "timeout"    // Operation timed out
	ErrCatNetwork    ErrorCategory = "network"    // Network connectivity
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error. Validation errors are rejected
// before any state change; the caller may retry with corrected input.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrInvalidState creates a state error for operations called in a state
// that does not permit them.
func ErrInvalidState(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatState,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrAgentFailure creates an error for a failed analysis collaborator call.
// Retryable at the task level; once retries are exhausted the failure is
// terminal for the workflow instance.
func ErrAgentFailure(agent, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatAgent,
		Code:      CodeAgentFailed,
		Message:   fmt.Sprintf("agent %s: %s", agent, message),
		Retryable: true,
		Details: map[string]interface{}{
			"agent": agent,
		},
	}
}

// ErrExecutionFailure creates an error for a failed post-approval step.
func ErrExecutionFailure(step, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatExecution,
		Code:      CodeExecutionFailed,
		Message:   fmt.Sprintf("step %s: %s", step, message),
		Retryable: false,
		Details: map[string]interface{}{
			"step": step,
		},
	}
}

// ErrTimeout creates a timeout error.
func ErrTimeout(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      "TIMEOUT",
		Message:   message,
		Retryable: true,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category:  ErrCatNotFound,
		Code:      "NOT_FOUND",
		Message:   fmt.Sprintf("%s not found: %s", resource, id),
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeWorkflowNotFound   = "WORKFLOW_NOT_FOUND"
	CodePlanNotFound       = "PLAN_NOT_FOUND"
	CodeInvalidState       = "INVALID_STATE"
	CodeApprovalNotPending = "APPROVAL_NOT_PENDING"
	CodeAlreadyDecided     = "APPROVAL_ALREADY_DECIDED"
	CodeWorkflowActive     = "WORKFLOW_ACTIVE"
	CodeAgentFailed        = "AGENT_FAILED"
	CodeExecutionFailed    = "EXECUTION_STEP_FAILED"

	// Validation error codes
	CodeMissingService     = "MISSING_SERVICE"
	CodeMissingDescription = "MISSING_DESCRIPTION"
	CodeInvalidPlan        = "INVALID_PLAN"
	CodeInvalidConfidence  = "INVALID_CONFIDENCE"
	CodeStepOrder          = "STEP_ORDER_VIOLATION"
	CodeStepRegression     = "STEP_STATUS_REGRESSION"
)
