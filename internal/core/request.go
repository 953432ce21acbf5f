package core

// Request captures user-supplied intent for a workflow run. It is immutable
// once submitted to an orchestrator; a new request always starts a fresh
// workflow instance.
type Request struct {
	Service      string            `json:"service"`
	Environment  string            `json:"environment,omitempty"`
	Description  string            `json:"description"`
	Severity     string            `json:"severity,omitempty"`
	Requirements map[string]string `json:"requirements,omitempty"`
}

// Validate checks the minimal-field requirement shared by all workflow types.
func (r Request) Validate() error {
	if r.Service == "" {
		return ErrValidation(CodeMissingService, "service name cannot be empty")
	}
	if r.Description == "" {
		return ErrValidation(CodeMissingDescription, "description cannot be empty")
	}
	return nil
}
