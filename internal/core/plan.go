package core

import "fmt"

// PhaseSpec describes one phase of a plan: a label, the agents dispatched
// concurrently within it, and the overall progress reached when it completes.
type PhaseSpec struct {
	Label          string   `json:"label" yaml:"label"`
	Agents         []string `json:"agents" yaml:"agents"`
	TargetProgress int      `json:"target_progress" yaml:"target_progress"`
}

// GuidedStepSpec describes one entry of the user-facing checklist.
type GuidedStepSpec struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Required bool   `json:"required" yaml:"required"`
}

// ExecutionStepSpec describes one post-approval step. Compensation is the
// documented compensating action; it is reported on failure, not executed.
type ExecutionStepSpec struct {
	Name           string `json:"name" yaml:"name"`
	TargetProgress int    `json:"target_progress" yaml:"target_progress"`
	Compensation   string `json:"compensation,omitempty" yaml:"compensation,omitempty"`
}

// PhasePlan is the static analysis pipeline for one workflow type: an
// ordered sequence of phases, the guided-step checklist shown alongside
// them, and the execution plan run after approval.
type PhasePlan struct {
	Type           string              `json:"type" yaml:"type"`
	Title          string              `json:"title" yaml:"title"`
	Phases         []PhaseSpec         `json:"phases" yaml:"phases"`
	GuidedSteps    []GuidedStepSpec    `json:"guided_steps" yaml:"guided_steps"`
	ExecutionSteps []ExecutionStepSpec `json:"execution_steps" yaml:"execution_steps"`
}

// AgentCount returns the total number of agents across all phases.
func (p *PhasePlan) AgentCount() int {
	n := 0
	for _, ph := range p.Phases {
		n += len(ph.Agents)
	}
	return n
}

// Validate checks plan invariants: non-empty phases with at least one agent
// each, unique agent names within a phase, and monotonically increasing
// target progress across phases and execution steps.
func (p *PhasePlan) Validate() error {
	if p.Type == "" {
		return ErrValidation(CodeInvalidPlan, "plan type cannot be empty")
	}
	if len(p.Phases) == 0 {
		return ErrValidation(CodeInvalidPlan, fmt.Sprintf("plan %s has no phases", p.Type))
	}
	prev := 0
	for i, ph := range p.Phases {
		if ph.Label == "" {
			return ErrValidation(CodeInvalidPlan,
				fmt.Sprintf("plan %s: phase %d has no label", p.Type, i))
		}
		if len(ph.Agents) == 0 {
			return ErrValidation(CodeInvalidPlan,
				fmt.Sprintf("plan %s: phase %q has no agents", p.Type, ph.Label))
		}
		seen := make(map[string]bool, len(ph.Agents))
		for _, a := range ph.Agents {
			if a == "" {
				return ErrValidation(CodeInvalidPlan,
					fmt.Sprintf("plan %s: phase %q has an empty agent name", p.Type, ph.Label))
			}
			if seen[a] {
				return ErrValidation(CodeInvalidPlan,
					fmt.Sprintf("plan %s: agent %q duplicated in phase %q", p.Type, a, ph.Label))
			}
			seen[a] = true
		}
		if ph.TargetProgress <= prev || ph.TargetProgress > 100 {
			return ErrValidation(CodeInvalidPlan,
				fmt.Sprintf("plan %s: phase %q target progress %d must increase within (0,100]",
					p.Type, ph.Label, ph.TargetProgress))
		}
		prev = ph.TargetProgress
	}
	if len(p.GuidedSteps) == 0 {
		return ErrValidation(CodeInvalidPlan, fmt.Sprintf("plan %s has no guided steps", p.Type))
	}
	stepIDs := make(map[string]bool, len(p.GuidedSteps))
	for _, s := range p.GuidedSteps {
		if s.ID == "" || s.Title == "" {
			return ErrValidation(CodeInvalidPlan,
				fmt.Sprintf("plan %s: guided step needs id and title", p.Type))
		}
		if stepIDs[s.ID] {
			return ErrValidation(CodeInvalidPlan,
				fmt.Sprintf("plan %s: guided step %q duplicated", p.Type, s.ID))
		}
		stepIDs[s.ID] = true
	}
	prev = 0
	for _, es := range p.ExecutionSteps {
		if es.Name == "" {
			return ErrValidation(CodeInvalidPlan,
				fmt.Sprintf("plan %s: execution step has no name", p.Type))
		}
		if es.TargetProgress <= prev || es.TargetProgress > 100 {
			return ErrValidation(CodeInvalidPlan,
				fmt.Sprintf("plan %s: execution step %q target progress %d must increase within (0,100]",
					p.Type, es.Name, es.TargetProgress))
		}
		prev = es.TargetProgress
	}
	if len(p.ExecutionSteps) > 0 && prev != 100 {
		return ErrValidation(CodeInvalidPlan,
			fmt.Sprintf("plan %s: final execution step must reach 100, got %d", p.Type, prev))
	}
	return nil
}
