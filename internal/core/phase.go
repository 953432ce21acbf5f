package core

// Phase is a barrier-synchronized group of agent tasks. Tasks within a phase
// run concurrently; the phase is done only when every task is terminal.
type Phase struct {
	Label          string       `json:"label"`
	TargetProgress int          `json:"target_progress"`
	Tasks          []*AgentTask `json:"tasks"`
}

// NewPhase instantiates a phase from a spec, seeding one pending task per
// agent name.
func NewPhase(spec PhaseSpec) *Phase {
	p := &Phase{
		Label:          spec.Label,
		TargetProgress: spec.TargetProgress,
		Tasks:          make([]*AgentTask, 0, len(spec.Agents)),
	}
	for _, agent := range spec.Agents {
		p.Tasks = append(p.Tasks, NewAgentTask(agent))
	}
	return p
}

// Done reports whether all member tasks are terminal.
func (p *Phase) Done() bool {
	for _, t := range p.Tasks {
		if !t.IsTerminal() {
			return false
		}
	}
	return true
}

// Succeeded reports whether all member tasks completed. Any failed task
// fails the whole phase.
func (p *Phase) Succeeded() bool {
	for _, t := range p.Tasks {
		if !t.IsSuccess() {
			return false
		}
	}
	return true
}

// Task returns the member task with the given agent name.
func (p *Phase) Task(name string) (*AgentTask, bool) {
	for _, t := range p.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// WallClockMS returns the longest task execution time in the phase. Tasks
// run concurrently, so this is the phase's contribution to wall-clock time.
func (p *Phase) WallClockMS() int64 {
	var max int64
	for _, t := range p.Tasks {
		if ms := t.ElapsedMS(); ms > max {
			max = ms
		}
	}
	return max
}

// Clone returns a deep copy for read-only snapshots.
func (p *Phase) Clone() *Phase {
	c := &Phase{
		Label:          p.Label,
		TargetProgress: p.TargetProgress,
		Tasks:          make([]*AgentTask, 0, len(p.Tasks)),
	}
	for _, t := range p.Tasks {
		c.Tasks = append(c.Tasks, t.Clone())
	}
	return c
}
