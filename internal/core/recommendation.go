package core

import "time"

// Recommendation is the structured output of a completed analysis pipeline.
// Created once, after the last phase succeeds; immutable thereafter.
type Recommendation struct {
	Headline        string            `json:"headline"`
	Decision        map[string]string `json:"decision"`
	ConfidenceScore float64           `json:"confidence_score"`
	ReasoningChain  []string          `json:"reasoning_chain"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Clone returns a deep copy for read-only snapshots.
func (r *Recommendation) Clone() *Recommendation {
	if r == nil {
		return nil
	}
	c := &Recommendation{
		Headline:        r.Headline,
		ConfidenceScore: r.ConfidenceScore,
		CreatedAt:       r.CreatedAt,
		Decision:        make(map[string]string, len(r.Decision)),
		ReasoningChain:  make([]string, len(r.ReasoningChain)),
	}
	for k, v := range r.Decision {
		c.Decision[k] = v
	}
	copy(c.ReasoningChain, r.ReasoningChain)
	return c
}

// Summary aggregates per-task telemetry across the whole plan.
//
// AverageConfidence is the mean over completed tasks only; failed and
// non-terminal tasks are excluded, not treated as zero. ComputeTimeMS sums
// every task's execution time. WallClockMS takes the max within each phase
// (tasks run concurrently) and sums across phases (phases run sequentially).
type Summary struct {
	TotalTasks        int     `json:"total_tasks"`
	CompletedTasks    int     `json:"completed_tasks"`
	FailedTasks       int     `json:"failed_tasks"`
	AIBackendTasks    int     `json:"ai_backend_tasks"`
	AverageConfidence float64 `json:"average_confidence"`
	ComputeTimeMS     int64   `json:"compute_time_ms"`
	WallClockMS       int64   `json:"wall_clock_ms"`
}

// Summarize computes the telemetry summary over a set of phases.
func Summarize(phases []*Phase) Summary {
	var s Summary
	var confSum float64
	for _, p := range phases {
		s.WallClockMS += p.WallClockMS()
		for _, t := range p.Tasks {
			s.TotalTasks++
			s.ComputeTimeMS += t.ElapsedMS()
			switch t.Status {
			case TaskStatusCompleted:
				s.CompletedTasks++
				if t.Confidence != nil {
					confSum += *t.Confidence
				}
				if t.AIBackendUsed {
					s.AIBackendTasks++
				}
			case TaskStatusFailed:
				s.FailedTasks++
			}
		}
	}
	if s.CompletedTasks > 0 {
		s.AverageConfidence = confSum / float64(s.CompletedTasks)
	}
	return s
}
