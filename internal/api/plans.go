package api

import (
	"net/http"

	"github.com/joelnishanth/opsflow/internal/core"
)

// planSummary is the list view of a registered plan.
type planSummary struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	PhaseCount int    `json:"phase_count"`
	AgentCount int    `json:"agent_count"`
	StepCount  int    `json:"step_count"`
}

func summarizePlan(p *core.PhasePlan) planSummary {
	return planSummary{
		Type:       p.Type,
		Title:      p.Title,
		PhaseCount: len(p.Phases),
		AgentCount: p.AgentCount(),
		StepCount:  len(p.GuidedSteps),
	}
}

// handleListPlans returns the registered workflow types.
func (s *Server) handleListPlans(w http.ResponseWriter, _ *http.Request) {
	all := s.catalog.List()
	out := make([]planSummary, 0, len(all))
	for _, p := range all {
		out = append(out, summarizePlan(p))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"plans": out,
		"count": len(out),
	})
}
