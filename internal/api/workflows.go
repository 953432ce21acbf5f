package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joelnishanth/opsflow/internal/core"
)

// createWorkflowRequest is the body for POST /api/v1/workflows.
type createWorkflowRequest struct {
	Type    string       `json:"type"`
	Request core.Request `json:"request"`
}

// approvalRequest is the body for POST /api/v1/workflows/{id}/approval.
type approvalRequest struct {
	Approved *bool `json:"approved"`
}

// handleCreateWorkflow starts a new workflow run.
func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var body createWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if body.Type == "" {
		respondBadRequest(w, "workflow type is required")
		return
	}

	snap, err := s.registry.Start(body.Type, body.Request)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

// handleListWorkflows returns snapshots of all registered workflows.
func (s *Server) handleListWorkflows(w http.ResponseWriter, _ *http.Request) {
	list := s.registry.List()
	respondJSON(w, http.StatusOK, map[string]any{
		"workflows": list,
		"count":     len(list),
	})
}

// handleGetWorkflow returns one workflow's snapshot.
func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := core.WorkflowID(chi.URLParam(r, "workflowID"))
	snap, err := s.registry.Snapshot(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// handleApproval applies the approval gate decision.
func (s *Server) handleApproval(w http.ResponseWriter, r *http.Request) {
	id := core.WorkflowID(chi.URLParam(r, "workflowID"))

	var body approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if body.Approved == nil {
		respondBadRequest(w, "approved field is required")
		return
	}

	snap, err := s.registry.Decide(id, *body.Approved)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// handleReset resets one workflow to idle.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := core.WorkflowID(chi.URLParam(r, "workflowID"))
	snap, err := s.registry.Reset(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
