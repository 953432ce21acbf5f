package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelnishanth/opsflow/internal/agents"
	"github.com/joelnishanth/opsflow/internal/core"
	"github.com/joelnishanth/opsflow/internal/events"
	"github.com/joelnishanth/opsflow/internal/logging"
	"github.com/joelnishanth/opsflow/internal/plans"
	"github.com/joelnishanth/opsflow/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	bus := events.New(256)
	t.Cleanup(bus.Close)
	catalog := plans.NewCatalog()
	cfg := service.OrchestratorConfig{
		AnalysisTimeout:  5 * time.Second,
		ExecutionTimeout: 5 * time.Second,
		Retry: &service.RetryPolicy{
			MaxAttempts: 1,
			BaseDelay:   time.Millisecond,
			MaxDelay:    time.Millisecond,
			Multiplier:  1.0,
		},
	}
	registry := service.NewRegistry(catalog, agents.NewSimRunner(0), agents.NewSimExecutor(0), bus, logging.NewNop(), cfg)
	return NewServer(registry, catalog, bus, logging.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) core.Snapshot {
	t.Helper()
	var snap core.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	return snap
}

func startWorkflow(t *testing.T, s *Server) core.Snapshot {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/v1/workflows", createWorkflowRequest{
		Type: "incident-response",
		Request: core.Request{
			Service:     "UserDatabase",
			Description: "connection pool exhausted",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeSnapshot(t, rec)
}

func waitWorkflowStatus(t *testing.T, s *Server, id core.WorkflowID, status core.WorkflowStatus) core.Snapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/v1/workflows/%s", id), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		snap := decodeSnapshot(t, rec)
		if snap.Status == status {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("workflow %s never reached %s", id, status)
	return core.Snapshot{}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestListPlans(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/plans", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Plans []planSummary `json:"plans"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 4, body.Count)

	types := make(map[string]planSummary)
	for _, p := range body.Plans {
		types[p.Type] = p
	}
	require.Contains(t, types, "incident-response")
	assert.Equal(t, 3, types["incident-response"].PhaseCount)
	assert.Equal(t, 3, types["incident-response"].AgentCount)
	require.Contains(t, types, "nosql-provisioning")
	assert.Equal(t, 7, types["nosql-provisioning"].AgentCount)
}

func TestCreateWorkflow(t *testing.T) {
	s := newTestServer(t)
	snap := startWorkflow(t, s)

	assert.NotEmpty(t, snap.WorkflowID)
	assert.Equal(t, "incident-response", snap.Type)
	assert.Equal(t, core.WorkflowStatusAnalyzing, snap.Status)
	assert.Len(t, snap.AgentTasks(), 3)
}

func TestCreateWorkflow_UnknownType(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/workflows", createWorkflowRequest{
		Type:    "time-travel",
		Request: core.Request{Service: "svc", Description: "desc"},
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_found", body.Category)
}

func TestCreateWorkflow_ValidationError(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/workflows", createWorkflowRequest{
		Type:    "incident-response",
		Request: core.Request{Service: "", Description: "desc"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "validation", body.Category)
	assert.Equal(t, core.CodeMissingService, body.Code)
}

func TestCreateWorkflow_MalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workflows", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetWorkflow_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/workflows/missing-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproval_Reject(t *testing.T) {
	s := newTestServer(t)
	snap := startWorkflow(t, s)
	waitWorkflowStatus(t, s, snap.WorkflowID, core.WorkflowStatusAwaitingApproval)

	approved := false
	rec := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/v1/workflows/%s/approval", snap.WorkflowID),
		approvalRequest{Approved: &approved})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	decided := decodeSnapshot(t, rec)
	assert.Equal(t, core.WorkflowStatusCompleted, decided.Status)
	assert.True(t, decided.ManualOverride)
	assert.Equal(t, core.ApprovalRejected, decided.Approval)
}

func TestApproval_ApproveRunsToCompletion(t *testing.T) {
	s := newTestServer(t)
	snap := startWorkflow(t, s)
	waitWorkflowStatus(t, s, snap.WorkflowID, core.WorkflowStatusAwaitingApproval)

	approved := true
	rec := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/v1/workflows/%s/approval", snap.WorkflowID),
		approvalRequest{Approved: &approved})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	final := waitWorkflowStatus(t, s, snap.WorkflowID, core.WorkflowStatusCompleted)
	assert.False(t, final.ManualOverride)
	assert.Equal(t, 100, final.Progress)
	require.NotNil(t, final.Execution)
	assert.Equal(t, 100, final.Execution.Progress)
}

func TestApproval_SecondDecisionConflicts(t *testing.T) {
	s := newTestServer(t)
	snap := startWorkflow(t, s)
	waitWorkflowStatus(t, s, snap.WorkflowID, core.WorkflowStatusAwaitingApproval)

	approved := false
	path := fmt.Sprintf("/api/v1/workflows/%s/approval", snap.WorkflowID)
	rec := doJSON(t, s, http.MethodPost, path, approvalRequest{Approved: &approved})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, path, approvalRequest{Approved: &approved})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "state", body.Category)
}

func TestApproval_MissingField(t *testing.T) {
	s := newTestServer(t)
	snap := startWorkflow(t, s)

	rec := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/v1/workflows/%s/approval", snap.WorkflowID),
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReset(t *testing.T) {
	s := newTestServer(t)
	snap := startWorkflow(t, s)
	waitWorkflowStatus(t, s, snap.WorkflowID, core.WorkflowStatusAwaitingApproval)

	rec := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/v1/workflows/%s/reset", snap.WorkflowID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	reset := decodeSnapshot(t, rec)
	assert.Equal(t, core.WorkflowStatusIdle, reset.Status)
	assert.Equal(t, 0, reset.Progress)
	assert.Empty(t, reset.AgentTasks())
}

func TestListWorkflows(t *testing.T) {
	s := newTestServer(t)
	startWorkflow(t, s)
	startWorkflow(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/workflows", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Workflows []core.Snapshot `json:"workflows"`
		Count     int             `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Workflows, 2)
}
