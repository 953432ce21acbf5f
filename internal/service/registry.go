package service

import (
	"sort"
	"sync"

	"github.com/joelnishanth/opsflow/internal/core"
	"github.com/joelnishanth/opsflow/internal/events"
	"github.com/joelnishanth/opsflow/internal/logging"
	"github.com/joelnishanth/opsflow/internal/plans"
)

// Registry tracks live orchestrator instances keyed by workflow ID. Each
// instance owns its workflow exclusively, so sessions never share mutable
// state.
type Registry struct {
	catalog *plans.Catalog
	agents  core.AgentRunner
	exec    core.ExecutionRunner
	bus     *events.Bus
	log     *logging.Logger
	cfg     OrchestratorConfig

	mu   sync.RWMutex
	byID map[core.WorkflowID]*Orchestrator
}

// NewRegistry creates a registry that builds orchestrators from the catalog
// and the shared collaborators.
func NewRegistry(catalog *plans.Catalog, agents core.AgentRunner, exec core.ExecutionRunner, bus *events.Bus, log *logging.Logger, cfg OrchestratorConfig) *Registry {
	return &Registry{
		catalog: catalog,
		agents:  agents,
		exec:    exec,
		bus:     bus,
		log:     log,
		cfg:     cfg,
		byID:    make(map[core.WorkflowID]*Orchestrator),
	}
}

// Start creates an orchestrator for the workflow type, starts it with the
// request, and registers it under the new workflow ID.
func (r *Registry) Start(workflowType string, req core.Request) (core.Snapshot, error) {
	plan, err := r.catalog.Get(workflowType)
	if err != nil {
		return core.Snapshot{}, err
	}
	o := NewOrchestrator(plan, r.agents, r.exec, r.bus, r.log, r.cfg)
	snap, err := o.Start(req)
	if err != nil {
		return core.Snapshot{}, err
	}
	r.mu.Lock()
	r.byID[snap.WorkflowID] = o
	r.mu.Unlock()
	return snap, nil
}

// Get returns the orchestrator that owns a workflow ID.
func (r *Registry) Get(id core.WorkflowID) (*Orchestrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, core.ErrNotFound("workflow", string(id))
	}
	return o, nil
}

// Snapshot returns the read-only view of one workflow.
func (r *Registry) Snapshot(id core.WorkflowID) (core.Snapshot, error) {
	o, err := r.Get(id)
	if err != nil {
		return core.Snapshot{}, err
	}
	return o.Snapshot(), nil
}

// Decide applies the approval gate decision to one workflow.
func (r *Registry) Decide(id core.WorkflowID, approved bool) (core.Snapshot, error) {
	o, err := r.Get(id)
	if err != nil {
		return core.Snapshot{}, err
	}
	return o.Decide(approved)
}

// Reset resets one workflow to idle. The instance stays registered under its
// original ID so the session can start a fresh run through it.
func (r *Registry) Reset(id core.WorkflowID) (core.Snapshot, error) {
	o, err := r.Get(id)
	if err != nil {
		return core.Snapshot{}, err
	}
	return o.Reset(), nil
}

// List returns all registered workflow snapshots, newest first.
func (r *Registry) List() []core.Snapshot {
	r.mu.RLock()
	out := make([]core.Snapshot, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o.Snapshot())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
