package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joelnishanth/opsflow/internal/core"
	"github.com/joelnishanth/opsflow/internal/events"
	"github.com/joelnishanth/opsflow/internal/logging"
)

// OrchestratorConfig tunes one orchestrator instance.
type OrchestratorConfig struct {
	AnalysisTimeout  time.Duration
	ExecutionTimeout time.Duration
	Retry            *RetryPolicy
}

// DefaultOrchestratorConfig returns sensible defaults for interactive use.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		AnalysisTimeout:  5 * time.Minute,
		ExecutionTimeout: 10 * time.Minute,
		Retry:            DefaultRetryPolicy(),
	}
}

// Orchestrator drives one workflow instance through its phase plan: it seeds
// tasks, dispatches agents concurrently within each phase behind a barrier,
// pauses at the approval gate, and runs the execution plan after approval.
//
// All mutation goes through the instance's own methods under a single mutex.
// Background completions are guarded by a generation counter so results from
// a run that was since reset are discarded instead of clobbering fresh state.
type Orchestrator struct {
	plan   *core.PhasePlan
	agents core.AgentRunner
	exec   core.ExecutionRunner
	bus    *events.Bus
	log    *logging.Logger
	cfg    OrchestratorConfig

	mu         sync.Mutex
	wf         *core.Workflow
	generation uint64
	cancel     context.CancelFunc
}

// NewOrchestrator creates an idle orchestrator for a plan.
func NewOrchestrator(plan *core.PhasePlan, agents core.AgentRunner, exec core.ExecutionRunner, bus *events.Bus, log *logging.Logger, cfg OrchestratorConfig) *Orchestrator {
	if cfg.Retry == nil {
		cfg.Retry = DefaultRetryPolicy()
	}
	return &Orchestrator{
		plan:   plan,
		agents: agents,
		exec:   exec,
		bus:    bus,
		log:    log,
		cfg:    cfg,
		wf:     core.NewIdleWorkflow(plan),
	}
}

// Start validates the request, seeds the instance, and launches the analysis
// pipeline in the background. The request is rejected before any state change
// when it fails validation or when a run is already in flight.
func (o *Orchestrator) Start(req core.Request) (core.Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := req.Validate(); err != nil {
		return core.Snapshot{}, err
	}
	if o.wf.Status != core.WorkflowStatusIdle {
		return core.Snapshot{}, core.ErrInvalidState(core.CodeWorkflowActive,
			fmt.Sprintf("workflow is %s; reset before starting a new run", o.wf.Status))
	}

	id := core.WorkflowID(uuid.NewString())
	if err := o.wf.Seed(id, o.plan, req); err != nil {
		return core.Snapshot{}, err
	}

	// Request submitted: first checklist step is done, the next becomes
	// the active one.
	steps := o.wf.Steps.Steps()
	if len(steps) > 0 {
		o.wf.Steps.Complete(steps[0].ID)
		if len(steps) > 1 {
			o.wf.Steps.Activate(steps[1].ID)
		}
	}
	if len(o.plan.Phases) > 0 {
		o.wf.CurrentStepLabel = o.plan.Phases[0].Label
	}

	gen := o.generation
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.AnalysisTimeout)
	o.cancel = cancel
	go func() {
		defer cancel()
		o.runAnalysis(ctx, gen, id, req)
	}()

	o.bus.Publish(events.NewWorkflowStartedEvent(string(id), o.plan.Type, req.Service, o.plan.AgentCount()))
	o.log.WithWorkflow(string(id)).Info("workflow started",
		"type", o.plan.Type, "service", req.Service, "agents", o.plan.AgentCount())

	return core.SnapshotOf(o.wf), nil
}

// Decide records the approval gate outcome. Approval launches the execution
// plan in the background; rejection completes the workflow with a
// manual-override marker.
func (o *Orchestrator) Decide(approved bool) (core.Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.wf.Decide(approved); err != nil {
		return core.Snapshot{}, err
	}
	id := string(o.wf.ID)
	o.bus.Publish(events.NewApprovalDecidedEvent(id, approved))

	apIdx := o.approvalStepIndex()
	if apIdx >= 0 {
		o.wf.Steps.Complete(o.wf.Steps.Steps()[apIdx].ID)
	}

	if !approved {
		o.skipStepsAfter(apIdx)
		o.wf.CurrentStepLabel = "Manually overridden"
		o.bus.PublishPriority(events.NewWorkflowCompletedEvent(id, true, "execution skipped by manual override"))
		o.log.WithWorkflow(id).Info("workflow rejected at approval gate")
		return core.SnapshotOf(o.wf), nil
	}

	steps := o.wf.Steps.Steps()
	if apIdx >= 0 && apIdx+1 < len(steps) {
		o.wf.Steps.Activate(steps[apIdx+1].ID)
	}

	gen := o.generation
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.ExecutionTimeout)
	o.cancel = cancel
	rec := o.wf.Recommendation.Clone()
	go func() {
		defer cancel()
		o.runExecution(ctx, gen, id, rec)
	}()

	o.log.WithWorkflow(id).Info("workflow approved, execution started")
	return core.SnapshotOf(o.wf), nil
}

// Reset returns the instance to idle from any state. In-flight agent calls
// are cancelled, and any result that still arrives is discarded by the
// generation guard.
func (o *Orchestrator) Reset() core.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	id := string(o.wf.ID)
	o.wf = core.NewIdleWorkflow(o.plan)
	if id != "" {
		o.bus.Publish(events.NewWorkflowResetEvent(id))
		o.log.WithWorkflow(id).Info("workflow reset")
	}
	return core.SnapshotOf(o.wf)
}

// UpdateGuidedStep applies a manual checklist update.
func (o *Orchestrator) UpdateGuidedStep(id string, status core.StepStatus) (core.Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.wf.Steps.Update(id, status); err != nil {
		return core.Snapshot{}, err
	}
	return core.SnapshotOf(o.wf), nil
}

// Snapshot returns the read-only view of the instance.
func (o *Orchestrator) Snapshot() core.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return core.SnapshotOf(o.wf)
}

// Plan returns the static plan this orchestrator runs.
func (o *Orchestrator) Plan() *core.PhasePlan {
	return o.plan
}

// withLock runs fn on the workflow under the mutex, but only if the run that
// captured gen is still current. Returns false when the run was reset.
func (o *Orchestrator) withLock(gen uint64, fn func(wf *core.Workflow)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return false
	}
	fn(o.wf)
	return true
}

func (o *Orchestrator) runAnalysis(ctx context.Context, gen uint64, id core.WorkflowID, req core.Request) {
	log := o.log.WithWorkflow(string(id))
	var findings []core.Finding

	for i, spec := range o.plan.Phases {
		ok := o.withLock(gen, func(wf *core.Workflow) {
			ph := wf.Phases[i]
			wf.CurrentStepLabel = ph.Label
			for _, t := range ph.Tasks {
				t.MarkRunning()
				o.bus.Publish(events.NewTaskStatusChangedEvent(string(id), t.Name, ph.Label, string(t.Status)))
			}
			o.bus.Publish(events.NewPhaseStartedEvent(string(id), ph.Label, i, len(ph.Tasks)))
		})
		if !ok {
			return
		}
		log.WithPhase(spec.Label).Info("phase started", "agents", len(spec.Agents))

		pctx := core.PhaseContext{
			WorkflowID:   id,
			WorkflowType: o.plan.Type,
			Request:      req,
			PhaseLabel:   spec.Label,
			PhaseIndex:   i,
			Findings:     findings,
		}

		results := make([]*core.AgentResult, len(spec.Agents))
		g, gctx := errgroup.WithContext(ctx)
		for j, agent := range spec.Agents {
			g.Go(func() error {
				res, err := o.runAgentTask(gctx, gen, id, i, agent, pctx)
				if err != nil {
					return fmt.Errorf("agent %s: %w", agent, err)
				}
				results[j] = res
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			o.failAnalysis(gen, id, i, err)
			return
		}

		for _, res := range results {
			findings = append(findings, res.Finding)
		}

		ok = o.withLock(gen, func(wf *core.Workflow) {
			wf.AdvanceProgress(spec.TargetProgress)
			o.bus.Publish(events.NewPhaseCompletedEvent(string(id), spec.Label, wf.Progress))
		})
		if !ok {
			return
		}
		log.WithPhase(spec.Label).Info("phase completed", "progress", spec.TargetProgress)
	}

	o.withLock(gen, func(wf *core.Workflow) {
		rec := buildRecommendation(o.plan, req, wf.Phases, findings)
		if err := wf.CompleteAnalysis(rec); err != nil {
			log.Error("completing analysis", "error", err)
			return
		}
		o.advanceStepsToApproval()
		wf.CurrentStepLabel = "Awaiting approval"
		s := wf.Summary()
		o.bus.Publish(events.NewAnalysisCompletedEvent(string(id), rec.Headline, s.AverageConfidence, s.WallClockMS))
		log.Info("analysis completed",
			"confidence", s.AverageConfidence, "wall_clock_ms", s.WallClockMS)
	})
}

// runAgentTask invokes the analysis collaborator for one task with bounded
// retry, recording each outcome on the task under the generation guard.
func (o *Orchestrator) runAgentTask(ctx context.Context, gen uint64, id core.WorkflowID, phaseIdx int, agent string, pctx core.PhaseContext) (*core.AgentResult, error) {
	start := time.Now()
	var res *core.AgentResult

	notify := func(attempt int, err error, delay time.Duration) {
		o.withLock(gen, func(wf *core.Workflow) {
			if t, ok := wf.Phases[phaseIdx].Task(agent); ok {
				t.Retries++
			}
		})
		o.log.WithWorkflow(string(id)).WithAgent(agent).Warn("retrying agent",
			"attempt", attempt, "delay", delay, "error", err)
	}

	err := o.cfg.Retry.Execute(ctx, func(ctx context.Context) error {
		r, err := o.agents.RunAgent(ctx, agent, pctx)
		if err != nil {
			return err
		}
		res = r
		return nil
	}, notify)

	if err != nil {
		o.withLock(gen, func(wf *core.Workflow) {
			ph := wf.Phases[phaseIdx]
			if t, ok := ph.Task(agent); ok {
				t.MarkFailed(err, time.Since(start).Milliseconds())
				o.bus.Publish(events.NewTaskStatusChangedEvent(string(id), agent, ph.Label, string(t.Status)).
					WithError(t.Error))
			}
		})
		return nil, err
	}

	var markErr error
	o.withLock(gen, func(wf *core.Workflow) {
		ph := wf.Phases[phaseIdx]
		if t, ok := ph.Task(agent); ok {
			if markErr = t.MarkCompleted(res); markErr == nil {
				o.bus.Publish(events.NewTaskStatusChangedEvent(string(id), agent, ph.Label, string(t.Status)).
					WithConfidence(res.Confidence))
			}
		}
	})
	if markErr != nil {
		return nil, markErr
	}
	return res, nil
}

// failAnalysis aborts the run: non-terminal tasks in the failing phase are
// marked failed, later phases' tasks stay pending with their telemetry
// preserved, and the workflow moves to the failed state.
func (o *Orchestrator) failAnalysis(gen uint64, id core.WorkflowID, phaseIdx int, cause error) {
	o.withLock(gen, func(wf *core.Workflow) {
		ph := wf.Phases[phaseIdx]
		for _, t := range ph.Tasks {
			if !t.IsTerminal() {
				t.MarkFailed(cause, -1)
				o.bus.Publish(events.NewTaskStatusChangedEvent(string(id), t.Name, ph.Label, string(t.Status)).
					WithError(t.Error))
			}
		}
		if err := wf.Fail(cause); err != nil {
			return
		}
		wf.CurrentStepLabel = fmt.Sprintf("Analysis failed during %q: %v", ph.Label, cause)
		if s, ok := wf.Steps.Active(); ok {
			wf.Steps.Skip(s.ID)
		}
		o.bus.PublishPriority(events.NewWorkflowFailedEvent(string(id), ph.Label, cause))
		o.log.WithWorkflow(string(id)).WithPhase(ph.Label).Error("analysis failed", "error", cause)
	})
}

func (o *Orchestrator) runExecution(ctx context.Context, gen uint64, id string, rec *core.Recommendation) {
	log := o.log.WithWorkflow(id)

	for i, spec := range o.plan.ExecutionSteps {
		ok := o.withLock(gen, func(wf *core.Workflow) {
			step := wf.Execution.Steps[i]
			step.Status = core.ExecStatusRunning
			now := time.Now()
			step.StartedAt = &now
			wf.CurrentStepLabel = spec.Name
			o.bus.Publish(events.NewExecutionStepStartedEvent(id, spec.Name))
		})
		if !ok {
			return
		}

		res, err := o.exec.RunStep(ctx, spec.Name, rec)
		if err != nil {
			o.failExecution(gen, id, i, err)
			return
		}

		ok = o.withLock(gen, func(wf *core.Workflow) {
			step := wf.Execution.Steps[i]
			step.Status = core.ExecStatusCompleted
			step.Details = res.Details
			now := time.Now()
			step.CompletedAt = &now
			wf.Execution.Progress = spec.TargetProgress
			o.bus.Publish(events.NewExecutionStepCompletedEvent(id, spec.Name, spec.TargetProgress))
		})
		if !ok {
			return
		}
		log.Info("execution step completed", "step", spec.Name, "progress", spec.TargetProgress)
	}

	o.withLock(gen, func(wf *core.Workflow) {
		summary := fmt.Sprintf("all %d execution steps completed", len(o.plan.ExecutionSteps))
		if err := wf.CompleteExecution(summary); err != nil {
			log.Error("completing execution", "error", err)
			return
		}
		o.completeRemainingSteps()
		wf.CurrentStepLabel = "Completed"
		o.bus.PublishPriority(events.NewWorkflowCompletedEvent(id, false, summary))
		log.Info("workflow completed", "summary", summary)
	})
}

func (o *Orchestrator) failExecution(gen uint64, id string, stepIdx int, cause error) {
	o.withLock(gen, func(wf *core.Workflow) {
		step := wf.Execution.Steps[stepIdx]
		step.Status = core.ExecStatusFailed
		step.Error = cause.Error()
		now := time.Now()
		step.CompletedAt = &now
		if err := wf.Fail(core.ErrExecutionFailure(step.Name, cause.Error())); err != nil {
			return
		}
		wf.CurrentStepLabel = fmt.Sprintf("Execution failed at %q: %v", step.Name, cause)
		if step.Compensation != "" {
			wf.Execution.Summary = fmt.Sprintf("failed at %q; compensating action: %s", step.Name, step.Compensation)
		}
		if s, ok := wf.Steps.Active(); ok {
			wf.Steps.Skip(s.ID)
		}
		o.bus.PublishPriority(events.NewWorkflowFailedEvent(id, step.Name, cause))
		o.log.WithWorkflow(id).Error("execution failed", "step", step.Name, "error", cause)
	})
}

// approvalStepIndex locates the checklist's approval step: the step with ID
// "approval" when present, otherwise the last step.
func (o *Orchestrator) approvalStepIndex() int {
	steps := o.wf.Steps.Steps()
	for i, s := range steps {
		if s.ID == "approval" {
			return i
		}
	}
	return len(steps) - 1
}

// advanceStepsToApproval completes the checklist up to the approval step and
// activates it. Optional steps left pending are skipped, not completed.
func (o *Orchestrator) advanceStepsToApproval() {
	apIdx := o.approvalStepIndex()
	if apIdx < 0 {
		return
	}
	steps := o.wf.Steps.Steps()
	for i := 0; i < apIdx; i++ {
		s := steps[i]
		switch {
		case s.Status == core.StepStatusCompleted || s.Status == core.StepStatusSkipped:
		case s.Required:
			o.wf.Steps.Complete(s.ID)
		default:
			o.wf.Steps.Skip(s.ID)
		}
	}
	o.wf.Steps.Activate(steps[apIdx].ID)
}

// completeRemainingSteps settles the checklist after a successful run.
func (o *Orchestrator) completeRemainingSteps() {
	for _, s := range o.wf.Steps.Steps() {
		switch s.Status {
		case core.StepStatusCompleted, core.StepStatusSkipped:
		case core.StepStatusActive:
			o.wf.Steps.Complete(s.ID)
		default:
			if s.Required {
				o.wf.Steps.Complete(s.ID)
			} else {
				o.wf.Steps.Skip(s.ID)
			}
		}
	}
}

// skipStepsAfter marks every step after idx skipped (manual override path).
func (o *Orchestrator) skipStepsAfter(idx int) {
	steps := o.wf.Steps.Steps()
	for i := idx + 1; i < len(steps); i++ {
		if steps[i].Status == core.StepStatusPending || steps[i].Status == core.StepStatusActive {
			o.wf.Steps.Skip(steps[i].ID)
		}
	}
}

// buildRecommendation folds per-agent findings into the structured decision
// object: merged finding data, one reasoning entry per agent in phase order,
// and the mean confidence over completed tasks.
func buildRecommendation(plan *core.PhasePlan, req core.Request, phases []*core.Phase, findings []core.Finding) *core.Recommendation {
	decision := make(map[string]string)
	chain := make([]string, 0, len(findings))
	for _, f := range findings {
		chain = append(chain, fmt.Sprintf("[%s] %s", f.Agent, f.Summary))
		keys := make([]string, 0, len(f.Data))
		for k := range f.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			decision[k] = f.Data[k]
		}
	}
	return &core.Recommendation{
		Headline:        fmt.Sprintf("%s recommendation for %s", plan.Title, req.Service),
		Decision:        decision,
		ConfidenceScore: core.Summarize(phases).AverageConfidence,
		ReasoningChain:  chain,
		CreatedAt:       time.Now(),
	}
}
