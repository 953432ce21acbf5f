package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/joelnishanth/opsflow/internal/agents"
	"github.com/joelnishanth/opsflow/internal/core"
	"github.com/joelnishanth/opsflow/internal/events"
	"github.com/joelnishanth/opsflow/internal/service"
)

var (
	runType        string
	runService     string
	runDescription string
	runEnvironment string
	runSeverity    string
	runApprove     bool
	runReject      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one workflow from the terminal",
	Long: `Runs a single workflow end to end: phased agent analysis, the approval
gate (decided by --approve or --reject), and the execution plan. Progress is
printed as the run advances.`,
	RunE: runWorkflow,
}

func init() {
	runCmd.Flags().StringVar(&runType, "type", "incident-response", "workflow type")
	runCmd.Flags().StringVar(&runService, "service", "", "service the request concerns (required)")
	runCmd.Flags().StringVar(&runDescription, "description", "", "what should be analyzed (required)")
	runCmd.Flags().StringVar(&runEnvironment, "environment", "", "target environment")
	runCmd.Flags().StringVar(&runSeverity, "severity", "", "severity or urgency")
	runCmd.Flags().BoolVar(&runApprove, "approve", false, "approve the recommendation and run the execution plan")
	runCmd.Flags().BoolVar(&runReject, "reject", false, "reject the recommendation (manual override)")
	_ = runCmd.MarkFlagRequired("service")
	_ = runCmd.MarkFlagRequired("description")
	rootCmd.AddCommand(runCmd)
}

func runWorkflow(cmd *cobra.Command, _ []string) error {
	if runApprove && runReject {
		return fmt.Errorf("--approve and --reject are mutually exclusive")
	}
	if !runApprove && !runReject {
		return fmt.Errorf("one of --approve or --reject is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	catalog, err := buildCatalog(cfg, log)
	if err != nil {
		return err
	}
	plan, err := catalog.Get(runType)
	if err != nil {
		return err
	}
	runner, err := buildAgentRunner(cfg, log)
	if err != nil {
		return err
	}

	bus := events.New(cfg.Workflow.EventBufferSize)
	defer bus.Close()
	eventCh := bus.Subscribe(
		events.TypePhaseStarted,
		events.TypePhaseCompleted,
		events.TypeExecutionStepCompleted,
	)

	o := service.NewOrchestrator(plan, runner, agents.NewSimExecutor(cfg.Workflow.SimulatedLatency), bus, log, orchestratorConfig(cfg))

	req := core.Request{
		Service:     runService,
		Description: runDescription,
		Environment: runEnvironment,
		Severity:    runSeverity,
	}
	snap, err := o.Start(req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Started %s workflow %s (%d agents)\n", plan.Type, snap.WorkflowID, plan.AgentCount())

	go func() {
		for e := range eventCh {
			switch ev := e.(type) {
			case events.PhaseStartedEvent:
				fmt.Fprintf(out, "  phase %d/%d: %s (%d agents)\n",
					ev.PhaseIndex+1, len(plan.Phases), ev.Phase, ev.TaskCount)
			case events.PhaseCompletedEvent:
				fmt.Fprintf(out, "  phase done: %s (progress %d%%)\n", ev.Phase, ev.Progress)
			case events.ExecutionStepCompletedEvent:
				fmt.Fprintf(out, "  executed: %s (progress %d%%)\n", ev.Step, ev.Progress)
			}
		}
	}()

	snap, err = waitForStatus(o, core.WorkflowStatusAwaitingApproval, cfg.Workflow.AnalysisTimeout)
	if err != nil {
		return reportFailure(out, o)
	}

	fmt.Fprintf(out, "\nRecommendation: %s\n", snap.Recommendation.Headline)
	for _, reason := range snap.Recommendation.ReasoningChain {
		fmt.Fprintf(out, "  - %s\n", reason)
	}
	fmt.Fprintf(out, "Confidence: %.2f  Wall clock: %dms  Compute: %dms\n",
		snap.Summary.AverageConfidence, snap.Summary.WallClockMS, snap.Summary.ComputeTimeMS)

	if runReject {
		snap, err = o.Decide(false)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nRejected: workflow completed with manual override\n")
		return nil
	}

	if _, err := o.Decide(true); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nApproved: running execution plan\n")

	snap, err = waitForStatus(o, core.WorkflowStatusCompleted, cfg.Workflow.ExecutionTimeout)
	if err != nil {
		return reportFailure(out, o)
	}
	fmt.Fprintf(out, "\nCompleted: %s\n", snap.Execution.Summary)
	return nil
}

func waitForStatus(o *service.Orchestrator, status core.WorkflowStatus, timeout time.Duration) (core.Snapshot, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		snap := o.Snapshot()
		if snap.Status == status {
			return snap, nil
		}
		if snap.Status == core.WorkflowStatusFailed {
			return snap, fmt.Errorf("workflow failed: %s", snap.Error)
		}
		time.Sleep(50 * time.Millisecond)
	}
	return core.Snapshot{}, fmt.Errorf("timed out waiting for %s", status)
}

func reportFailure(out io.Writer, o *service.Orchestrator) error {
	snap := o.Snapshot()
	fmt.Fprintf(out, "\nWorkflow failed: %s\n", snap.Error)
	for _, task := range snap.AgentTasks() {
		if task.Status == core.TaskStatusFailed && task.Error != "" {
			fmt.Fprintf(out, "  agent %s: %s\n", task.Name, task.Error)
		}
	}
	return fmt.Errorf("workflow did not complete")
}
