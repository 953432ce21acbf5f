// Package plans holds the built-in phase plan catalog and the loader for
// user-defined plans.
package plans

import (
	"sort"
	"sync"

	"github.com/joelnishanth/opsflow/internal/core"
)

// Catalog is a registry of phase plans keyed by workflow type.
type Catalog struct {
	mu    sync.RWMutex
	plans map[string]*core.PhasePlan
}

// NewCatalog returns a catalog preloaded with the built-in plans.
func NewCatalog() *Catalog {
	c := &Catalog{plans: make(map[string]*core.PhasePlan)}
	for _, p := range builtins() {
		c.plans[p.Type] = p
	}
	return c
}

// Get returns the plan for a workflow type.
func (c *Catalog) Get(workflowType string) (*core.PhasePlan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.plans[workflowType]
	if !ok {
		return nil, core.ErrNotFound("plan", workflowType)
	}
	return p, nil
}

// Register adds or replaces a plan. The plan must validate.
func (c *Catalog) Register(p *core.PhasePlan) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[p.Type] = p
	return nil
}

// Types returns the registered workflow types in sorted order.
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]string, 0, len(c.plans))
	for t := range c.plans {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// List returns all registered plans sorted by type.
func (c *Catalog) List() []*core.PhasePlan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.PhasePlan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func builtins() []*core.PhasePlan {
	return []*core.PhasePlan{
		incidentResponsePlan(),
		sqlProvisioningPlan(),
		nosqlProvisioningPlan(),
		databaseOnboardingPlan(),
	}
}

func incidentResponsePlan() *core.PhasePlan {
	return &core.PhasePlan{
		Type:  "incident-response",
		Title: "Incident Response",
		Phases: []core.PhaseSpec{
			{Label: "Diagnosing incident", Agents: []string{"diagnostic"}, TargetProgress: 35},
			{Label: "Identifying root cause", Agents: []string{"root-cause"}, TargetProgress: 70},
			{Label: "Preparing remediation", Agents: []string{"remediation"}, TargetProgress: 90},
		},
		GuidedSteps: []core.GuidedStepSpec{
			{ID: "triage", Title: "Triage incident report", Required: true},
			{ID: "diagnosis", Title: "Run diagnostics", Required: true},
			{ID: "root-cause", Title: "Confirm root cause", Required: true},
			{ID: "remediation-plan", Title: "Review remediation plan", Required: true},
			{ID: "approval", Title: "Approve remediation", Required: true},
			{ID: "postmortem", Title: "Schedule postmortem", Required: false},
		},
		ExecutionSteps: []core.ExecutionStepSpec{
			{Name: "Apply remediation", TargetProgress: 40, Compensation: "Roll back applied change"},
			{Name: "Verify service health", TargetProgress: 80, Compensation: "Re-open incident"},
			{Name: "Close incident", TargetProgress: 100},
		},
	}
}

func sqlProvisioningPlan() *core.PhasePlan {
	return &core.PhasePlan{
		Type:  "sql-provisioning",
		Title: "SQL Database Provisioning",
		Phases: []core.PhaseSpec{
			{
				Label:          "Analyzing workload requirements",
				Agents:         []string{"workload-analyzer", "compliance-checker"},
				TargetProgress: 30,
			},
			{
				Label:          "Planning capacity and cost",
				Agents:         []string{"capacity-planner", "cost-optimizer"},
				TargetProgress: 65,
			},
			{
				Label:          "Reviewing architecture",
				Agents:         []string{"architecture-reviewer"},
				TargetProgress: 90,
			},
		},
		GuidedSteps: []core.GuidedStepSpec{
			{ID: "requirements", Title: "Capture workload requirements", Required: true},
			{ID: "analysis", Title: "Run workload analysis", Required: true},
			{ID: "sizing", Title: "Review capacity sizing", Required: true},
			{ID: "cost-review", Title: "Review cost estimate", Required: false},
			{ID: "approval", Title: "Approve provisioning plan", Required: true},
		},
		ExecutionSteps: []core.ExecutionStepSpec{
			{Name: "Create database instance", TargetProgress: 30, Compensation: "Delete database instance"},
			{Name: "Configure parameter group", TargetProgress: 55, Compensation: "Revert parameter group"},
			{Name: "Set up automated backups", TargetProgress: 75, Compensation: "Disable backup schedule"},
			{Name: "Grant application access", TargetProgress: 100, Compensation: "Revoke credentials"},
		},
	}
}

func nosqlProvisioningPlan() *core.PhasePlan {
	return &core.PhasePlan{
		Type:  "nosql-provisioning",
		Title: "NoSQL Database Provisioning",
		Phases: []core.PhaseSpec{
			{
				Label:          "Modeling access patterns",
				Agents:         []string{"access-pattern-analyzer", "schema-designer"},
				TargetProgress: 25,
			},
			{
				Label:          "Selecting partition strategy",
				Agents:         []string{"partition-strategist", "throughput-planner"},
				TargetProgress: 50,
			},
			{
				Label:          "Evaluating consistency tradeoffs",
				Agents:         []string{"consistency-evaluator", "replication-planner"},
				TargetProgress: 75,
			},
			{
				Label:          "Estimating cost",
				Agents:         []string{"cost-estimator"},
				TargetProgress: 90,
			},
		},
		GuidedSteps: []core.GuidedStepSpec{
			{ID: "access-patterns", Title: "Describe access patterns", Required: true},
			{ID: "data-model", Title: "Review proposed data model", Required: true},
			{ID: "partitioning", Title: "Confirm partition keys", Required: true},
			{ID: "consistency", Title: "Select consistency level", Required: true},
			{ID: "approval", Title: "Approve provisioning plan", Required: true},
		},
		ExecutionSteps: []core.ExecutionStepSpec{
			{Name: "Create table", TargetProgress: 35, Compensation: "Delete table"},
			{Name: "Configure autoscaling", TargetProgress: 60, Compensation: "Remove autoscaling policy"},
			{Name: "Enable point-in-time recovery", TargetProgress: 80, Compensation: "Disable recovery"},
			{Name: "Provision access roles", TargetProgress: 100, Compensation: "Delete access roles"},
		},
	}
}

func databaseOnboardingPlan() *core.PhasePlan {
	return &core.PhasePlan{
		Type:  "database-onboarding",
		Title: "Database Onboarding",
		Phases: []core.PhaseSpec{
			{
				Label:          "Discovering existing databases",
				Agents:         []string{"inventory-scanner", "schema-profiler"},
				TargetProgress: 35,
			},
			{
				Label:          "Assessing migration readiness",
				Agents:         []string{"compatibility-assessor"},
				TargetProgress: 65,
			},
			{
				Label:          "Drafting onboarding plan",
				Agents:         []string{"migration-planner"},
				TargetProgress: 90,
			},
		},
		GuidedSteps: []core.GuidedStepSpec{
			{ID: "inventory", Title: "Confirm database inventory", Required: true},
			{ID: "assessment", Title: "Review readiness assessment", Required: true},
			{ID: "plan-review", Title: "Review onboarding plan", Required: true},
			{ID: "approval", Title: "Approve onboarding", Required: true},
		},
		ExecutionSteps: []core.ExecutionStepSpec{
			{Name: "Register databases in catalog", TargetProgress: 40, Compensation: "Remove catalog entries"},
			{Name: "Enable monitoring", TargetProgress: 70, Compensation: "Remove monitoring agents"},
			{Name: "Hand off to operations", TargetProgress: 100},
		},
	}
}
