package suite

import (
	"github.com/torosent/glt/internal/scenario"
)

// Step is one entry of a suite plan.
type Step struct {
	Kind        scenario.Kind
	Concurrency int
	Number      int
	// Reset empties the container before the step runs.
	Reset bool
	// Report marks steps whose results are printed and persisted. Populate
	// steps run the build scenario without reporting it.
	Report bool
}

// PlanOptions shape a plan.
type PlanOptions struct {
	// Selected lists the scenarios to measure. Empty selects the default
	// suite, in which build only populates the tree.
	Selected               []scenario.Kind
	Concurrency            int
	Number                 int
	ContentiousConcurrency int
	ContentiousNumber      int
	// SkipSetup drops every reset and populate step.
	SkipSetup bool
}

// Order is the canonical suite order. Writes run first on an empty
// container; everything after build runs against the tree it produced.
var Order = []scenario.Kind{
	scenario.Write,
	scenario.Build,
	scenario.Crawl,
	scenario.Read,
	scenario.CrawlAndUpdate,
	scenario.ContentiousUpdate,
}

// NewPlan orders the selected scenarios canonically and inserts the reset
// and populate steps they depend on.
func NewPlan(opts PlanOptions) []Step {
	selected := make(map[scenario.Kind]bool, len(Order))
	explicit := len(opts.Selected) > 0
	if explicit {
		for _, k := range opts.Selected {
			selected[k] = true
		}
	} else {
		for _, k := range Order {
			selected[k] = true
		}
	}

	var plan []Step
	populated := false
	step := func(kind scenario.Kind, reset, report bool) Step {
		s := Step{
			Kind:        kind,
			Concurrency: opts.Concurrency,
			Number:      opts.Number,
			Reset:       reset && !opts.SkipSetup,
			Report:      report,
		}
		if kind == scenario.ContentiousUpdate {
			if opts.ContentiousConcurrency > 0 {
				s.Concurrency = opts.ContentiousConcurrency
			}
			if opts.ContentiousNumber > 0 {
				s.Number = opts.ContentiousNumber
			}
		}
		return s
	}

	for _, kind := range Order {
		if !selected[kind] {
			continue
		}
		switch kind {
		case scenario.Write:
			plan = append(plan, step(kind, true, true))
			populated = false
		case scenario.Build:
			plan = append(plan, step(kind, true, explicit))
			populated = true
		default:
			if !populated && !opts.SkipSetup {
				plan = append(plan, step(scenario.Build, true, false))
			}
			populated = true
			plan = append(plan, step(kind, false, true))
		}
	}
	return plan
}
