package output

import (
	"github.com/torosent/glt/internal/metrics"
	"github.com/torosent/glt/internal/runner"
	"github.com/torosent/glt/internal/threshold"
)

// JSONReport is the machine-readable form of a suite run.
type JSONReport struct {
	RunID      string            `json:"run_id"`
	Scenarios  []ScenarioReport  `json:"scenarios"`
	Thresholds *ThresholdSummary `json:"thresholds,omitempty"`
}

// ScenarioReport describes one scenario run. Rates are null when the run
// took no measurable time.
type ScenarioReport struct {
	Scenario    string `json:"scenario"`
	Title       string `json:"title"`
	RunID       string `json:"run_id"`
	Concurrency int    `json:"concurrency"`
	Number      int    `json:"number"`
	runner.Record

	RequestsPerSec *float64        `json:"requests_per_sec"`
	WritesPerSec   *float64        `json:"writes_per_sec,omitempty"`
	UpdatesPerSec  *float64        `json:"updates_per_sec,omitempty"`
	RetriesPerSec  *float64        `json:"retries_per_sec,omitempty"`
	Latency        metrics.Summary `json:"latency"`
	Errors         []string        `json:"errors,omitempty"`
}

// ThresholdSummary counts passed and failed thresholds.
type ThresholdSummary struct {
	Total   int                   `json:"total"`
	Passed  int                   `json:"passed"`
	Failed  int                   `json:"failed"`
	Results []ThresholdResultJSON `json:"results"`
}

// ThresholdResultJSON is one evaluated threshold.
type ThresholdResultJSON struct {
	Threshold string  `json:"threshold"`
	Scenario  string  `json:"scenario,omitempty"`
	Metric    string  `json:"metric"`
	Aggregate string  `json:"aggregate"`
	Operator  string  `json:"operator"`
	Expected  float64 `json:"expected"`
	Actual    float64 `json:"actual"`
	Pass      bool    `json:"pass"`
	Message   string  `json:"message,omitempty"`
}

// NewJSONReport assembles the report for runs in the order they ran.
func NewJSONReport(runID string, runs []runner.Result, thresholds []threshold.Result) JSONReport {
	report := JSONReport{
		RunID:     runID,
		Scenarios: make([]ScenarioReport, 0, len(runs)),
	}
	for _, run := range runs {
		report.Scenarios = append(report.Scenarios, NewScenarioReport(run))
	}
	if len(thresholds) > 0 {
		summary := NewThresholdSummary(thresholds)
		report.Thresholds = &summary
	}
	return report
}

// NewScenarioReport converts one run.
func NewScenarioReport(run runner.Result) ScenarioReport {
	totals := run.Totals
	report := ScenarioReport{
		Scenario:       run.Scenario.Slug(),
		Title:          run.Scenario.Title(),
		RunID:          run.RunID.String(),
		Concurrency:    run.Concurrency,
		Number:         run.Number,
		Record:         run.Record(),
		RequestsPerSec: ratePtr(run, totals.Loaded),
		Latency:        run.Latency,
	}
	if totals.Created > 0 {
		report.WritesPerSec = ratePtr(run, totals.Created)
	}
	if totals.Updated > 0 {
		report.UpdatesPerSec = ratePtr(run, totals.Updated)
	}
	if totals.Retries > 0 {
		report.RetriesPerSec = ratePtr(run, totals.Retries)
	}
	for _, err := range run.Errors {
		report.Errors = append(report.Errors, err.Error())
	}
	return report
}

// NewThresholdSummary tallies results.
func NewThresholdSummary(results []threshold.Result) ThresholdSummary {
	summary := ThresholdSummary{
		Total:   len(results),
		Results: make([]ThresholdResultJSON, len(results)),
	}
	for i, tr := range results {
		summary.Results[i] = ThresholdResultJSON{
			Threshold: tr.Threshold.Raw,
			Scenario:  tr.Scenario,
			Metric:    tr.Threshold.Metric,
			Aggregate: tr.Threshold.Aggregate,
			Operator:  tr.Threshold.Operator,
			Expected:  tr.Threshold.Value,
			Actual:    tr.Actual,
			Pass:      tr.Pass,
			Message:   tr.Message,
		}
		if tr.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}

func ratePtr(run runner.Result, n int) *float64 {
	perSec, ok := run.Rate(n)
	if !ok {
		return nil
	}
	return &perSec
}
