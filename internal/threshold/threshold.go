package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/torosent/glt/internal/runner"
	"github.com/torosent/glt/internal/scenario"
)

var pattern = regexp.MustCompile(`^(?:([a-z-]+)\.)?([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Scenario  string  // optional scenario slug, e.g. "crawl"; empty applies to every run
	Metric    string  // e.g., "requests", "retries", "latency"
	Aggregate string  // e.g., "count", "rate", "avg"
	Operator  string  // e.g., "<", "<=", ">", ">=", "=="
	Value     float64 // The threshold value to compare against
	Raw       string  // Original threshold string for display
}

// Result represents the outcome of evaluating a threshold against one run.
type Result struct {
	Threshold Threshold
	Scenario  string
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against scenario results.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
	}
}

// Evaluate checks every threshold against every run it applies to. A
// threshold naming a scenario that did not run fails.
func (e *Evaluator) Evaluate(runs []runner.Result) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		matched := false
		for _, run := range runs {
			if t.Scenario != "" && t.Scenario != run.Scenario.Slug() {
				continue
			}
			matched = true
			results = append(results, e.evaluateOne(t, run))
		}
		if !matched {
			results = append(results, Result{
				Threshold: t,
				Scenario:  t.Scenario,
				Message:   fmt.Sprintf("✗ %s: no matching scenario run", t.Raw),
			})
		}
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func (e *Evaluator) evaluateOne(t Threshold, run runner.Result) Result {
	slug := run.Scenario.Slug()
	actual, err := extractMetricValue(t, run)
	if err != nil {
		return Result{
			Threshold: t,
			Scenario:  slug,
			Actual:    0,
			Pass:      false,
			Message:   fmt.Sprintf("✗ %s [%s]: %v", t.Raw, slug, err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	message := fmt.Sprintf("%s %s [%s]: %.2f %s %.2f", status, t.Raw, slug, actual, t.Operator, t.Value)
	return Result{
		Threshold: t,
		Scenario:  slug,
		Actual:    actual,
		Pass:      pass,
		Message:   message,
	}
}

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
// - "requests:rate > 100"           (requests per second)
// - "crawl.requests:count >= 1000"  (scoped to one scenario)
// - "writes:rate > 10"              (creates per second; also updates, retries)
// - "retries:count < 50"            (conflict retries)
// - "duration:seconds < 30"         (wall clock duration)
// - "latency:avg < 200"             (mean latency in ms; also max)
// - "failed_workers:count == 0"     (workers that ended with an error)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := pattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: [scenario.]metric:aggregate operator value, e.g., 'requests:rate > 100')", s)
	}

	scope := matches[1]
	metric := matches[2]
	aggregate := matches[3]
	operator := matches[4]
	valueStr := matches[5]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if scope != "" {
		if _, err := scenario.Parse(scope); err != nil {
			return Threshold{}, fmt.Errorf("unsupported scenario: %q", scope)
		}
	}

	aggregates, ok := validAggregates[metric]
	if !ok {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: requests, writes, updates, retries, duration, latency, failed_workers)", metric)
	}

	if !contains(aggregates, aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate %q for %s (supported: %s)", aggregate, metric, strings.Join(aggregates, ", "))
	}

	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Scenario:  scope,
		Metric:    metric,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errors []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}

var validAggregates = map[string][]string{
	"requests":       {"count", "rate"},
	"writes":         {"count", "rate"},
	"updates":        {"count", "rate"},
	"retries":        {"count", "rate"},
	"duration":       {"seconds"},
	"latency":        {"avg", "max"},
	"failed_workers": {"count"},
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func isValidOperator(operator string) bool {
	valid := []string{"<", "<=", ">", ">=", "=="}
	for _, v := range valid {
		if operator == v {
			return true
		}
	}
	return false
}

func extractMetricValue(t Threshold, run runner.Result) (float64, error) {
	switch t.Metric {
	case "requests":
		return extractCounter(t.Aggregate, run.Totals.Loaded, run)
	case "writes":
		return extractCounter(t.Aggregate, run.Totals.Created, run)
	case "updates":
		return extractCounter(t.Aggregate, run.Totals.Updated, run)
	case "retries":
		return extractCounter(t.Aggregate, run.Totals.Retries, run)
	case "duration":
		return run.Duration().Seconds(), nil
	case "latency":
		return extractLatency(t.Aggregate, run)
	case "failed_workers":
		return float64(len(run.Errors)), nil
	default:
		return 0, fmt.Errorf("unknown metric: %s", t.Metric)
	}
}

func extractCounter(aggregate string, n int, run runner.Result) (float64, error) {
	switch aggregate {
	case "count":
		return float64(n), nil
	case "rate":
		perSec, ok := run.Rate(n)
		if !ok {
			return 0, fmt.Errorf("rate undefined for zero duration")
		}
		return perSec, nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q (use 'count' or 'rate')", aggregate)
	}
}

// extractLatency folds the per-operation summaries into one value in ms.
func extractLatency(aggregate string, run runner.Result) (float64, error) {
	var count int64
	var weighted, max float64
	for _, op := range run.Latency.Operations {
		count += op.Count
		weighted += op.MeanLatencyMs * float64(op.Count)
		if op.MaxLatencyMs > max {
			max = op.MaxLatencyMs
		}
	}
	switch aggregate {
	case "avg":
		if count == 0 {
			return 0, nil
		}
		return weighted / float64(count), nil
	case "max":
		return max, nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for latency (use 'avg' or 'max')", aggregate)
	}
}

func compareValues(actual float64, operator string, expected float64) bool {
	// Handle floating point comparison with small epsilon
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
