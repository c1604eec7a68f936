package threshold

import (
	"testing"
	"time"

	"github.com/torosent/glt/internal/metrics"
	"github.com/torosent/glt/internal/runner"
	"github.com/torosent/glt/internal/scenario"
)

func sampleRun(kind scenario.Kind) runner.Result {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return runner.Result{
		Scenario: kind,
		Start:    start,
		End:      start.Add(10 * time.Second),
		Totals:   scenario.Counters{Loaded: 1000, Created: 200, Updated: 300, Retries: 50},
		Latency: metrics.Summary{
			Operations: []metrics.OperationSummary{
				{Operation: metrics.OpRead, Count: 500, MeanLatencyMs: 10, MaxLatencyMs: 80},
				{Operation: metrics.OpUpdate, Count: 500, MeanLatencyMs: 30, MaxLatencyMs: 250.5},
			},
		},
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "valid request rate threshold",
			input: "requests:rate > 100",
			want: Threshold{
				Metric:    "requests",
				Aggregate: "rate",
				Operator:  ">",
				Value:     100,
				Raw:       "requests:rate > 100",
			},
		},
		{
			name:  "scenario scoped retry count",
			input: "contentious-update.retries:count <= 1000",
			want: Threshold{
				Scenario:  "contentious-update",
				Metric:    "retries",
				Aggregate: "count",
				Operator:  "<=",
				Value:     1000,
				Raw:       "contentious-update.retries:count <= 1000",
			},
		},
		{
			name:  "valid latency average",
			input: "latency:avg<200",
			want: Threshold{
				Metric:    "latency",
				Aggregate: "avg",
				Operator:  "<",
				Value:     200,
				Raw:       "latency:avg<200",
			},
		},
		{
			name:  "failed workers",
			input: "  failed_workers:count == 0 ",
			want: Threshold{
				Metric:    "failed_workers",
				Aggregate: "count",
				Operator:  "==",
				Value:     0,
				Raw:       "failed_workers:count == 0",
			},
		},
		{
			name:      "empty string",
			input:     "",
			wantError: true,
		},
		{
			name:      "missing aggregate",
			input:     "requests > 100",
			wantError: true,
		},
		{
			name:      "unknown scenario",
			input:     "stress.requests:rate > 1",
			wantError: true,
		},
		{
			name:      "unsupported metric",
			input:     "http_req_duration:p95 < 500",
			wantError: true,
		},
		{
			name:      "percentiles are not tracked",
			input:     "latency:p99 < 500",
			wantError: true,
		},
		{
			name:      "unsupported operator",
			input:     "requests:count != 5",
			wantError: true,
		},
		{
			name:      "invalid value",
			input:     "requests:count > 1.2.3",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantError {
				t.Fatalf("Parse() error = %v, wantError %v", err, tt.wantError)
			}
			if !tt.wantError && got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		wantCount int
		wantError bool
	}{
		{
			name: "multiple valid thresholds",
			input: []string{
				"latency:max < 500",
				"retries:rate < 10",
				"requests:rate > 100",
			},
			wantCount: 3,
		},
		{
			name:      "empty slice",
			input:     []string{},
			wantCount: 0,
		},
		{
			name: "one valid, one invalid",
			input: []string{
				"latency:max < 500",
				"invalid threshold",
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMultiple(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ParseMultiple() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError && len(got) != tt.wantCount {
				t.Errorf("ParseMultiple() returned %d thresholds, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestEvaluator(t *testing.T) {
	runs := []runner.Result{sampleRun(scenario.Crawl), sampleRun(scenario.Read)}

	tests := []struct {
		name       string
		thresholds []string
		wantPass   []bool
	}{
		{
			name: "unscoped thresholds apply to every run",
			thresholds: []string{
				"requests:rate > 50",
			},
			wantPass: []bool{true, true},
		},
		{
			name: "scoped threshold applies once",
			thresholds: []string{
				"crawl.retries:count < 10",
			},
			wantPass: []bool{false},
		},
		{
			name: "missing scenario fails",
			thresholds: []string{
				"writes.requests:count > 0",
			},
			wantPass: []bool{false},
		},
		{
			name: "latency and duration",
			thresholds: []string{
				"read.latency:avg <= 20",
				"read.latency:max < 250",
				"read.duration:seconds < 11",
			},
			wantPass: []bool{true, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thresholds, err := ParseMultiple(tt.thresholds)
			if err != nil {
				t.Fatalf("ParseMultiple() error = %v", err)
			}

			results := NewEvaluator(thresholds).Evaluate(runs)
			if len(results) != len(tt.wantPass) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.wantPass))
			}

			for i, result := range results {
				if result.Pass != tt.wantPass[i] {
					t.Errorf("threshold[%d] %q: got pass=%v, want %v (actual=%.2f)",
						i, result.Threshold.Raw, result.Pass, tt.wantPass[i], result.Actual)
				}
			}
		})
	}
}

func TestEvaluatorUndefinedRateFails(t *testing.T) {
	run := sampleRun(scenario.Write)
	run.End = run.Start
	thresholds, err := ParseMultiple([]string{"requests:rate > 0"})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	results := NewEvaluator(thresholds).Evaluate([]runner.Result{run})
	if len(results) != 1 || results[0].Pass {
		t.Fatalf("expected undefined rate to fail, got %+v", results)
	}
	if Passed(results) {
		t.Fatal("Passed() should be false")
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		operator string
		expected float64
		want     bool
	}{
		{"less than true", 50, "<", 100, true},
		{"less than false", 100, "<", 50, false},
		{"less than equal", 100, "<", 100, false},
		{"less than or equal true", 50, "<=", 100, true},
		{"less than or equal equal", 100, "<=", 100, true},
		{"less than or equal false", 150, "<=", 100, false},
		{"greater than true", 150, ">", 100, true},
		{"greater than false", 50, ">", 100, false},
		{"greater than equal", 100, ">", 100, false},
		{"greater than or equal true", 150, ">=", 100, true},
		{"greater than or equal equal", 100, ">=", 100, true},
		{"greater than or equal false", 50, ">=", 100, false},
		{"equal true", 100, "==", 100, true},
		{"equal false", 100, "==", 101, false},
		{"equal with floating point precision", 100.0000000001, "==", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareValues(tt.actual, tt.operator, tt.expected)
			if got != tt.want {
				t.Errorf("compareValues(%.2f, %s, %.2f) = %v, want %v",
					tt.actual, tt.operator, tt.expected, got, tt.want)
			}
		})
	}
}

func TestExtractMetricValue(t *testing.T) {
	run := sampleRun(scenario.CrawlAndUpdate)
	run.Errors = []error{nil}

	tests := []struct {
		name      string
		threshold Threshold
		want      float64
		wantError bool
	}{
		{
			name:      "requests count",
			threshold: Threshold{Metric: "requests", Aggregate: "count"},
			want:      1000,
		},
		{
			name:      "requests rate",
			threshold: Threshold{Metric: "requests", Aggregate: "rate"},
			want:      100,
		},
		{
			name:      "writes rate",
			threshold: Threshold{Metric: "writes", Aggregate: "rate"},
			want:      20,
		},
		{
			name:      "updates count",
			threshold: Threshold{Metric: "updates", Aggregate: "count"},
			want:      300,
		},
		{
			name:      "retries rate",
			threshold: Threshold{Metric: "retries", Aggregate: "rate"},
			want:      5,
		},
		{
			name:      "duration seconds",
			threshold: Threshold{Metric: "duration", Aggregate: "seconds"},
			want:      10,
		},
		{
			name:      "latency avg weighted by count",
			threshold: Threshold{Metric: "latency", Aggregate: "avg"},
			want:      20,
		},
		{
			name:      "latency max",
			threshold: Threshold{Metric: "latency", Aggregate: "max"},
			want:      250.5,
		},
		{
			name:      "failed workers",
			threshold: Threshold{Metric: "failed_workers", Aggregate: "count"},
			want:      1,
		},
		{
			name:      "unsupported metric",
			threshold: Threshold{Metric: "invalid_metric", Aggregate: "count"},
			wantError: true,
		},
		{
			name:      "unsupported aggregate for metric",
			threshold: Threshold{Metric: "requests", Aggregate: "p95"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractMetricValue(tt.threshold, run)
			if (err != nil) != tt.wantError {
				t.Errorf("extractMetricValue() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError && got != tt.want {
				t.Errorf("extractMetricValue() = %v, want %v", got, tt.want)
			}
		})
	}
}
