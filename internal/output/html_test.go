package output_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/torosent/glt/internal/metrics"
	"github.com/torosent/glt/internal/output"
	"github.com/torosent/glt/internal/runner"
	"github.com/torosent/glt/internal/scenario"
	"github.com/torosent/glt/internal/threshold"
)

func run(kind scenario.Kind, d time.Duration, totals scenario.Counters) runner.Result {
	start := time.Now()
	return runner.Result{
		Scenario:    kind,
		Concurrency: 4,
		Number:      50,
		Totals:      totals,
		Start:       start,
		End:         start.Add(d),
	}
}

func TestGenerateHTMLReport(t *testing.T) {
	crawl := run(scenario.CrawlAndUpdate, time.Second, scenario.Counters{Loaded: 100, Updated: 20, Retries: 5})
	crawl.Latency = metrics.Summary{
		Operations: []metrics.OperationSummary{
			{Operation: metrics.OpRead, Count: 80, MeanLatency: 4 * time.Millisecond, MaxLatency: 12 * time.Millisecond},
			{Operation: metrics.OpUpdate, Count: 25, Failures: 5, MeanLatency: 6 * time.Millisecond, MaxLatency: 20 * time.Millisecond},
		},
	}
	writes := run(scenario.Write, 2*time.Second, scenario.Counters{Loaded: 50, Created: 50})
	writes.Errors = []error{errors.New("worker 3: create: unexpected status 500")}

	thresholds := []threshold.Result{
		{
			Threshold: threshold.Threshold{Raw: "crawl-and-update.retries:count < 10", Metric: "retries", Aggregate: "count", Operator: "<", Value: 10},
			Scenario:  "crawl-and-update",
			Actual:    5,
			Pass:      true,
		},
	}

	var buf bytes.Buffer
	err := output.GenerateHTMLReport(&buf, []runner.Result{crawl, writes}, thresholds, output.ReportMetadata{
		TargetURL:   "http://localhost:8080/db",
		RunID:       "01HX",
		Concurrency: 4,
		Number:      50,
	})
	if err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Content Load Test Report",
		"http://localhost:8080/db",
		"Run: 01HX",
		"Crawl and update",
		"Writes",
		"100.00",
		"Thresholds (1/1 Passed)",
		"crawl-and-update.retries:count &lt; 10",
		"worker 3: create: unexpected status 500",
		"12ms",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestGenerateHTMLReportScalesBars(t *testing.T) {
	// Crawl and update: 80 reads + 20 updates + 5 retries per second.
	// Writes: 25 writes per second.
	crawl := run(scenario.CrawlAndUpdate, time.Second, scenario.Counters{Loaded: 100, Updated: 20, Retries: 5})
	writes := run(scenario.Write, 2*time.Second, scenario.Counters{Loaded: 50, Created: 50})

	var buf bytes.Buffer
	if err := output.GenerateHTMLReport(&buf, []runner.Result{crawl, writes}, nil, output.ReportMetadata{}); err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}
	html := buf.String()

	// The busiest scenario spans the full width: 80/105 of it is reads.
	if !strings.Contains(html, `class="reads" style="width: 76.19`) {
		t.Errorf("reads bar not scaled against the busiest scenario")
	}
	if !strings.Contains(html, `class="writes" style="width: 23.8`) {
		t.Errorf("writes bar not scaled against the busiest scenario")
	}
	if strings.Contains(html, "Thresholds (") {
		t.Errorf("threshold section should be omitted without thresholds")
	}
}

func TestGenerateHTMLReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := output.GenerateHTMLReport(&buf, nil, nil, output.ReportMetadata{}); err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No scenario completed.") {
		t.Errorf("expected empty state message")
	}
}
