package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/torosent/glt/internal/metrics"
	"github.com/torosent/glt/internal/runner"
	"github.com/torosent/glt/internal/threshold"
)

const undefinedRate = "undefined"

// PrintReport outputs the human-readable summary of one scenario run.
func PrintReport(w io.Writer, res runner.Result) {
	totals := res.Totals
	title := "Test results for: " + res.Scenario.Title()
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "Total requests: %d\n", totals.Loaded)
	if totals.Created > 0 {
		fmt.Fprintf(w, "Total writes: %d\n", totals.Created)
	}
	if totals.Updated > 0 {
		fmt.Fprintf(w, "Total updates: %d\n", totals.Updated)
	}
	if totals.Retries > 0 {
		fmt.Fprintf(w, "Total retries: %d\n", totals.Retries)
	}
	fmt.Fprintf(w, "Seconds: %.3f\n", res.Duration().Seconds())
	fmt.Fprintf(w, "Per sec: %s\n", FormatRate(res, totals.Loaded))
	if totals.Created > 0 {
		fmt.Fprintf(w, "Writes per sec: %s\n", FormatRate(res, totals.Created))
	}
	if totals.Updated > 0 {
		fmt.Fprintf(w, "Updates per sec: %s\n", FormatRate(res, totals.Updated))
	}
	if totals.Retries > 0 {
		fmt.Fprintf(w, "Retries per sec: %s\n", FormatRate(res, totals.Retries))
	}

	if len(res.Latency.Operations) > 0 {
		fmt.Fprintln(w, "\nLatency:")
		for _, op := range res.Latency.Operations {
			fmt.Fprintf(w, "  %-7s count=%d mean=%s max=%s\n",
				op.Operation, op.Count, op.MeanLatency, op.MaxLatency)
		}
	}
	if len(res.Latency.Outcomes) > 0 {
		fmt.Fprintln(w, "\nFailed Calls:")
		writeOutcomes(w, res.Latency.Outcomes, "  ")
	}
	if len(res.Errors) > 0 {
		fmt.Fprintf(w, "\nFailed workers: %d\n", len(res.Errors))
		for _, err := range res.Errors {
			fmt.Fprintf(w, "  - %v\n", err)
		}
	}
}

// PrintThresholds outputs one line per evaluated threshold.
func PrintThresholds(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	summary := NewThresholdSummary(results)
	fmt.Fprintf(w, "\nThresholds (%d/%d passed):\n", summary.Passed, summary.Total)
	for _, r := range results {
		fmt.Fprintf(w, "  %s\n", r.Message)
	}
}

// FormatRate returns n per second with two decimals, or "undefined" when
// the run took no measurable time.
func FormatRate(res runner.Result, n int) string {
	perSec, ok := res.Rate(n)
	if !ok {
		return undefinedRate
	}
	return fmt.Sprintf("%.2f", perSec)
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report JSONReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeOutcomes(w io.Writer, rows []metrics.OutcomeBucket, indent string) {
	if len(rows) == 0 {
		fmt.Fprintf(w, "%sNone\n", indent)
		return
	}
	for _, row := range rows {
		fmt.Fprintf(
			w,
			"%s%s %s: %d\n",
			indent,
			strings.ToUpper(row.Operation),
			row.Outcome,
			row.Count,
		)
	}
}
