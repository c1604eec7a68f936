package output

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/torosent/glt/internal/runner"
)

// WriteMetricsFile writes the final statistics of runs in the Prometheus
// text exposition format, suitable for the node exporter textfile
// collector. labels become constant labels on every series.
func WriteMetricsFile(path string, runs []runner.Result, labels map[string]string) error {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{}
	for k, v := range labels {
		constLabels[k] = v
	}

	var registerErr error
	gauge := func(name, help string, extra ...string) *prometheus.GaugeVec {
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "glt",
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}, append([]string{"scenario"}, extra...))
		if err := registry.Register(vec); err != nil && registerErr == nil {
			registerErr = fmt.Errorf("register %s: %w", name, err)
		}
		return vec
	}

	requests := gauge("requests", "Successful operations of any kind in the last run.")
	writes := gauge("writes", "Resources created in the last run.")
	updates := gauge("updates", "Resources updated in the last run.")
	retries := gauge("retries", "Update retries after a conflict in the last run.")
	duration := gauge("duration_seconds", "Wall clock duration of the last run.")
	throughput := gauge("requests_per_second", "Requests per second of the last run. Absent when undefined.")
	failed := gauge("failed_workers", "Workers that ended with an error.")
	latencyMean := gauge("operation_latency_mean_seconds", "Mean latency per operation.", "operation")
	latencyMax := gauge("operation_latency_max_seconds", "Max latency per operation.", "operation")
	calls := gauge("operation_calls", "Calls per operation, including failed calls.", "operation")
	if registerErr != nil {
		return fmt.Errorf("metrics labels: %w", registerErr)
	}

	for _, run := range sortedRuns(runs) {
		slug := run.Scenario.Slug()
		requests.WithLabelValues(slug).Set(float64(run.Totals.Loaded))
		writes.WithLabelValues(slug).Set(float64(run.Totals.Created))
		updates.WithLabelValues(slug).Set(float64(run.Totals.Updated))
		retries.WithLabelValues(slug).Set(float64(run.Totals.Retries))
		duration.WithLabelValues(slug).Set(run.Duration().Seconds())
		failed.WithLabelValues(slug).Set(float64(len(run.Errors)))
		if perSec, ok := run.Rate(run.Totals.Loaded); ok {
			throughput.WithLabelValues(slug).Set(perSec)
		}
		for _, op := range run.Latency.Operations {
			name := string(op.Operation)
			latencyMean.WithLabelValues(slug, name).Set(op.MeanLatency.Seconds())
			latencyMax.WithLabelValues(slug, name).Set(op.MaxLatency.Seconds())
			calls.WithLabelValues(slug, name).Set(float64(op.Count))
		}
	}

	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

// sortedRuns orders runs by scenario so that later runs of the same
// scenario overwrite earlier ones deterministically.
func sortedRuns(runs []runner.Result) []runner.Result {
	out := append([]runner.Result(nil), runs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Scenario < out[j].Scenario
	})
	return out
}
