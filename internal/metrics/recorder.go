package metrics

import (
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Operation names one kind of call against the content service.
type Operation string

// Resets delete the container outside any measured run, so deletes are
// not recorded.
const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
)

var operationOrder = []Operation{OpCreate, OpRead, OpUpdate}

// Track latencies from 1µs up to 60s with 3 significant figures.
const (
	lowestTrackable  = 1
	highestTrackable = 60_000_000
	sigFigs          = 3
)

type operationStats struct {
	hist       *hdrhistogram.Histogram
	count      int64
	failures   int64
	maxLatency time.Duration
	outcomes   map[string]int
}

func newOperationStats() *operationStats {
	return &operationStats{
		hist:     hdrhistogram.New(lowestTrackable, highestTrackable, sigFigs),
		outcomes: make(map[string]int),
	}
}

// Recorder accumulates latencies for one worker.
type Recorder struct {
	ops map[Operation]*operationStats
}

// OperationSummary describes every call of one operation.
type OperationSummary struct {
	Operation   Operation     `json:"operation"`
	Count       int64         `json:"count"`
	Failures    int64         `json:"failures"`
	MeanLatency time.Duration `json:"-"`
	MaxLatency  time.Duration `json:"-"`

	MeanLatencyMs float64 `json:"mean_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
}

// Summary is the merged view over all operations.
type Summary struct {
	Operations []OperationSummary `json:"operations"`
	Outcomes   []OutcomeBucket    `json:"outcomes,omitempty"`
}

func NewRecorder() *Recorder {
	return &Recorder{ops: make(map[Operation]*operationStats)}
}

// Record stores one call. An empty outcome means the call succeeded; any
// other value, such as a status code, counts as a failure of that kind.
func (r *Recorder) Record(op Operation, latency time.Duration, outcome string) {
	if r == nil {
		return
	}
	stats := r.stats(op)
	stats.count++

	us := latency.Microseconds()
	if us < lowestTrackable {
		us = lowestTrackable
	}
	if us > highestTrackable {
		us = highestTrackable
	}
	_ = stats.hist.RecordValue(us)
	if latency > stats.maxLatency {
		stats.maxLatency = latency
	}

	if outcome != "" {
		stats.failures++
		stats.outcomes[outcome]++
	}
}

// Merge folds other into r. other is left untouched.
func (r *Recorder) Merge(other *Recorder) {
	if r == nil || other == nil {
		return
	}
	for op, src := range other.ops {
		dst := r.stats(op)
		dst.hist.Merge(src.hist)
		dst.count += src.count
		dst.failures += src.failures
		if src.maxLatency > dst.maxLatency {
			dst.maxLatency = src.maxLatency
		}
		for outcome, n := range src.outcomes {
			dst.outcomes[outcome] += n
		}
	}
}

// Summary returns mean and max latency per operation in a fixed order.
func (r *Recorder) Summary() Summary {
	var summary Summary
	if r == nil {
		return summary
	}
	outcomes := make(map[string]map[string]int)
	for _, op := range r.operations() {
		stats := r.ops[op]
		if stats.count == 0 {
			continue
		}
		mean := time.Duration(stats.hist.Mean() * float64(time.Microsecond))
		summary.Operations = append(summary.Operations, OperationSummary{
			Operation:     op,
			Count:         stats.count,
			Failures:      stats.failures,
			MeanLatency:   mean,
			MaxLatency:    stats.maxLatency,
			MeanLatencyMs: float64(mean) / float64(time.Millisecond),
			MaxLatencyMs:  float64(stats.maxLatency) / float64(time.Millisecond),
		})
		if len(stats.outcomes) > 0 {
			outcomes[string(op)] = stats.outcomes
		}
	}
	summary.Outcomes = FlattenOutcomes(outcomes)
	return summary
}

// Count returns the number of recorded calls of op.
func (r *Recorder) Count(op Operation) int64 {
	if r == nil {
		return 0
	}
	if stats, ok := r.ops[op]; ok {
		return stats.count
	}
	return 0
}

func (r *Recorder) stats(op Operation) *operationStats {
	stats, ok := r.ops[op]
	if !ok {
		stats = newOperationStats()
		r.ops[op] = stats
	}
	return stats
}

// operations lists known operations first, then any others by name.
func (r *Recorder) operations() []Operation {
	out := make([]Operation, 0, len(r.ops))
	seen := make(map[Operation]bool, len(r.ops))
	for _, op := range operationOrder {
		if _, ok := r.ops[op]; ok {
			out = append(out, op)
			seen[op] = true
		}
	}
	var extra []Operation
	for op := range r.ops {
		if !seen[op] {
			extra = append(extra, op)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
