package runner

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/torosent/glt/internal/metrics"
	"github.com/torosent/glt/internal/scenario"
)

// WorkerResult is the terminal state of one worker.
type WorkerResult struct {
	ID       int
	Counters scenario.Counters
	Err      error
}

// Result is built once every worker of a run has joined.
type Result struct {
	RunID       ulid.ULID
	Scenario    scenario.Kind
	Concurrency int
	Number      int
	Totals      scenario.Counters
	Workers     []WorkerResult
	Start       time.Time
	End         time.Time
	Latency     metrics.Summary
	Errors      []error
}

// Record is the persisted summary of a run. Duration is in seconds.
type Record struct {
	Writes   int     `json:"writes" yaml:"writes"`
	Updates  int     `json:"updates" yaml:"updates"`
	Requests int     `json:"requests" yaml:"requests"`
	Retries  int     `json:"retries" yaml:"retries"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// Duration is the wall clock time between the first worker starting and the
// last one joining.
func (r Result) Duration() time.Duration {
	if r.End.Before(r.Start) {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Rate returns n per second. ok is false when the duration is zero and the
// rate is undefined.
func (r Result) Rate(n int) (perSec float64, ok bool) {
	d := r.Duration()
	if d <= 0 {
		return 0, false
	}
	return float64(n) / d.Seconds(), true
}

// Record returns the persisted form of r.
func (r Result) Record() Record {
	return Record{
		Writes:   r.Totals.Created,
		Updates:  r.Totals.Updated,
		Requests: r.Totals.Loaded,
		Retries:  r.Totals.Retries,
		Duration: r.Duration().Seconds(),
	}
}

// Err joins the errors of every failed worker.
func (r Result) Err() error {
	return errors.Join(r.Errors...)
}
