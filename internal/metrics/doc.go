// Package metrics records per-operation latency for a single worker.
//
// Every worker owns one [Recorder]; it is not safe for concurrent use.
// After all workers have joined, the load tester folds the recorders into
// one with [Recorder.Merge] and reads the [Summary]:
//
//	rec := metrics.NewRecorder()
//	rec.Record(metrics.OpRead, latency, "")
//	rec.Record(metrics.OpUpdate, latency, "409")
//
//	total := metrics.NewRecorder()
//	total.Merge(rec)
//	summary := total.Summary()
//
// Only mean and max latency are reported. Outcomes other than success are
// counted per operation and exposed as [OutcomeBucket] rows.
package metrics
