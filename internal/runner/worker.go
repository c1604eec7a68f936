package runner

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/torosent/glt/internal/metrics"
	"github.com/torosent/glt/internal/scenario"
	"github.com/torosent/glt/internal/tracing"
)

// Worker runs one scenario on its own goroutine with its own client and
// counters. Nothing it owns is read before Join returns.
type Worker struct {
	id       int
	kind     scenario.Kind
	session  *scenario.Session
	recorder *metrics.Recorder
	release  func()
	logger   *zap.Logger
	tracer   trace.Tracer

	done     chan struct{}
	counters scenario.Counters
	err      error
}

// Start launches the scenario. It must be called at most once.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		if w.release != nil {
			defer w.release()
		}
		ctx, span := tracing.StartWorkerSpan(ctx, w.tracer, w.kind.Slug(), w.id)

		w.err = w.session.Run(ctx, w.kind)
		w.counters = w.session.Counters()

		tracing.EndSpan(span, w.err,
			attribute.Int("glt.loaded", w.counters.Loaded),
			attribute.Int("glt.retries", w.counters.Retries),
		)
		if w.err != nil {
			w.logger.Error("worker failed", zap.Error(w.err), zap.Int("loaded", w.counters.Loaded))
			return
		}
		w.logger.Debug("worker finished",
			zap.Int("loaded", w.counters.Loaded),
			zap.Bool("dived_out", w.session.DivingOut()),
		)
	}()
}

// Join blocks until the worker has finished and returns its final counters.
func (w *Worker) Join() (scenario.Counters, error) {
	<-w.done
	return w.counters, w.err
}
