package runner

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/torosent/glt/internal/scenario"
)

// ServiceFactory builds the content client owned by one worker. The returned
// release func is called once the worker has finished.
type ServiceFactory func(worker int) (svc scenario.Service, release func())

// Options configure the LoadTester.
type Options struct {
	Concurrency    int                         // number of workers
	Params         scenario.Params             // root URL and per-worker targets
	RatePerSecond  int                         // per-worker pacing (0 means unlimited)
	Seed           int64                       // shuffle seed; worker i uses Seed+i (0 means time based)
	NewService     ServiceFactory              // per-worker client factory (required)
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
	Logger         *zap.Logger
	Tracer         trace.Tracer
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Params.Number < 0 {
		o.Params.Number = 0
	}
	if o.Params.MaxPerFolder <= 0 {
		o.Params.MaxPerFolder = 10
	}
	if o.Params.MaxConflictRetries < 0 {
		o.Params.MaxConflictRetries = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return nil
			}
			return rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("glt")
	}
}
