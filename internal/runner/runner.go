package runner

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/torosent/glt/internal/metrics"
	"github.com/torosent/glt/internal/scenario"
)

// LoadTester runs a pool of workers on one scenario and aggregates their
// counters once all of them have finished.
type LoadTester struct {
	opt Options
}

func New(opt Options) *LoadTester {
	opt.normalize()
	return &LoadTester{opt: opt}
}

// Run starts Concurrency workers on kind and blocks until every one of them
// has returned. A failing worker does not stop the others.
func (lt *LoadTester) Run(ctx context.Context, kind scenario.Kind) Result {
	res := Result{
		RunID:       ulid.Make(),
		Scenario:    kind,
		Concurrency: lt.opt.Concurrency,
		Number:      lt.opt.Params.Number,
	}
	logger := lt.opt.Logger.With(zap.String("scenario", kind.Slug()), zap.String("run_id", res.RunID.String()))

	res.Start = time.Now()
	logger.Info("starting workers", zap.Int("concurrency", lt.opt.Concurrency))

	workers := make([]*Worker, 0, lt.opt.Concurrency)
	for i := 0; i < lt.opt.Concurrency; i++ {
		w, err := lt.newWorker(i, kind, logger)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		workers = append(workers, w)
		w.Start(ctx)
	}

	logger.Info("waiting to finish")
	latency := metrics.NewRecorder()
	for _, w := range workers {
		counters, err := w.Join()
		res.Workers = append(res.Workers, WorkerResult{ID: w.id, Counters: counters, Err: err})
		res.Totals = res.Totals.Add(counters)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("worker %d: %w", w.id, err))
		}
		latency.Merge(w.recorder)
	}
	res.End = time.Now()
	res.Latency = latency.Summary()

	logger.Info("workers finished",
		zap.Int("loaded", res.Totals.Loaded),
		zap.Duration("duration", res.Duration()),
		zap.Int("failed_workers", len(res.Errors)),
	)
	return res
}

func (lt *LoadTester) newWorker(id int, kind scenario.Kind, logger *zap.Logger) (*Worker, error) {
	if lt.opt.NewService == nil {
		return nil, fmt.Errorf("worker %d: service factory is not configured", id)
	}
	svc, release := lt.opt.NewService(id)
	if svc == nil {
		return nil, fmt.Errorf("worker %d: service factory returned nil", id)
	}

	logger = logger.With(zap.Int("worker", id))
	recorder := metrics.NewRecorder()
	session := scenario.NewSession(svc, lt.opt.Params,
		scenario.WithRand(rand.New(rand.NewSource(lt.opt.Seed+int64(id)))),
		scenario.WithLimiter(lt.opt.LimiterFactory(lt.opt.RatePerSecond)),
		scenario.WithRecorder(recorder),
		scenario.WithLogger(logger),
	)
	return &Worker{
		id:       id,
		kind:     kind,
		session:  session,
		recorder: recorder,
		release:  release,
		logger:   logger,
		tracer:   lt.opt.Tracer,
		done:     make(chan struct{}),
	}, nil
}
