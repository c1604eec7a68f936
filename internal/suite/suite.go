// Package suite runs an ordered plan of scenarios against one content
// service, resetting and populating the container between them.
package suite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/torosent/glt/internal/runner"
)

// Environment resets the container the scenarios run in.
type Environment interface {
	Reset(ctx context.Context) error
}

// Suite executes plans. Every step runs a fresh LoadTester built from the
// base options with the step's concurrency and number.
type Suite struct {
	env      Environment
	base     runner.Options
	logger   *zap.Logger
	onResult func(runner.Result)
}

// Option configures a Suite.
type Option func(*Suite)

// WithLogger sets the logger for suite steps.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Suite) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResultHandler is called with each reported result as soon as its
// step has finished.
func WithResultHandler(fn func(runner.Result)) Option {
	return func(s *Suite) {
		s.onResult = fn
	}
}

// New returns a Suite. base.Concurrency and base.Params.Number are replaced
// per step.
func New(env Environment, base runner.Options, opts ...Option) *Suite {
	s := &Suite{
		env:    env,
		base:   base,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes plan in order and returns the reported results. Failed
// workers do not stop the suite. A failed reset or a cancelled context
// does: the results gathered so far are returned with the error.
func (s *Suite) Run(ctx context.Context, plan []Step) ([]runner.Result, error) {
	var results []runner.Result
	for i, step := range plan {
		logger := s.logger.With(
			zap.Int("step", i+1),
			zap.String("scenario", step.Kind.Slug()),
			zap.Bool("report", step.Report),
		)
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if step.Reset {
			logger.Info("resetting container")
			if err := s.env.Reset(ctx); err != nil {
				return results, fmt.Errorf("reset before %s: %w", step.Kind.Slug(), err)
			}
		}
		if !step.Report {
			logger.Info("populating container")
		}

		opt := s.base
		opt.Concurrency = step.Concurrency
		opt.Params.Number = step.Number
		opt.Logger = logger
		res := runner.New(opt).Run(ctx, step.Kind)

		if step.Report {
			results = append(results, res)
			if s.onResult != nil {
				s.onResult(res)
			}
		} else if err := res.Err(); err != nil {
			logger.Warn("populate step had failed workers", zap.Error(err))
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}
