package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/torosent/glt/internal/auth"
	"github.com/torosent/glt/internal/config"
	"github.com/torosent/glt/internal/content"
	"github.com/torosent/glt/internal/environment"
	"github.com/torosent/glt/internal/httpclient"
	"github.com/torosent/glt/internal/output"
	"github.com/torosent/glt/internal/pool"
	"github.com/torosent/glt/internal/runner"
	"github.com/torosent/glt/internal/scenario"
	"github.com/torosent/glt/internal/suite"
	"github.com/torosent/glt/internal/threshold"
	"github.com/torosent/glt/internal/tracing"
)

const persistTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}
	kinds, err := selectedKinds(cfg.Scenarios)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runID := ulid.Make().String()
	root := cfg.RootURL()
	logger = logger.With(zap.String("suite_id", runID))

	provider, err := tracing.Init(ctx, cfg.Tracing, tracing.WithResourceAttributes(
		attribute.String("glt.suite_id", runID),
		attribute.String("glt.root", root),
	))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), persistTimeout)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	credentials := auth.New(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.Token)
	defer credentials.Close()

	builder := httpclient.NewRequestBuilder(credentials)
	if provider.ShouldPropagate() {
		builder = builder.WithInjector(tracing.InjectHTTPHeaders)
	}
	newClient := func() *content.Client {
		return content.NewClient(httpclient.NewClient(cfg.Timeout), builder, content.WithTracer(provider.Tracer()))
	}

	setup := newClient()
	defer setup.CloseIdleConnections()
	env := environment.New(setup, cfg.TargetURL, cfg.Container, environment.WithLogger(logger))

	clients := pool.NewConnectionPool[*content.Client](max(cfg.Concurrency, cfg.Contentious.Concurrency))
	defer clients.Close()

	base := runner.Options{
		Params: scenario.Params{
			Root:               root,
			MaxPerFolder:       cfg.MaxPerFolder,
			MaxConflictRetries: cfg.MaxConflictRetries,
		},
		RatePerSecond: cfg.Rate,
		Seed:          cfg.Seed,
		NewService: func(int) (scenario.Service, func()) {
			client, _ := clients.Get(root, newClient)
			return client, func() { clients.Put(root, client) }
		},
		Logger: logger,
		Tracer: provider.Tracer(),
	}

	s := suite.New(env, base,
		suite.WithLogger(logger),
		suite.WithResultHandler(func(res runner.Result) {
			if !cfg.JSONOutput {
				output.PrintReport(stdout, res)
			}
		}),
	)
	plan := suite.NewPlan(suite.PlanOptions{
		Selected:               kinds,
		Concurrency:            cfg.Concurrency,
		Number:                 cfg.Number,
		ContentiousConcurrency: cfg.Contentious.Concurrency,
		ContentiousNumber:      cfg.Contentious.Number,
		SkipSetup:              cfg.SkipSetup,
	})

	runs, suiteErr := s.Run(ctx, plan)
	if suiteErr != nil {
		logger.Error("error running suite", zap.Error(suiteErr))
	}

	thresholdResults := threshold.NewEvaluator(thresholds).Evaluate(runs)
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(stdout, output.NewJSONReport(runID, runs, thresholdResults)); err != nil {
			return err
		}
	} else {
		output.PrintThresholds(stdout, thresholdResults)
	}

	if err := persist(cfg, runID, runs, thresholdResults); err != nil {
		return err
	}

	if suiteErr != nil {
		return suiteErr
	}
	failed := 0
	for _, res := range runs {
		failed += len(res.Errors)
	}
	if failed > 0 {
		return fmt.Errorf("%d workers failed", failed)
	}
	if !threshold.Passed(thresholdResults) {
		return errors.New("one or more thresholds failed")
	}
	return nil
}

// persist writes the optional report files. It runs on its own context so
// that results gathered before an interrupt are still saved.
func persist(cfg *config.Config, runID string, runs []runner.Result, thresholdResults []threshold.Result) error {
	if cfg.HTMLOutput != "" {
		if err := writeHTMLReport(cfg, runID, runs, thresholdResults); err != nil {
			return err
		}
	}
	if cfg.ResultsFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		results := output.NewResultsFile(runID, configuration(cfg), runs)
		if err := output.WriteResults(ctx, cfg.ResultsFile, results); err != nil {
			return err
		}
	}
	if cfg.MetricsFile != "" {
		if err := output.WriteMetricsFile(cfg.MetricsFile, runs, cfg.Labels); err != nil {
			return err
		}
	}
	return nil
}

func writeHTMLReport(cfg *config.Config, runID string, runs []runner.Result, thresholdResults []threshold.Result) error {
	f, err := os.Create(cfg.HTMLOutput)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	meta := output.ReportMetadata{
		TargetURL:   cfg.RootURL(),
		RunID:       runID,
		Concurrency: cfg.Concurrency,
		Number:      cfg.Number,
	}
	if err := output.GenerateHTMLReport(f, runs, thresholdResults, meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func selectedKinds(names []string) ([]scenario.Kind, error) {
	kinds := make([]scenario.Kind, 0, len(names))
	for _, name := range names {
		kind, err := scenario.Parse(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// configuration is the settings block stored next to the results.
func configuration(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"target":               cfg.TargetURL,
		"container":            cfg.Container,
		"concurrency":          cfg.Concurrency,
		"number":               cfg.Number,
		"max_per_folder":       cfg.MaxPerFolder,
		"rate":                 cfg.Rate,
		"max_conflict_retries": cfg.MaxConflictRetries,
		"seed":                 cfg.Seed,
		"scenarios":            cfg.SelectedScenarios(),
		"skip_setup":           cfg.SkipSetup,
		"contentious": map[string]interface{}{
			"concurrency": cfg.Contentious.Concurrency,
			"number":      cfg.Contentious.Number,
		},
		"labels": cfg.Labels,
	}
}
