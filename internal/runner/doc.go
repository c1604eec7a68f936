// Package runner executes a scenario with a fixed pool of workers.
//
// Every [Worker] owns its content client, its counters and its latency
// recorder. Workers never share mutable state; the [LoadTester] reads their
// counters only after [Worker.Join] has returned for all of them:
//
//	lt := runner.New(runner.Options{
//		Concurrency: 20,
//		Params:      scenario.Params{Root: root, Number: 50},
//		NewService:  factory,
//	})
//	result := lt.Run(ctx, scenario.Crawl)
//	if err := result.Err(); err != nil {
//		// at least one worker failed; counters of the others are still in result
//	}
//
// # Pacing
//
// RatePerSecond gives each worker its own token bucket. Zero leaves workers
// unpaced.
package runner
