package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/torosent/glt/internal/scenario"
)

// Defaults mirror the values the content service's development setup uses.
const (
	DefaultTargetURL              = "http://localhost:8080/db"
	DefaultContainer              = "container"
	DefaultUsername               = "root"
	DefaultPassword               = "root"
	DefaultConcurrency            = 20
	DefaultNumber                 = 50
	DefaultMaxPerFolder           = 10
	DefaultTimeout                = 30 * time.Second
	DefaultContentiousConcurrency = 5
	DefaultContentiousNumber      = 20
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "glt",
		Short:         "Load test a hierarchical content API",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target flags
	flags.String("target", DefaultTargetURL, "Database URL of the content service")
	flags.String("container", DefaultContainer, "Id of the container the scenarios run in")
	flags.String("username", DefaultUsername, "Basic auth username")
	flags.String("password", DefaultPassword, "Basic auth password")
	flags.String("token", "", "Bearer token (overrides basic auth)")

	// Load control flags
	flags.IntP("concurrency", "c", DefaultConcurrency, "Number of concurrent workers")
	flags.IntP("number", "n", DefaultNumber, "Target operation count per worker")
	flags.Int("max-per-folder", DefaultMaxPerFolder, "Children created per folder before the build scenario descends")
	flags.Duration("timeout", DefaultTimeout, "Per-request timeout")
	flags.IntP("rate", "r", 0, "Operations per second per worker (0 means unlimited)")
	flags.Int("max-conflict-retries", 0, "Consecutive 409 retries allowed per update (0 means unbounded)")
	flags.Int64("seed", 0, "Seed for child shuffling (0 means time based)")
	flags.StringSliceP("scenario", "s", nil, fmt.Sprintf("Scenario to run (repeatable): %s", strings.Join(KnownScenarios, ", ")))
	flags.Bool("skip-setup", false, "Do not reset or populate the container before scenarios")
	flags.Int("contentious-concurrency", DefaultContentiousConcurrency, "Workers for the contentious-update scenario")
	flags.Int("contentious-number", DefaultContentiousNumber, "Target operation count per worker for the contentious-update scenario")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.String("results-file", "", "Write scenario results to this file (.json, .yaml or .yml)")
	flags.String("metrics-file", "", "Write scenario results in Prometheus text format to this file")
	flags.String("html-output", "", "Generate HTML report to the specified file path")
	flags.StringSlice("threshold", nil, "Pass/fail threshold (repeatable, e.g. 'read.requests:rate > 100')")
	flags.StringToString("label", nil, "Label recorded in the results file (key=value, repeatable)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (enables tracing)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.String("tracing-service-name", "", "Service name reported with spans (default glt)")
	flags.Bool("tracing-propagate", true, "Inject W3C trace headers into requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	strFlags := map[string]*string{
		"target":               &cfg.TargetURL,
		"container":            &cfg.Container,
		"username":             &cfg.Auth.Username,
		"password":             &cfg.Auth.Password,
		"token":                &cfg.Auth.Token,
		"results-file":         &cfg.ResultsFile,
		"metrics-file":         &cfg.MetricsFile,
		"html-output":          &cfg.HTMLOutput,
		"tracing-endpoint":     &cfg.Tracing.Endpoint,
		"tracing-protocol":     &cfg.Tracing.Protocol,
		"tracing-service-name": &cfg.Tracing.ServiceName,
	}
	for name, dst := range strFlags {
		if !fs.Changed(name) {
			continue
		}
		val, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(val)
	}

	intFlags := map[string]*int{
		"concurrency":             &cfg.Concurrency,
		"number":                  &cfg.Number,
		"max-per-folder":          &cfg.MaxPerFolder,
		"rate":                    &cfg.Rate,
		"max-conflict-retries":    &cfg.MaxConflictRetries,
		"contentious-concurrency": &cfg.Contentious.Concurrency,
		"contentious-number":      &cfg.Contentious.Number,
	}
	for name, dst := range intFlags {
		if !fs.Changed(name) {
			continue
		}
		val, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		*dst = val
	}

	boolFlags := map[string]*bool{
		"skip-setup":       &cfg.SkipSetup,
		"json-output":      &cfg.JSONOutput,
		"verbose":          &cfg.Verbose,
		"tracing-insecure": &cfg.Tracing.Insecure,
	}
	for name, dst := range boolFlags {
		if !fs.Changed(name) {
			continue
		}
		val, err := fs.GetBool(name)
		if err != nil {
			return err
		}
		*dst = val
	}

	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("seed") {
		val, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = val
	}
	if fs.Changed("scenario") {
		val, err := fs.GetStringSlice("scenario")
		if err != nil {
			return err
		}
		cfg.Scenarios = normalizeScenarios(val)
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("label") {
		val, err := fs.GetStringToString("label")
		if err != nil {
			return err
		}
		if cfg.Labels == nil {
			cfg.Labels = map[string]string{}
		}
		for k, v := range val {
			cfg.Labels[k] = v
		}
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = &val
	}
	return nil
}

var scenarioAliases = map[string]string{
	"write":       scenario.Write.Slug(),
	"populate":    scenario.Build.Slug(),
	"contentious": scenario.ContentiousUpdate.Slug(),
}

func normalizeScenarios(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		name = strings.ReplaceAll(name, "_", "-")
		if name == "" {
			continue
		}
		if alias, ok := scenarioAliases[name]; ok {
			name = alias
		}
		out = append(out, name)
	}
	return out
}
