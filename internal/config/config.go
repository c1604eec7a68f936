package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/torosent/glt/internal/scenario"
	"github.com/torosent/glt/internal/tracing"
)

// Labels become Prometheus constant labels in the metrics file, so they
// follow its naming rules and may not shadow the series' own labels.
var (
	labelName      = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	reservedLabels = map[string]bool{"scenario": true, "operation": true}
)

// KnownScenarios lists the names accepted by --scenario. They are the
// scenario slugs used as keys in the results file.
var KnownScenarios = scenarioSlugs()

func scenarioSlugs() []string {
	kinds := scenario.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.Slug()
	}
	return names
}

type Config struct {
	TargetURL          string            `mapstructure:"target"`
	Container          string            `mapstructure:"container"`
	Auth               AuthConfig        `mapstructure:"auth"`
	Concurrency        int               `mapstructure:"concurrency"`
	Number             int               `mapstructure:"number"`
	MaxPerFolder       int               `mapstructure:"max_per_folder"`
	Timeout            time.Duration     `mapstructure:"timeout"`
	Rate               int               `mapstructure:"rate"`
	MaxConflictRetries int               `mapstructure:"max_conflict_retries"`
	Seed               int64             `mapstructure:"seed"`
	Scenarios          []string          `mapstructure:"scenarios"`
	SkipSetup          bool              `mapstructure:"skip_setup"`
	Contentious        ContentiousConfig `mapstructure:"contentious"`
	JSONOutput         bool              `mapstructure:"json_output"`
	ResultsFile        string            `mapstructure:"results_file"`
	MetricsFile        string            `mapstructure:"metrics_file"`
	HTMLOutput         string            `mapstructure:"html_output"`
	Thresholds         []string          `mapstructure:"thresholds"`
	Labels             map[string]string `mapstructure:"labels"`
	Verbose            bool              `mapstructure:"verbose"`
	Tracing            TracingConfig     `mapstructure:"tracing"`
	ConfigFile         string            `mapstructure:"-"`
}

// AuthConfig holds the credentials sent with every request. Token takes
// precedence over basic credentials when set.
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
}

// ContentiousConfig overrides concurrency and number for the contentious
// update scenario, which hammers a single resource.
type ContentiousConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	Number      int `mapstructure:"number"`
}

// TracingConfig is kept under config so file and flag parsing stay in one place.
type TracingConfig = tracing.Config

// RootURL returns the URL of the container every scenario runs against.
func (c Config) RootURL() string {
	return strings.TrimRight(c.TargetURL, "/") + "/" + c.Container
}

// SelectedScenarios returns the configured scenarios, or every known
// scenario when none were selected.
func (c Config) SelectedScenarios() []string {
	if len(c.Scenarios) == 0 {
		return append([]string(nil), KnownScenarios...)
	}
	return append([]string(nil), c.Scenarios...)
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	target := strings.TrimSpace(c.TargetURL)
	if target == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	} else if u, err := url.Parse(target); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		issues = append(issues, fmt.Sprintf("target %q must be an absolute http(s) URL", target))
	}
	if strings.TrimSpace(c.Container) == "" {
		issues = append(issues, "container is required")
	} else if strings.Contains(c.Container, "/") {
		issues = append(issues, "container must be a single path segment")
	}

	for _, w := range c.Warnings() {
		fmt.Fprintln(os.Stderr, w)
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Number < 1 {
		issues = append(issues, "number must be >= 1")
	}
	if c.MaxPerFolder < 1 {
		issues = append(issues, "max-per-folder must be >= 1")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.MaxConflictRetries < 0 {
		issues = append(issues, "max-conflict-retries must be >= 0")
	}
	if c.Contentious.Concurrency < 0 {
		issues = append(issues, "contentious concurrency must be >= 0")
	}
	if c.Contentious.Number < 0 {
		issues = append(issues, "contentious number must be >= 0")
	}

	seen := make(map[scenario.Kind]bool, len(c.Scenarios))
	for _, name := range c.Scenarios {
		kind, err := scenario.Parse(name)
		if err != nil {
			issues = append(issues, fmt.Sprintf("unknown scenario %q (supported: %s)", name, strings.Join(KnownScenarios, ", ")))
			continue
		}
		if seen[kind] {
			issues = append(issues, fmt.Sprintf("scenario %q selected more than once", name))
		}
		seen[kind] = true
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}
	if p := strings.ToLower(c.Tracing.Protocol); p != "" && p != "grpc" && p != "http" {
		issues = append(issues, fmt.Sprintf("tracing protocol %q must be grpc or http", c.Tracing.Protocol))
	}

	for _, key := range sortedKeys(c.Labels) {
		if strings.TrimSpace(key) == "" {
			issues = append(issues, "label keys cannot be empty")
			continue
		}
		if !labelName.MatchString(key) {
			issues = append(issues, fmt.Sprintf("label %q must match %s", key, labelName.String()))
			continue
		}
		if reservedLabels[key] {
			issues = append(issues, fmt.Sprintf("label %q is reserved for metrics series", key))
		}
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// Warnings returns advisories about settings that are valid but risky.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High concurrency configured (%d workers). Ensure you have authorization to test the target system.", c.Concurrency))
	}
	if c.MaxConflictRetries == 0 && c.selects(scenario.ContentiousUpdate) {
		warnings = append(warnings, "WARNING: conflict retries are unbounded; a service that always answers 409 will stall contentious-update workers even when --rate is set (see --max-conflict-retries).")
	}
	return warnings
}

// selects reports whether kind runs, counting an empty selection as all.
func (c Config) selects(kind scenario.Kind) bool {
	if len(c.Scenarios) == 0 {
		return true
	}
	for _, name := range c.Scenarios {
		if k, err := scenario.Parse(name); err == nil && k == kind {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
