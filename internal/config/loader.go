package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Default returns a Config populated with the flag defaults.
func Default() *Config {
	return &Config{
		TargetURL:    DefaultTargetURL,
		Container:    DefaultContainer,
		Auth:         AuthConfig{Username: DefaultUsername, Password: DefaultPassword},
		Concurrency:  DefaultConcurrency,
		Number:       DefaultNumber,
		MaxPerFolder: DefaultMaxPerFolder,
		Timeout:      DefaultTimeout,
		Contentious: ContentiousConfig{
			Concurrency: DefaultContentiousConcurrency,
			Number:      DefaultContentiousNumber,
		},
		Labels:  map[string]string{},
		Tracing: TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.Container = strings.Trim(strings.TrimSpace(cfg.Container), "/")
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "container"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("container: %w", err)
		}
		if val != "" {
			cfg.Container = val
		}
	}

	if raw, ok := lookupSetting(settings, "auth"); ok {
		auth, err := parseAuth(raw, cfg.Auth)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		cfg.Auth = auth
	}

	ints := []struct {
		dst  *int
		name string
		keys []string
	}{
		{&cfg.Concurrency, "concurrency", []string{"concurrency"}},
		{&cfg.Number, "number", []string{"number"}},
		{&cfg.MaxPerFolder, "maxPerFolder", []string{"maxperfolder", "max_per_folder", "max-per-folder"}},
		{&cfg.Rate, "rate", []string{"rate"}},
		{&cfg.MaxConflictRetries, "maxConflictRetries", []string{"maxconflictretries", "max_conflict_retries", "max-conflict-retries"}},
	}
	for _, item := range ints {
		raw, ok := lookupSetting(settings, item.keys...)
		if !ok {
			continue
		}
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", item.name, err)
		}
		*item.dst = val
	}

	if raw, ok := lookupSetting(settings, "seed"); ok {
		val, err := asInt64(raw)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "scenarios", "scenario"); ok {
		val, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("scenarios: %w", err)
		}
		cfg.Scenarios = normalizeScenarios(val)
	}

	bools := []struct {
		dst  *bool
		name string
		keys []string
	}{
		{&cfg.SkipSetup, "skipSetup", []string{"skipsetup", "skip_setup", "skip-setup"}},
		{&cfg.JSONOutput, "jsonOutput", []string{"jsonoutput", "json_output", "json-output"}},
		{&cfg.Verbose, "verbose", []string{"verbose"}},
	}
	for _, item := range bools {
		raw, ok := lookupSetting(settings, item.keys...)
		if !ok {
			continue
		}
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", item.name, err)
		}
		*item.dst = val
	}

	if raw, ok := lookupSetting(settings, "resultsfile", "results_file", "results-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("resultsFile: %w", err)
		}
		cfg.ResultsFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "htmloutput", "html_output", "html-output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("htmlOutput: %w", err)
		}
		cfg.HTMLOutput = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "metricsfile", "metrics_file", "metrics-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("metricsFile: %w", err)
		}
		cfg.MetricsFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		val, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = val
	}

	if raw, ok := lookupSetting(settings, "labels"); ok {
		val, err := asStringMap(raw)
		if err != nil {
			return fmt.Errorf("labels: %w", err)
		}
		cfg.Labels = val
	}

	if raw, ok := lookupSetting(settings, "contentious"); ok {
		contentious, err := parseContentious(raw, cfg.Contentious)
		if err != nil {
			return fmt.Errorf("contentious: %w", err)
		}
		cfg.Contentious = contentious
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseAuth(value interface{}, base AuthConfig) (AuthConfig, error) {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return AuthConfig{}, err
	}
	for key, dst := range map[string]*string{
		"username": &base.Username,
		"password": &base.Password,
		"token":    &base.Token,
	} {
		raw, ok := settings[key]
		if !ok {
			continue
		}
		val, err := asString(raw)
		if err != nil {
			return AuthConfig{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = val
	}
	return base, nil
}

func parseContentious(value interface{}, base ContentiousConfig) (ContentiousConfig, error) {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return ContentiousConfig{}, err
	}
	if raw, ok := settings["concurrency"]; ok {
		val, err := asInt(raw)
		if err != nil {
			return ContentiousConfig{}, fmt.Errorf("concurrency: %w", err)
		}
		base.Concurrency = val
	}
	if raw, ok := settings["number"]; ok {
		val, err := asInt(raw)
		if err != nil {
			return ContentiousConfig{}, fmt.Errorf("number: %w", err)
		}
		base.Number = val
	}
	return base, nil
}

func parseTracing(value interface{}, base TracingConfig) (TracingConfig, error) {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		base.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		base.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		base.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "sample_rate", "samplerate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		base.SampleRate = val
	}
	if raw, ok := lookupSetting(settings, "service_name", "servicename", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		base.ServiceName = val
	}
	if raw, ok := lookupSetting(settings, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("propagate: %w", err)
		}
		base.Propagate = &val
	}
	return base, nil
}
