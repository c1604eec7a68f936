package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/torosent/glt/internal/scenario"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"hello", "hello"},
		{123, "123"},
		{true, "true"},
		{nil, ""},
		{[]byte("bytes"), "bytes"},
	}

	for _, tt := range tests {
		got, err := asString(tt.input)
		if err != nil {
			t.Errorf("asString(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		input interface{}
		want  int
	}{
		{123, 123},
		{"456", 456},
		{int64(789), 789},
		{float64(10.0), 10},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asInt(tt.input)
		if err != nil {
			t.Errorf("asInt(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		input interface{}
		want  bool
	}{
		{true, true},
		{"true", true},
		{"1", true},
		{false, false},
		{"false", false},
		{"0", false},
		{nil, false},
	}

	for _, tt := range tests {
		got, err := asBool(tt.input)
		if err != nil {
			t.Errorf("asBool(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asBool(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAsDuration(t *testing.T) {
	tests := []struct {
		input interface{}
		want  time.Duration
	}{
		{time.Second, time.Second},
		{"1m", time.Minute},
		{10, 10 * time.Second}, // int treated as seconds
		{1.5, 1500 * time.Millisecond},
		{" 250ms ", 250 * time.Millisecond},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asDuration(tt.input)
		if err != nil {
			t.Errorf("asDuration(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asDuration(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAsStringSliceKeepsSingleStringWhole(t *testing.T) {
	got, err := asStringSlice("read.requests:rate > 10")
	if err != nil {
		t.Fatalf("asStringSlice() error = %v", err)
	}
	if len(got) != 1 || got[0] != "read.requests:rate > 10" {
		t.Errorf("asStringSlice() = %q, want one element", got)
	}

	got, err = asStringSlice([]interface{}{"crawl", "read"})
	if err != nil {
		t.Fatalf("asStringSlice() error = %v", err)
	}
	if len(got) != 2 || got[1] != "read" {
		t.Errorf("asStringSlice() = %q, want [crawl read]", got)
	}
}

func TestParserErrors(t *testing.T) {
	if _, err := asInt("many"); err == nil {
		t.Error("asInt(\"many\") expected error")
	}
	if _, err := asInt64([]string{"1"}); err == nil {
		t.Error("asInt64(slice) expected error")
	}
	if _, err := asBool("sometimes"); err == nil {
		t.Error("asBool(\"sometimes\") expected error")
	}
	if _, err := asDuration("soon"); err == nil {
		t.Error("asDuration(\"soon\") expected error")
	}
	if _, err := asStringMap(map[string]interface{}{" ": "x"}); err == nil {
		t.Error("asStringMap() expected error for blank key")
	}
	if _, err := toStringKeyMap([]string{"a"}); err == nil {
		t.Error("toStringKeyMap() expected error for non-map")
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := Default()
	settings := map[string]interface{}{
		"target":         "http://example.com/db",
		"concurrency":    10,
		"max_per_folder": "12",
		"timeout":        "5s",
		"seed":           42,
		"skip_setup":     "true",
		"auth": map[string]interface{}{
			"username": "user",
			"password": "pass",
		},
		"thresholds": []interface{}{"read.requests:rate > 10"},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}

	if cfg.TargetURL != "http://example.com/db" {
		t.Errorf("TargetURL = %q, want http://example.com/db", cfg.TargetURL)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want 10", cfg.Concurrency)
	}
	if cfg.MaxPerFolder != 12 {
		t.Errorf("MaxPerFolder = %d, want 12", cfg.MaxPerFolder)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if !cfg.SkipSetup {
		t.Errorf("SkipSetup = false, want true")
	}
	if cfg.Auth.Username != "user" || cfg.Auth.Password != "pass" {
		t.Errorf("Auth = %+v, want user/pass", cfg.Auth)
	}
	if len(cfg.Thresholds) != 1 || cfg.Thresholds[0] != "read.requests:rate > 10" {
		t.Errorf("Thresholds = %v", cfg.Thresholds)
	}
}

func TestApplyConfigSettingsRejectsBadTypes(t *testing.T) {
	cfg := Default()
	err := applyConfigSettings(cfg, map[string]interface{}{"number": "many"})
	if err == nil {
		t.Fatalf("applyConfigSettings() error = nil, want error")
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := Default()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)

	args := []string{
		"--concurrency=5",
		"--number=80",
		"--scenario=Crawl_And_Update,read",
		"--seed=7",
		"--tracing-propagate=false",
		"--html-output= report.html ",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.Number != 80 {
		t.Errorf("Number = %d, want 80", cfg.Number)
	}
	if len(cfg.Scenarios) != 2 || cfg.Scenarios[0] != scenario.CrawlAndUpdate.Slug() || cfg.Scenarios[1] != scenario.Read.Slug() {
		t.Errorf("Scenarios = %v", cfg.Scenarios)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if cfg.Tracing.ShouldPropagate() {
		t.Errorf("ShouldPropagate() = true, want false")
	}
	if cfg.HTMLOutput != "report.html" {
		t.Errorf("HTMLOutput = %q, want report.html", cfg.HTMLOutput)
	}
	if cfg.MaxPerFolder != DefaultMaxPerFolder {
		t.Errorf("MaxPerFolder = %d, want untouched default", cfg.MaxPerFolder)
	}
}

func TestLoader_Load(t *testing.T) {
	loader := NewLoader()
	args := []string{
		"--target=http://example.com/db/",
		"--container=/bench/",
		"--concurrency=2",
	}

	cfg, err := loader.Load(args)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RootURL() != "http://example.com/db/bench" {
		t.Errorf("RootURL() = %q, want http://example.com/db/bench", cfg.RootURL())
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
	}
}
