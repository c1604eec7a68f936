package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/torosent/glt/internal/runner"
)

const lockRetryDelay = 50 * time.Millisecond

// ResultsFile is the persisted record of a suite run, keyed by scenario slug.
type ResultsFile struct {
	RunID         string                   `json:"run_id" yaml:"run_id"`
	Configuration map[string]interface{}   `json:"configuration" yaml:"configuration"`
	Data          map[string]runner.Record `json:"data" yaml:"data"`
}

// NewResultsFile collects the records of runs. A scenario that ran more than
// once keeps its last record.
func NewResultsFile(runID string, configuration map[string]interface{}, runs []runner.Result) ResultsFile {
	if configuration == nil {
		configuration = map[string]interface{}{}
	}
	data := make(map[string]runner.Record, len(runs))
	for _, run := range runs {
		data[run.Scenario.Slug()] = run.Record()
	}
	return ResultsFile{RunID: runID, Configuration: configuration, Data: data}
}

// WriteResults encodes results to path, as YAML when the extension is
// .yaml or .yml and as JSON otherwise. Concurrent writers of the same path
// are serialized with a lock file next to it, and the file is replaced
// atomically.
func WriteResults(ctx context.Context, path string, results ResultsFile) error {
	encoded, err := encodeResults(path, results)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock results file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock results file: %s is busy", path)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("write results file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close results file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace results file: %w", err)
	}
	return nil
}

// ReadResults decodes a file written by WriteResults.
func ReadResults(path string) (ResultsFile, error) {
	var results ResultsFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return results, err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(raw, &results)
	} else {
		err = json.Unmarshal(raw, &results)
	}
	if err != nil {
		return results, fmt.Errorf("decode %s: %w", path, err)
	}
	return results, nil
}

func encodeResults(path string, results ResultsFile) ([]byte, error) {
	if isYAML(path) {
		encoded, err := yaml.Marshal(results)
		if err != nil {
			return nil, fmt.Errorf("encode results as yaml: %w", err)
		}
		return encoded, nil
	}
	encoded, err := json.MarshalIndent(results, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode results as json: %w", err)
	}
	return append(encoded, '\n'), nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
