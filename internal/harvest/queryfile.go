// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/figure-harvest/pkg/types"
)

// JobFile is the on-disk representation of a batch of harvest queries.
// The operator can list several term/retmax pairs in one YAML file and
// run them back to back with a shared client and cache.
type JobFile struct {
	Jobs    []types.SearchQuery `yaml:"jobs"`
	Summary *JobSummary         `yaml:"summary,omitempty"`
}

// JobSummary records what a completed run produced, written back next to
// the jobs so a reader can tell which datasets came from which file.
type JobSummary struct {
	Datasets  []string  `yaml:"datasets"`
	Failures  int       `yaml:"failures"`
	Timestamp time.Time `yaml:"timestamp"`
}

// ReadJobFile loads a job file from disk and validates every query in it.
func ReadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	var jf JobFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("parsing job file: %w", err)
	}
	if len(jf.Jobs) == 0 {
		return nil, fmt.Errorf("job file %s lists no jobs", path)
	}
	for i, q := range jf.Jobs {
		if err := validateQuery(q); err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
	}
	return &jf, nil
}

// WriteJobFile saves the jobs, and the run summary if present, to path.
func WriteJobFile(path string, jf *JobFile) error {
	data, err := yaml.Marshal(jf)
	if err != nil {
		return fmt.Errorf("marshaling job file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
