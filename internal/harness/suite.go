package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/crease/internal/store"
)

// ScenarioNotFoundError is returned when a suite path matches no scenario
// files.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("no scenario files found at %s", e.Path)
}

// FindScenarios returns the scenario files at path: the file itself, or
// every .yaml and .yml file directly inside a directory, sorted.
func FindScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var out []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		out = append(out, filepath.Join(path, e.Name()))
	}
	if len(out) == 0 {
		return nil, &ScenarioNotFoundError{Path: path}
	}
	sort.Strings(out)
	return out, nil
}

// SuiteResult summarizes a suite run.
type SuiteResult struct {
	TotalScenarios int            `json:"total_scenarios"`
	Passed         int            `json:"passed"`
	Failed         int            `json:"failed"`
	Failures       []SuiteFailure `json:"failures,omitempty"`
}

// SuiteFailure is one scenario that did not pass.
type SuiteFailure struct {
	ScenarioPath string   `json:"scenario_path"`
	Scenario     string   `json:"scenario,omitempty"`
	Errors       []string `json:"errors"`
}

func (r *SuiteResult) fail(path, name string, errs ...string) {
	r.Failed++
	r.Failures = append(r.Failures, SuiteFailure{ScenarioPath: path, Scenario: name, Errors: errs})
}

// RunSuite plays every scenario at path, each in its own database under
// workDir.
//
// For each scenario file:
//  1. Load and validate it
//  2. Open a fresh store
//  3. Run it
//  4. Record pass or failure
func RunSuite(ctx context.Context, path, workDir string, opts ...Option) (*SuiteResult, error) {
	paths, err := FindScenarios(path)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{}
	for i, p := range paths {
		result.TotalScenarios++

		sc, err := LoadScenario(p)
		if err != nil {
			result.fail(p, "", err.Error())
			continue
		}

		st, err := store.Open(filepath.Join(workDir, fmt.Sprintf("scenario-%03d.db", i+1)))
		if err != nil {
			return nil, fmt.Errorf("open scenario store: %w", err)
		}
		run, err := Run(ctx, sc, st, opts...)
		st.Close()
		if err != nil {
			result.fail(p, sc.Name, fmt.Sprintf("scenario execution failed: %v", err))
			continue
		}
		if !run.Pass {
			result.fail(p, sc.Name, run.Errors...)
			continue
		}
		result.Passed++
	}
	return result, nil
}
