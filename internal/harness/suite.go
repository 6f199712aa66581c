package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SuiteResult summarizes a directory of scenario runs.
type SuiteResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Failures []SuiteFailure `json:"failures,omitempty"`
	Results  []NamedResult  `json:"results"`
}

// NamedResult pairs a scenario with its outcome.
type NamedResult struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
}

// SuiteFailure describes one scenario that failed to load, run or pass.
type SuiteFailure struct {
	Name         string `json:"name"`
	ScenarioPath string `json:"scenario_path"`
	Error        string `json:"error"`
}

// FindScenarioFiles returns the YAML files under dir whose base name
// (without extension) matches filter. An empty filter matches everything.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// RunSuite loads and runs every scenario under dir.
//
// A scenario that fails to load or execute counts as failed; the suite
// keeps going. The returned error is reserved for directory problems.
func RunSuite(dir, filter string) (*SuiteResult, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("scenarios directory: %w", err)
	}

	paths, err := FindScenarioFiles(dir, filter)
	if err != nil {
		return nil, err
	}

	suite := &SuiteResult{Results: []NamedResult{}}
	for _, path := range paths {
		suite.Total++
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		scenario, err := LoadScenario(path)
		if err != nil {
			suite.fail(name, path, fmt.Sprintf("failed to load scenario: %v", err))
			suite.Results = append(suite.Results, NamedResult{Name: name, Path: path})
			continue
		}
		name = scenario.Name

		result, err := Run(scenario)
		if err != nil {
			suite.fail(name, path, fmt.Sprintf("scenario execution failed: %v", err))
			suite.Results = append(suite.Results, NamedResult{Name: name, Path: path})
			continue
		}
		suite.Results = append(suite.Results, NamedResult{Name: name, Path: path, Result: result})

		if !result.Pass {
			suite.fail(name, path, fmt.Sprintf("scenario assertions failed: %v", result.Errors))
			continue
		}
		suite.Passed++
	}

	return suite, nil
}

func (s *SuiteResult) fail(name, path, msg string) {
	s.Failed++
	s.Failures = append(s.Failures, SuiteFailure{Name: name, ScenarioPath: path, Error: msg})
}
