package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/synthscroll/internal/wire"
)

// TraceSnapshot captures the trace and final card layout of a run.
// It is serialized as canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceStep
	Translations []int64
	Messages     int64
}

// toCanonicalMap converts the snapshot for wire.MarshalCanonical, which
// only handles maps, slices and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, step := range s.Trace {
		trace[i] = map[string]any{
			"step":      step.Step,
			"kind":      step.Kind,
			"ev_type":   step.EvType,
			"delta":     step.Delta,
			"phase":     step.Phase,
			"timed_out": step.TimedOut,
			"position":  step.Position,
		}
	}

	cards := make([]any, len(s.Translations))
	for i, v := range s.Translations {
		cards[i] = v
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"cards":         cards,
		"messages":      s.Messages,
	}
}

// Snapshot builds the canonical JSON snapshot of a result.
func Snapshot(name string, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Translations: result.Translations,
		Messages:     result.Messages,
	}
	return wire.MarshalCanonical(snap.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
