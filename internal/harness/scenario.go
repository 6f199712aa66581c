package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/synthscroll/internal/input"
	"github.com/roach88/synthscroll/internal/wire"
)

// Scenario is a scripted input sequence with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. Used as the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config lists CUE files to compile. Paths are relative to the scenario
	// file location. Empty means config.Default().
	Config []string `yaml:"config,omitempty"`

	// FreeScrolling overrides the deck's click policy when set.
	FreeScrolling *bool `yaml:"free_scrolling,omitempty"`

	// DropReplies lists 1-based proposal numbers whose reply is lost.
	DropReplies []int `yaml:"drop_replies,omitempty"`

	// Events is the input sequence.
	Events []EventStep `yaml:"events"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// EventStep is one raw input event, optionally repeated.
type EventStep struct {
	// Kind is an input kind name: wheel, touchstart, touchmove, touchend,
	// pointerdown, pointermove, pointerup, click.
	Kind string `yaml:"kind"`

	// Delta is the wheel deltaY.
	Delta float64 `yaml:"delta,omitempty"`

	// Y is the touch or track coordinate.
	Y float64 `yaml:"y,omitempty"`

	// Repeat sends the event this many times. Zero means once.
	Repeat int `yaml:"repeat,omitempty"`

	// Expect is checked after the last repetition.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect is the expected outcome of one step.
type StepExpect struct {
	Phase    string `yaml:"phase,omitempty"`
	Position *int64 `yaml:"position,omitempty"`
	TimedOut *bool  `yaml:"timed_out,omitempty"`
}

// Assertion validates the outcome of the whole run.
type Assertion struct {
	// Type specifies the assertion type; see the Assert* constants.
	Type string `yaml:"type"`

	// Value is the expected number (final_position, timeout_count,
	// phase_count, message_count).
	Value *int64 `yaml:"value,omitempty"`

	// Phase is the expected phase name (final_phase, phase_count).
	Phase string `yaml:"phase,omitempty"`

	// Values are the expected card translations (card_translations).
	Values []int64 `yaml:"values,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalPosition    = "final_position"
	AssertFinalPhase       = "final_phase"
	AssertCardTranslations = "card_translations"
	AssertTimeoutCount     = "timeout_count"
	AssertPhaseCount       = "phase_count"
	AssertMessageCount     = "message_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Config paths are resolved relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, p := range scenario.Config {
		if !filepath.IsAbs(p) {
			scenario.Config[i] = filepath.Join(base, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, p := range s.Config {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", p)
		}
	}

	for i, n := range s.DropReplies {
		if n < 1 {
			return fmt.Errorf("drop_replies[%d]: proposal numbers start at 1", i)
		}
	}

	for i, ev := range s.Events {
		if ev.Kind == "" {
			return fmt.Errorf("events[%d]: kind is required", i)
		}
		if _, err := input.ParseKind(ev.Kind); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
		if ev.Repeat < 0 {
			return fmt.Errorf("events[%d]: repeat must be non-negative", i)
		}
		if ev.Expect != nil && ev.Expect.Phase != "" {
			if _, err := wire.ParsePhase(ev.Expect.Phase); err != nil {
				return fmt.Errorf("events[%d].expect: %w", i, err)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalPosition, AssertTimeoutCount, AssertMessageCount:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertFinalPhase:
		if _, err := wire.ParsePhase(a.Phase); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertPhaseCount:
		if _, err := wire.ParsePhase(a.Phase); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Value == nil || *a.Value < 0 {
			return fmt.Errorf("assertions[%d]: value must be non-negative for phase_count", index)
		}
	case AssertCardTranslations:
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: values is required for card_translations", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
