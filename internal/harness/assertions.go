package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Trace    []TraceStep // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, s := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %+d -> %s @%d", s.Step, s.EvType, s.Delta, s.Phase, s.Position)
			if s.TimedOut {
				buf.WriteString(" (timed out)")
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(r *Result, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: r.Trace}
	}

	switch a.Type {
	case AssertFinalPosition:
		if r.Position != *a.Value {
			return fail(fmt.Sprintf("position %d", *a.Value), fmt.Sprintf("position %d", r.Position))
		}

	case AssertFinalPhase:
		if r.Phase != a.Phase {
			return fail("phase "+a.Phase, "phase "+r.Phase)
		}

	case AssertCardTranslations:
		if !equalInts(r.Translations, a.Values) {
			return fail(fmt.Sprintf("translations %v", a.Values), fmt.Sprintf("translations %v", r.Translations))
		}

	case AssertTimeoutCount:
		if r.Timeouts != *a.Value {
			return fail(fmt.Sprintf("%d timeouts", *a.Value), fmt.Sprintf("%d timeouts", r.Timeouts))
		}

	case AssertPhaseCount:
		var n int64
		for _, s := range r.Trace {
			if s.Phase == a.Phase {
				n++
			}
		}
		if n != *a.Value {
			return fail(fmt.Sprintf("%d proposals answered %s", *a.Value, a.Phase), fmt.Sprintf("%d", n))
		}

	case AssertMessageCount:
		if r.Messages != *a.Value {
			return fail(fmt.Sprintf("%d messages", *a.Value), fmt.Sprintf("%d messages", r.Messages))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
