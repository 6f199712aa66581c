package wire

import "fmt"

// Phase is the deck's position in the scroll journey. It doubles as the
// authority status: only PhaseAnimating blocks raw scroll passthrough.
type Phase int

const (
	// PhaseBefore means the deck animation window has not been reached.
	PhaseBefore Phase = 0
	// PhaseAnimating means the deck owns scroll position.
	PhaseAnimating Phase = 1
	// PhaseAfter means the deck is fully collapsed and scrolled past.
	PhaseAfter Phase = 2
)

// String returns the lowercase phase name used in logs and traces.
func (p Phase) String() string {
	switch p {
	case PhaseBefore:
		return "before"
	case PhaseAnimating:
		return "animating"
	case PhaseAfter:
		return "after"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Valid reports whether p is one of the three defined phases.
func (p Phase) Valid() bool {
	return p >= PhaseBefore && p <= PhaseAfter
}

// Blocking reports whether the phase withholds scroll authority from the driver.
func (p Phase) Blocking() bool {
	return p == PhaseAnimating
}

// ParsePhase converts a phase name back into a Phase.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "before":
		return PhaseBefore, nil
	case "animating":
		return PhaseAnimating, nil
	case "after":
		return PhaseAfter, nil
	default:
		return 0, fmt.Errorf("unknown phase %q", s)
	}
}
