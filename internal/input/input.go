// Package input turns raw device events into signed scroll deltas.
package input

import (
	"fmt"
	"math"

	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/wire"
)

// Kind identifies a raw input event.
type Kind int

const (
	KindWheel Kind = iota + 1
	KindTouchStart
	KindTouchMove
	KindTouchEnd
	KindPointerDown // scrollbar thumb grabbed
	KindPointerMove
	KindPointerUp
	KindClick // click on the scrollbar track
)

var kindNames = map[Kind]string{
	KindWheel:       "wheel",
	KindTouchStart:  "touchstart",
	KindTouchMove:   "touchmove",
	KindTouchEnd:    "touchend",
	KindPointerDown: "pointerdown",
	KindPointerMove: "pointermove",
	KindPointerUp:   "pointerup",
	KindClick:       "click",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts an event name back into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown input kind %q", s)
}

// Event is one raw input sample. DeltaY is used by wheel events, Y (pixels
// from the top of the touch surface or scrollbar track) by everything else.
type Event struct {
	Kind   Kind
	DeltaY float64
	Y      float64
}

// Geometry is what the normalizer needs from the external sizing
// collaborator at the moment an event is normalized.
type Geometry struct {
	Position    int64 // current page scroll position
	MaxScroll   int64 // page scroll range
	VirtualRoom int64 // extra scroll room consumed by the deck animation
	TrackHeight int64 // scrollbar track height
}

// Delta is a normalized event ready to be proposed.
type Delta struct {
	EvType string // one of the wire.Ev* constants
	Value  int64
}

// Normalizer converts events into deltas. It keeps the previous touch and
// pointer samples, so one Normalizer serves one input stream.
//
// Not safe for concurrent use.
type Normalizer struct {
	consts config.Constants

	touchActive bool
	lastTouchY  float64

	pointerPressed bool
	lastPointerY   float64
}

// NewNormalizer creates a normalizer using the given constants.
func NewNormalizer(consts config.Constants) *Normalizer {
	return &Normalizer{consts: consts}
}

// Normalize converts ev into a delta. The second result is false for events
// that only update rolling state (touch start, pointer down/up, a pointer
// move with no thumb held) and must not be proposed.
func (n *Normalizer) Normalize(ev Event, g Geometry) (Delta, bool) {
	switch ev.Kind {
	case KindWheel:
		var d int64
		if n.consts.WheelMode == config.WheelStepped {
			d = sign(ev.DeltaY) * n.consts.ScrollStep
		} else {
			d = round(ev.DeltaY)
		}
		return Delta{EvType: wire.EvWheel, Value: n.clamp(d)}, true

	case KindTouchStart:
		n.touchActive = true
		n.lastTouchY = ev.Y
		return Delta{}, false

	case KindTouchMove:
		if !n.touchActive {
			n.touchActive = true
			n.lastTouchY = ev.Y
			return Delta{}, false
		}
		d := round(float64(n.consts.TouchStep) * (n.lastTouchY - ev.Y))
		n.lastTouchY = ev.Y
		return Delta{EvType: wire.EvTouch, Value: n.clamp(d)}, true

	case KindTouchEnd:
		n.touchActive = false
		return Delta{}, false

	case KindPointerDown:
		n.pointerPressed = true
		n.lastPointerY = ev.Y
		return Delta{}, false

	case KindPointerMove:
		if !n.pointerPressed || g.TrackHeight <= 0 {
			return Delta{}, false
		}
		span := float64(g.MaxScroll + g.VirtualRoom)
		d := round((ev.Y - n.lastPointerY) / float64(g.TrackHeight) * span)
		n.lastPointerY = ev.Y
		return Delta{EvType: wire.EvDrag, Value: n.clamp(d)}, true

	case KindPointerUp:
		n.pointerPressed = false
		return Delta{}, false

	case KindClick:
		if g.TrackHeight <= 0 {
			return Delta{}, false
		}
		target := ClickTarget(ev.Y, g)
		return Delta{EvType: wire.EvClick, Value: target - g.Position}, true

	default:
		return Delta{}, false
	}
}

// Dragging reports whether the scrollbar thumb is currently held.
func (n *Normalizer) Dragging() bool {
	return n.pointerPressed
}

// ClickTarget maps a track position onto the virtual scroll range, which is
// the page range plus the room consumed by the deck animation.
func ClickTarget(y float64, g Geometry) int64 {
	ratio := y / float64(g.TrackHeight)
	ratio = math.Max(0, math.Min(1, ratio))
	return round(ratio * float64(g.MaxScroll+g.VirtualRoom))
}

// clamp bounds |d| to [DeltaMin, DeltaMax] keeping its sign. Zero stays zero.
func (n *Normalizer) clamp(d int64) int64 {
	if d == 0 {
		return 0
	}
	s := int64(1)
	if d < 0 {
		s, d = -1, -d
	}
	if d < n.consts.DeltaMin {
		d = n.consts.DeltaMin
	}
	if d > n.consts.DeltaMax {
		d = n.consts.DeltaMax
	}
	return s * d
}

func round(f float64) int64 {
	return int64(math.Round(f))
}

func sign(f float64) int64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}
