package config

import (
	"time"
)

// Wheel modes.
const (
	// WheelRaw uses the wheel event's deltaY verbatim.
	WheelRaw = "raw"
	// WheelStepped uses sign(deltaY) * ScrollStep.
	WheelStepped = "stepped"
)

// Config is the compiled, immutable process configuration.
type Config struct {
	Deck      Deck
	Constants Constants
	Timeouts  Timeouts
	Viewport  Viewport
}

// Deck describes the card stack.
type Deck struct {
	ID            string
	OffsetTop     int64
	FreeScrolling bool
	CardHeights   []int64
}

// Constants are the geometry and input-scaling constants.
type Constants struct {
	Gap         int64
	TopDistance int64
	DeltaMin    int64
	DeltaMax    int64
	ScrollStep  int64
	TouchStep   int64
	WheelMode   string
}

// Timeouts are the proposal reply windows per input kind.
type Timeouts struct {
	Wheel time.Duration
	Touch time.Duration
	Drag  time.Duration
	Click time.Duration
}

// Viewport is the scroll range the driver manages, excluding the virtual
// room consumed by the deck animation.
type Viewport struct {
	MaxScroll   int64
	TrackHeight int64
}

// Default returns the recommended constants with a three-card sample deck.
func Default() Config {
	return Config{
		Deck: Deck{
			ID:          "deck",
			OffsetTop:   600,
			CardHeights: []int64{200, 150, 100},
		},
		Constants: Constants{
			Gap:         10,
			TopDistance: 40,
			DeltaMin:    10,
			DeltaMax:    100,
			ScrollStep:  24,
			TouchStep:   3,
			WheelMode:   WheelRaw,
		},
		Timeouts: Timeouts{
			Wheel: 20 * time.Millisecond,
			Touch: 20 * time.Millisecond,
			Drag:  20 * time.Millisecond,
			Click: 200 * time.Millisecond,
		},
		Viewport: Viewport{
			MaxScroll:   3000,
			TrackHeight: 600,
		},
	}
}

// CardHeights returns a copy of the deck's card heights.
func (c Config) CardHeights() []int64 {
	return append([]int64(nil), c.Deck.CardHeights...)
}
