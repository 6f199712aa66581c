package scroll

import (
	"github.com/roach88/synthscroll/internal/wire"
)

// window is the deck geometry as last announced.
type window struct {
	offsetTop int64
	length    int64
	known     bool
}

// end is the virtual coordinate where the animation window closes.
func (w window) end() int64 {
	return w.offsetTop + w.length
}

// virtualToPage maps a coordinate of the virtual range (page range plus
// animation length) onto the page. Targets inside the animation window
// land on the entry offset.
func (w window) virtualToPage(v int64) int64 {
	if !w.known {
		return v
	}
	switch {
	case v <= w.offsetTop:
		return v
	case v < w.end():
		return w.offsetTop
	default:
		return v - w.length
	}
}

// snap keeps a move on the side of the entry offset the phase says it is
// on. It returns pos unchanged when no boundary is crossed.
func (w window) snap(phase wire.Phase, from, pos int64) int64 {
	if !w.known {
		return pos
	}
	switch phase {
	case wire.PhaseBefore:
		if from <= w.offsetTop && pos > w.offsetTop {
			return w.offsetTop
		}
	case wire.PhaseAfter:
		if from >= w.offsetTop && pos < w.offsetTop {
			return w.offsetTop
		}
	}
	return pos
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
