package tui

import "sync"

// Track is the terminal scrollbar. The controller pushes positions into it
// and the view reads them back.
type Track struct {
	mu  sync.Mutex
	pos int64
	max int64
}

// NewTrack creates a track for a page of maxScroll pixels.
func NewTrack(maxScroll int64) *Track {
	return &Track{max: maxScroll}
}

// SetPosition implements scroll.Scrollbar.
func (t *Track) SetPosition(pos int64) {
	t.mu.Lock()
	t.pos = pos
	t.mu.Unlock()
}

// Position returns the last position pushed by the controller.
func (t *Track) Position() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

// ThumbRow maps the position onto one of rows track cells.
func (t *Track) ThumbRow(rows int) int {
	if rows <= 1 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.max <= 0 {
		return 0
	}
	row := int(t.pos * int64(rows-1) / t.max)
	return max(0, min(row, rows-1))
}
