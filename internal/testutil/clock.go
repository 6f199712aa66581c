package testutil

import (
	"sync"
	"time"
)

// ManualTimer hands out deadlines that only expire when the test says so.
//
// It satisfies authority.Timer, letting tests simulate a dropped reply
// without waiting on the wall clock.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualTimer struct {
	mu         sync.Mutex
	pending    []*manualDeadline
	requested  []time.Duration
	autoExpire bool
}

type manualDeadline struct {
	d       time.Duration
	ch      chan struct{}
	stopped bool
	fired   bool
}

// NewManualTimer creates a timer whose deadlines never fire on their own.
func NewManualTimer() *ManualTimer {
	return &ManualTimer{}
}

// NewExpiredTimer creates a timer whose deadlines are already expired when
// started. Any wait that has no reply in hand times out immediately.
func NewExpiredTimer() *ManualTimer {
	return &ManualTimer{autoExpire: true}
}

// Start registers a deadline of duration d.
func (m *ManualTimer) Start(d time.Duration) (<-chan struct{}, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dl := &manualDeadline{d: d, ch: make(chan struct{})}
	m.requested = append(m.requested, d)
	if m.autoExpire {
		dl.fired = true
		close(dl.ch)
	} else {
		m.pending = append(m.pending, dl)
	}

	stop := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		dl.stopped = true
	}
	return dl.ch, stop
}

// Fire expires every deadline that is neither stopped nor already fired.
// Returns how many deadlines expired.
func (m *ManualTimer) Fire() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, dl := range m.pending {
		if dl.stopped || dl.fired {
			continue
		}
		dl.fired = true
		close(dl.ch)
		n++
	}
	m.pending = m.pending[:0]
	return n
}

// Pending returns the number of live deadlines.
func (m *ManualTimer) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, dl := range m.pending {
		if !dl.stopped && !dl.fired {
			n++
		}
	}
	return n
}

// Requested returns every duration passed to Start, in order.
func (m *ManualTimer) Requested() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.requested...)
}
