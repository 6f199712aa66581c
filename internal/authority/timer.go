package authority

import (
	"sync"
	"time"
)

// Timer starts deadlines. The returned channel is closed when the deadline
// expires; stop releases it early and is safe to call more than once.
type Timer interface {
	Start(d time.Duration) (done <-chan struct{}, stop func())
}

// RealTimer is a Timer backed by the runtime timer.
type RealTimer struct{}

// Start implements Timer.
func (RealTimer) Start(d time.Duration) (<-chan struct{}, func()) {
	ch := make(chan struct{})
	var once sync.Once
	t := time.AfterFunc(d, func() {
		once.Do(func() { close(ch) })
	})
	return ch, func() { t.Stop() }
}
