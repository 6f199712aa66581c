package bus

import "sync"

// Mailbox is an unbounded FIFO of envelopes owned by one consumer.
//
// Enqueue is safe from any goroutine and never blocks, so it can be used
// directly as a Handler. The consumer drains it with TryDequeue and waits on
// Wait() between bursts, which keeps the wait context-aware.
type Mailbox struct {
	mu     sync.Mutex
	items  []Envelope
	closed bool
	signal chan struct{} // buffered, size 1; coalesces wakeups
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		items:  make([]Envelope, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends env. Envelopes arriving after Close are dropped.
func (m *Mailbox) Enqueue(env Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.items = append(m.items, env)

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// TryDequeue removes the oldest envelope without blocking.
func (m *Mailbox) TryDequeue() (Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) == 0 {
		return Envelope{}, false
	}
	env := m.items[0]
	// Release the payload reference held by the backing array.
	m.items[0] = Envelope{}
	if len(m.items) == 1 {
		m.items = m.items[:0]
	} else {
		m.items = m.items[1:]
	}
	return env, true
}

// Wait returns a channel that fires when envelopes may be available. It is
// closed by Close, so waiters wake on shutdown.
func (m *Mailbox) Wait() <-chan struct{} {
	return m.signal
}

// Len returns the number of queued envelopes.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops accepting envelopes and wakes all waiters.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	close(m.signal)
}

// Closed reports whether Close has been called.
func (m *Mailbox) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
