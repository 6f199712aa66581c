package authority

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roach88/synthscroll/internal/bus"
	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/wire"
)

// Channel sends proposals and awaits authority decisions.
//
// Propose may be called from several goroutines; each call owns its own
// one-shot subscription, so overlapping proposals never consume each
// other's replies.
type Channel struct {
	bus      bus.Bus
	timer    Timer
	timeouts config.Timeouts
	clock    *bus.Clock

	stale    atomic.Int64
	timedOut atomic.Int64
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithTimer replaces the wall-clock timer.
func WithTimer(t Timer) ChannelOption {
	return func(c *Channel) {
		c.timer = t
	}
}

// WithClock sets the proposal sequence clock. Used when resuming from a log.
func WithClock(clock *bus.Clock) ChannelOption {
	return func(c *Channel) {
		c.clock = clock
	}
}

// New creates a Channel over b using the given reply windows.
func New(b bus.Bus, timeouts config.Timeouts, opts ...ChannelOption) *Channel {
	c := &Channel{
		bus:      b,
		timer:    RealTimer{},
		timeouts: timeouts,
		clock:    bus.NewClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Propose publishes a proposal and waits for the matching status.
//
// Returns *NoStatusError when the window elapses, or ctx.Err() when ctx is
// done first. A reply already delivered always wins over an expired
// deadline.
func (c *Channel) Propose(ctx context.Context, evType string, delta, scrollTop int64) (wire.AuthorityStatus, error) {
	p := wire.ScrollProposal{
		Seq:       c.clock.Next(),
		EvType:    evType,
		DeltaY:    delta,
		ScrollTop: scrollTop,
	}
	payload, err := p.Encode()
	if err != nil {
		return wire.AuthorityStatus{}, fmt.Errorf("encode proposal %d: %w", p.Seq, err)
	}

	reply := make(chan wire.AuthorityStatus, 1)
	sub := c.bus.SubscribeOnce(wire.TopicAuthorityStatus, func(env bus.Envelope) bool {
		st, err := wire.DecodeStatus(env.Payload)
		if err != nil {
			slog.Error("dropping undecodable authority status", "seq", p.Seq, "error", err)
			return false
		}
		if st.InReplyTo != p.Seq {
			if st.InReplyTo != 0 {
				c.stale.Add(1)
				slog.Debug("stale authority status dropped",
					"seq", p.Seq,
					"in_reply_to", st.InReplyTo,
				)
			}
			return false
		}
		select {
		case reply <- st:
		default:
		}
		return true
	})
	defer sub.Unsubscribe()

	slog.Debug("proposing",
		"seq", p.Seq,
		"ev_type", p.EvType,
		"delta_y", p.DeltaY,
		"scroll_top", p.ScrollTop,
	)
	c.bus.Publish(wire.TopicScrollProposal, payload)

	// Inline delivery may already have answered.
	select {
	case st := <-reply:
		return st, nil
	default:
	}

	timeout := c.TimeoutFor(evType)
	done, stop := c.timer.Start(timeout)
	defer stop()

	select {
	case st := <-reply:
		return st, nil
	case <-done:
		// A reply racing the deadline still counts.
		select {
		case st := <-reply:
			return st, nil
		default:
		}
		c.timedOut.Add(1)
		slog.Warn("authority status timed out",
			"seq", p.Seq,
			"ev_type", p.EvType,
			"timeout", timeout,
		)
		return wire.AuthorityStatus{}, &NoStatusError{Seq: p.Seq, EvType: evType, Timeout: timeout}
	case <-ctx.Done():
		return wire.AuthorityStatus{}, ctx.Err()
	}
}

// TimeoutFor returns the reply window for an event type. Discrete clicks get
// the long window, high-frequency inputs the short one.
func (c *Channel) TimeoutFor(evType string) time.Duration {
	switch evType {
	case wire.EvClick:
		return c.timeouts.Click
	case wire.EvTouch:
		return c.timeouts.Touch
	case wire.EvDrag:
		return c.timeouts.Drag
	default:
		return c.timeouts.Wheel
	}
}

// LastSeq returns the sequence number of the most recent proposal.
func (c *Channel) LastSeq() int64 {
	return c.clock.Current()
}

// StaleReplies returns how many replies to other proposals were dropped.
func (c *Channel) StaleReplies() int64 {
	return c.stale.Load()
}

// TimedOut returns how many proposals ended in NoStatusError.
func (c *Channel) TimedOut() int64 {
	return c.timedOut.Load()
}
