package deck

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/synthscroll/internal/bus"
	"github.com/roach88/synthscroll/internal/wire"
)

// Runtime connects an Animator to a bus.
//
// Thread-safety model:
//   - Start(), Stop(), Announce(), SetFreeScrolling(), State(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// All animator mutations happen under mu, either in the Run loop or, for
// inline runtimes, on the publisher's goroutine.
type Runtime struct {
	bus     bus.Bus
	inline  bool
	mailbox *bus.Mailbox

	mu   sync.Mutex
	anim *Animator
	sub  *bus.Subscription

	handled int64
	dropped int64
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithInline applies proposals on the publisher's goroutine. The status is
// published before the proposal's Publish call returns.
func WithInline() RuntimeOption {
	return func(r *Runtime) {
		r.inline = true
	}
}

// NewRuntime creates a runtime for a. Call Start to subscribe.
func NewRuntime(b bus.Bus, a *Animator, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		bus:     b,
		anim:    a,
		mailbox: bus.NewMailbox(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start subscribes to proposals and announces the deck geometry.
func (r *Runtime) Start() {
	r.mu.Lock()
	if r.sub == nil {
		handler := r.mailbox.Enqueue
		if r.inline {
			handler = r.process
		}
		r.sub = r.bus.Subscribe(wire.TopicScrollProposal, handler)
	}
	r.mu.Unlock()

	slog.Info("deck runtime started", "deck", r.anim.id, "inline", r.inline)
	r.announce(true)
}

// Run applies queued proposals until ctx is cancelled or Stop is called.
//
// ERROR HANDLING: an undecodable proposal is logged and dropped without a
// reply; the driver's timeout covers it.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		env, ok := r.mailbox.TryDequeue()
		if ok {
			r.process(env)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("deck runtime stopping: context cancelled", "deck", r.anim.id)
			r.Stop()
			return ctx.Err()

		case <-r.mailbox.Wait():
			if r.mailbox.Closed() && r.mailbox.Len() == 0 {
				slog.Info("deck runtime stopping: mailbox closed", "deck", r.anim.id)
				return nil
			}
		}
	}
}

// Stop unsubscribes and closes the mailbox, which ends Run.
func (r *Runtime) Stop() {
	r.mu.Lock()
	sub := r.sub
	r.sub = nil
	r.mu.Unlock()

	sub.Unsubscribe()
	r.mailbox.Close()
}

// process applies one proposal envelope and publishes the reply.
func (r *Runtime) process(env bus.Envelope) {
	status, err := r.apply(env)
	if err != nil {
		slog.Error("dropping proposal",
			"deck", r.anim.id,
			"bus_seq", env.Seq,
			"error", err,
		)
		return
	}

	payload, err := status.Encode()
	if err != nil {
		slog.Error("encode authority status", "deck", r.anim.id, "seq", status.InReplyTo, "error", err)
		return
	}
	r.bus.Publish(wire.TopicAuthorityStatus, payload)
}

func (r *Runtime) apply(env bus.Envelope) (wire.AuthorityStatus, error) {
	p, err := wire.DecodeProposal(env.Payload)
	if err != nil {
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		return wire.AuthorityStatus{}, &DeckError{
			Code:    ErrCodeBadPayload,
			Message: fmt.Sprintf("decode proposal: %v", err),
			Card:    -1,
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled++
	return r.anim.Handle(p), nil
}

// Announce publishes the deck geometry. Called whenever the layout or
// policy changes; Start announces with the started flag set.
func (r *Runtime) Announce() {
	r.announce(false)
}

func (r *Runtime) announce(started bool) {
	r.mu.Lock()
	g := r.anim.Geometry()
	r.mu.Unlock()
	g.Started = started

	payload, err := g.Encode()
	if err != nil {
		slog.Error("encode geometry update", "deck", r.anim.id, "error", err)
		return
	}
	slog.Debug("announcing deck geometry",
		"deck", r.anim.id,
		"extra_page_height", g.ExtraPageHeight,
		"offset_top", g.OffsetTopBlocker,
		"free_scrolling", g.FreeScrolling,
		"started", started,
	)
	r.bus.Publish(wire.TopicGeometryUpdate, payload)
}

// SetFreeScrolling changes the click policy and re-announces the geometry.
func (r *Runtime) SetFreeScrolling(on bool) {
	r.mu.Lock()
	r.anim.SetFreeScrolling(on)
	r.mu.Unlock()
	r.Announce()
}

// Restore aligns the deck with a restored driver session and publishes the
// new phase as an unsolicited status (inReplyTo 0) so the message log
// records the jump.
func (r *Runtime) Restore(phase wire.Phase) {
	r.mu.Lock()
	r.anim.Restore(phase)
	status := wire.AuthorityStatus{BlockedStatus: r.anim.Phase(), BlockerElementID: r.anim.id}
	r.mu.Unlock()
	slog.Info("deck restored", "deck", r.anim.id, "phase", phase.String())

	payload, err := status.Encode()
	if err != nil {
		slog.Error("encode authority status", "deck", r.anim.id, "error", err)
		return
	}
	r.bus.Publish(wire.TopicAuthorityStatus, payload)
}

// State returns a copy of the animator's state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.anim.State()
}

// Stats returns how many proposals were handled and dropped.
func (r *Runtime) Stats() (handled, dropped int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handled, r.dropped
}
