package scroll

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/synthscroll/internal/authority"
	"github.com/roach88/synthscroll/internal/bus"
	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/input"
	"github.com/roach88/synthscroll/internal/wire"
)

// Proposer sends a proposal and waits for the authority decision.
// Implemented by *authority.Channel.
type Proposer interface {
	Propose(ctx context.Context, evType string, delta, scrollTop int64) (wire.AuthorityStatus, error)
}

// Scrollbar is the external collaborator that renders the position.
type Scrollbar interface {
	SetPosition(pos int64)
}

type nopScrollbar struct{}

func (nopScrollbar) SetPosition(int64) {}

// Result describes what one input event did.
type Result struct {
	// Proposed is false for events that only update normalizer state.
	Proposed bool
	EvType   string
	Delta    int64
	Status   wire.Phase
	// TimedOut is set when Status is a fallback, not a reply.
	TimedOut bool
	Position int64
}

// Controller owns the page scroll position.
//
// Thread-safety model:
//   - HandleInput(): serialized; one event's propose/apply cycle completes
//     before the next event is normalized
//   - Session(), Restore(), Close(): safe from any goroutine
//   - geometry updates arrive on the publisher's goroutine and never wait
//     on an in-flight HandleInput
type Controller struct {
	channel  Proposer
	bar      Scrollbar
	viewport config.Viewport

	mu      sync.Mutex
	norm    *input.Normalizer
	session Session

	geoMu  sync.Mutex
	win    window
	free   bool
	geoSub *bus.Subscription
}

// Option configures a Controller.
type Option func(*Controller)

// WithScrollbar sets the position collaborator.
func WithScrollbar(bar Scrollbar) Option {
	return func(c *Controller) {
		c.bar = bar
	}
}

// WithIDGenerator sets the session ID source. Default: UUIDv7Generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *Controller) {
		c.session.ID = gen.Generate()
	}
}

// New creates a controller at position 0 with no known status. It listens
// for geometry updates on b until Close.
func New(b bus.Bus, ch Proposer, cfg config.Config, opts ...Option) *Controller {
	c := &Controller{
		channel:  ch,
		bar:      nopScrollbar{},
		viewport: cfg.Viewport,
		norm:     input.NewNormalizer(cfg.Constants),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session.ID == "" {
		c.session.ID = UUIDv7Generator{}.Generate()
	}
	c.geoSub = b.Subscribe(wire.TopicGeometryUpdate, c.onGeometry)
	return c
}

// Close stops listening for geometry updates.
func (c *Controller) Close() {
	c.geoSub.Unsubscribe()
}

func (c *Controller) onGeometry(env bus.Envelope) {
	g, err := wire.DecodeGeometry(env.Payload)
	if err != nil {
		slog.Error("dropping geometry update", "bus_seq", env.Seq, "error", err)
		return
	}

	c.geoMu.Lock()
	c.win = window{offsetTop: g.OffsetTopBlocker, length: g.ExtraPageHeight, known: true}
	c.free = g.FreeScrolling
	c.geoMu.Unlock()

	slog.Debug("geometry updated",
		"offset_top", g.OffsetTopBlocker,
		"extra_page_height", g.ExtraPageHeight,
		"free_scrolling", g.FreeScrolling,
	)
}

func (c *Controller) geometry() (window, bool) {
	c.geoMu.Lock()
	defer c.geoMu.Unlock()
	return c.win, c.free
}

// HandleInput normalizes ev, proposes the delta and applies the resulting
// position. A missing reply is not an error; only ctx cancellation is.
func (c *Controller) HandleInput(ctx context.Context, ev input.Event) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	win, free := c.geometry()
	c.session.FreeScrolling = free
	pos := c.session.PageScrollPos

	d, ok := c.norm.Normalize(ev, input.Geometry{
		Position:    pos,
		MaxScroll:   c.viewport.MaxScroll,
		VirtualRoom: win.length,
		TrackHeight: c.viewport.TrackHeight,
	})
	if !ok {
		return Result{Status: c.session.LastStatus, Position: pos}, nil
	}

	res := Result{Proposed: true, EvType: d.EvType, Delta: d.Value}
	st, err := c.channel.Propose(ctx, d.EvType, d.Value, pos)
	switch {
	case err == nil:
		res.Status = st.BlockedStatus
	case authority.IsNoStatus(err):
		res.TimedOut = true
		res.Status = c.fallback()
		slog.Debug("authority fallback",
			"ev_type", d.EvType,
			"phase", res.Status.String(),
			"known", c.session.StatusKnown,
		)
	default:
		return Result{}, fmt.Errorf("propose %s: %w", d.EvType, err)
	}

	prevAnimating := c.session.StatusKnown && c.session.LastStatus == wire.PhaseAnimating
	res.Position = c.resolve(win, d, res.Status, prevAnimating, pos)

	c.session.PageScrollPos = res.Position
	c.session.LastStatus = res.Status
	c.session.StatusKnown = true
	c.bar.SetPosition(res.Position)
	return res, nil
}

// fallback is the status used when no reply arrived.
func (c *Controller) fallback() wire.Phase {
	if c.session.StatusKnown {
		return c.session.LastStatus
	}
	return wire.PhaseBefore
}

// resolve computes the new page position.
func (c *Controller) resolve(win window, d input.Delta, phase wire.Phase, prevAnimating bool, pos int64) int64 {
	if d.EvType == wire.EvClick {
		return c.resolveClick(win, phase, pos+d.Value)
	}

	if phase == wire.PhaseAnimating || prevAnimating {
		return win.offsetTop
	}

	// Drag deltas already span the virtual room; the page itself never
	// leaves [0, MaxScroll].
	naive := pos + d.Value
	next := clamp(naive, 0, c.viewport.MaxScroll)
	if next != naive {
		slog.Debug("scroll clamped", "naive", naive, "position", next, "max", c.viewport.MaxScroll)
	}
	return win.snap(phase, pos, next)
}

// resolveClick maps a virtual click target onto the page.
func (c *Controller) resolveClick(win window, phase wire.Phase, target int64) int64 {
	if phase == wire.PhaseAnimating {
		return win.offsetTop
	}

	page := clamp(win.virtualToPage(target), 0, c.viewport.MaxScroll)
	if !win.known {
		return page
	}
	switch phase {
	case wire.PhaseBefore:
		page = min(page, win.offsetTop)
	case wire.PhaseAfter:
		page = max(page, win.offsetTop)
	}
	return page
}

// Session returns a copy of the session state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	_, s.FreeScrolling = c.geometry()
	return s
}

// Restore replaces the session with a saved one and pushes its position to
// the scrollbar. This is the single restoration operation; the session ID
// is kept from s when set. Free scrolling stays governed by the deck.
func (c *Controller) Restore(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.ID == "" {
		s.ID = c.session.ID
	}
	s.PageScrollPos = clamp(s.PageScrollPos, 0, c.viewport.MaxScroll)
	c.session = s
	c.bar.SetPosition(s.PageScrollPos)

	slog.Info("session restored",
		"session_id", s.ID,
		"position", s.PageScrollPos,
		"phase", s.LastStatus.String(),
		"known", s.StatusKnown,
	)
}

// Dragging reports whether the scrollbar thumb is held.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.norm.Dragging()
}
