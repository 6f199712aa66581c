package scroll_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthscroll/internal/authority"
	"github.com/roach88/synthscroll/internal/bus"
	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/deck"
	"github.com/roach88/synthscroll/internal/input"
	"github.com/roach88/synthscroll/internal/scroll"
	"github.com/roach88/synthscroll/internal/testutil"
	"github.com/roach88/synthscroll/internal/wire"
)

type recordingBar struct {
	positions []int64
}

func (r *recordingBar) SetPosition(pos int64) {
	r.positions = append(r.positions, pos)
}

type proposal struct {
	evType    string
	delta     int64
	scrollTop int64
}

// fakeProposer answers proposals from a function and records them.
type fakeProposer struct {
	calls []proposal
	reply func(p proposal) (wire.AuthorityStatus, error)
}

func (f *fakeProposer) Propose(ctx context.Context, evType string, delta, scrollTop int64) (wire.AuthorityStatus, error) {
	p := proposal{evType, delta, scrollTop}
	f.calls = append(f.calls, p)
	return f.reply(p)
}

func always(phase wire.Phase) *fakeProposer {
	return &fakeProposer{reply: func(proposal) (wire.AuthorityStatus, error) {
		return wire.AuthorityStatus{BlockedStatus: phase}, nil
	}}
}

type fixture struct {
	bus  *bus.Broker
	deck *deck.Runtime
	ctrl *scroll.Controller
	bar  *recordingBar
	ch   *authority.Channel
}

// newFixture wires a controller to an inline deck over a real broker.
func newFixture(t *testing.T, free bool) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Deck.FreeScrolling = free

	b := bus.NewBroker()
	a, err := deck.New(cfg.Deck, cfg.Constants)
	require.NoError(t, err)

	f := &fixture{bus: b, bar: &recordingBar{}}
	f.ch = authority.New(b, cfg.Timeouts, authority.WithTimer(testutil.NewManualTimer()))
	f.ctrl = scroll.New(b, f.ch, cfg,
		scroll.WithScrollbar(f.bar),
		scroll.WithIDGenerator(testutil.NewFixedIDGenerator("session-1")),
	)
	f.deck = deck.NewRuntime(b, a, deck.WithInline())
	f.deck.Start()
	t.Cleanup(func() {
		f.deck.Stop()
		f.ctrl.Close()
	})
	return f
}

// newFake wires a controller to a fake proposer, with the default geometry
// announced.
func newFake(t *testing.T, p scroll.Proposer) (*scroll.Controller, *recordingBar) {
	t.Helper()
	b := bus.NewBroker()
	bar := &recordingBar{}
	ctrl := scroll.New(b, p, config.Default(), scroll.WithScrollbar(bar))
	t.Cleanup(ctrl.Close)
	announce(t, b, wire.GeometryUpdate{ExtraPageHeight: 350, OffsetTopBlocker: 600})
	return ctrl, bar
}

func announce(t *testing.T, b *bus.Broker, g wire.GeometryUpdate) {
	t.Helper()
	data, err := g.Encode()
	require.NoError(t, err)
	b.Publish(wire.TopicGeometryUpdate, data)
}

func wheelEv(dy float64) input.Event {
	return input.Event{Kind: input.KindWheel, DeltaY: dy}
}

func handle(t *testing.T, c *scroll.Controller, ev input.Event) scroll.Result {
	t.Helper()
	res, err := c.HandleInput(context.Background(), ev)
	require.NoError(t, err)
	return res
}

func TestHandleInput_ScrollThroughDeck(t *testing.T) {
	f := newFixture(t, false)

	steps := []struct {
		dy    float64
		pos   int64
		phase wire.Phase
	}{
		{100, 100, wire.PhaseBefore},
		{100, 200, wire.PhaseBefore},
		{100, 300, wire.PhaseBefore},
		{100, 400, wire.PhaseBefore},
		{100, 500, wire.PhaseBefore},
		{100, 600, wire.PhaseBefore},
		{100, 600, wire.PhaseAnimating},
		{100, 600, wire.PhaseAnimating},
		{100, 600, wire.PhaseAnimating},
		{100, 600, wire.PhaseAfter}, // authority handed back, delta consumed
		{100, 700, wire.PhaseAfter},
		{-100, 600, wire.PhaseAfter},
		{-100, 600, wire.PhaseAnimating},
	}
	for i, s := range steps {
		res := handle(t, f.ctrl, wheelEv(s.dy))
		assert.Equal(t, s.phase, res.Status, "step %d", i)
		assert.Equal(t, s.pos, res.Position, "step %d", i)
		assert.False(t, res.TimedOut, "step %d", i)
	}

	assert.Equal(t, int64(600), f.ctrl.Session().PageScrollPos)
	assert.Len(t, f.bar.positions, len(steps))
	assert.Equal(t, wire.PhaseAnimating, f.deck.State().Phase)
}

func TestHandleInput_NoReplyFallsBackToBefore(t *testing.T) {
	b := bus.NewBroker()
	cfg := config.Default()
	ch := authority.New(b, cfg.Timeouts, authority.WithTimer(testutil.NewExpiredTimer()))
	ctrl := scroll.New(b, ch, cfg)
	defer ctrl.Close()

	res := handle(t, ctrl, wheelEv(50))
	assert.True(t, res.TimedOut)
	assert.Equal(t, wire.PhaseBefore, res.Status)
	assert.Equal(t, int64(50), res.Position)
	assert.Equal(t, int64(1), ch.TimedOut())
}

func TestHandleInput_NoReplyKeepsLastStatus(t *testing.T) {
	n := 0
	p := &fakeProposer{reply: func(proposal) (wire.AuthorityStatus, error) {
		n++
		if n == 1 {
			return wire.AuthorityStatus{BlockedStatus: wire.PhaseAnimating}, nil
		}
		return wire.AuthorityStatus{}, &authority.NoStatusError{Seq: int64(n)}
	}}
	ctrl, _ := newFake(t, p)

	handle(t, ctrl, wheelEv(100))
	res := handle(t, ctrl, wheelEv(100))
	assert.True(t, res.TimedOut)
	assert.Equal(t, wire.PhaseAnimating, res.Status)
	assert.Equal(t, int64(600), res.Position)
}

func TestHandleInput_BoundarySnap(t *testing.T) {
	ctrl, _ := newFake(t, always(wire.PhaseBefore))
	ctrl.Restore(scroll.Session{PageScrollPos: 550})

	res := handle(t, ctrl, wheelEv(100))
	assert.Equal(t, int64(600), res.Position, "cannot skip past the deck while before")

	ctrl2, _ := newFake(t, always(wire.PhaseAfter))
	ctrl2.Restore(scroll.Session{PageScrollPos: 650})
	res = handle(t, ctrl2, wheelEv(-100))
	assert.Equal(t, int64(600), res.Position, "cannot skip back over the deck while after")
}

func TestHandleInput_ClampsToPageRange(t *testing.T) {
	ctrl, _ := newFake(t, always(wire.PhaseAfter))
	ctrl.Restore(scroll.Session{PageScrollPos: 2950})

	res := handle(t, ctrl, wheelEv(100))
	assert.Equal(t, int64(3000), res.Position)

	ctrl2, _ := newFake(t, always(wire.PhaseBefore))
	res = handle(t, ctrl2, wheelEv(-100))
	assert.Equal(t, int64(0), res.Position)
}

func TestHandleInput_DragStaysInPageRange(t *testing.T) {
	p := always(wire.PhaseAfter)
	ctrl, bar := newFake(t, p)
	ctrl.Restore(scroll.Session{PageScrollPos: 2990})

	res := handle(t, ctrl, input.Event{Kind: input.KindPointerDown, Y: 100})
	assert.False(t, res.Proposed)
	assert.True(t, ctrl.Dragging())

	// 18/600 of the 3350px virtual range is 100.
	res = handle(t, ctrl, input.Event{Kind: input.KindPointerMove, Y: 118})
	require.True(t, res.Proposed)
	assert.Equal(t, wire.EvDrag, res.EvType)
	assert.Equal(t, int64(100), res.Delta)
	assert.Equal(t, int64(3000), res.Position)

	handle(t, ctrl, input.Event{Kind: input.KindPointerUp})
	assert.False(t, ctrl.Dragging())
	assert.Len(t, p.calls, 1)
	assert.Equal(t, int64(3000), ctrl.Session().PageScrollPos)
	assert.Equal(t, []int64{2990, 3000}, bar.positions)
}

func TestHandleInput_WheelAfterDragToBottomNeverMovesBack(t *testing.T) {
	ctrl, bar := newFake(t, always(wire.PhaseAfter))
	ctrl.Restore(scroll.Session{PageScrollPos: 2990})

	handle(t, ctrl, input.Event{Kind: input.KindPointerDown, Y: 100})
	handle(t, ctrl, input.Event{Kind: input.KindPointerMove, Y: 118})
	handle(t, ctrl, input.Event{Kind: input.KindPointerUp})
	before := ctrl.Session().PageScrollPos

	res := handle(t, ctrl, wheelEv(10))
	require.True(t, res.Proposed)
	assert.GreaterOrEqual(t, res.Position, before)
	assert.Equal(t, int64(3000), res.Position)

	for i := 1; i < len(bar.positions); i++ {
		assert.GreaterOrEqual(t, bar.positions[i], bar.positions[i-1], "scrollbar moved backward at %d", i)
	}
}

func TestHandleInput_ClickInsideWindowWithFreeScrolling(t *testing.T) {
	f := newFixture(t, true)

	// 150/600 of the 3350px virtual range is 838, inside (600, 950).
	res := handle(t, f.ctrl, input.Event{Kind: input.KindClick, Y: 150})
	assert.Equal(t, wire.EvClick, res.EvType)
	assert.Equal(t, int64(838), res.Delta)
	assert.Equal(t, wire.PhaseBefore, res.Status)
	assert.Equal(t, int64(600), res.Position)
	assert.True(t, f.ctrl.Session().FreeScrolling)
}

func TestHandleInput_ClickPastWindowWithFreeScrolling(t *testing.T) {
	f := newFixture(t, true)

	res := handle(t, f.ctrl, input.Event{Kind: input.KindClick, Y: 300})
	assert.Equal(t, wire.PhaseAfter, res.Status)
	assert.Equal(t, int64(1675-350), res.Position)
	for _, c := range f.deck.State().Cards {
		assert.Equal(t, c.FinalTranslation, c.Translation)
	}
}

func TestHandleInput_ClickInterceptedWithoutFreeScrolling(t *testing.T) {
	f := newFixture(t, false)

	res := handle(t, f.ctrl, input.Event{Kind: input.KindClick, Y: 300})
	assert.Equal(t, wire.PhaseAnimating, res.Status)
	assert.Equal(t, int64(600), res.Position)
	assert.Equal(t, int64(0), f.deck.State().Accumulator)

	// A click back above the deck leaves through the top.
	res = handle(t, f.ctrl, input.Event{Kind: input.KindClick, Y: 30})
	assert.Equal(t, wire.PhaseBefore, res.Status)
	assert.Equal(t, int64(168), res.Position)
}

func TestHandleInput_ZeroDeltaChangesNothing(t *testing.T) {
	f := newFixture(t, false)
	handle(t, f.ctrl, wheelEv(100))
	before := f.ctrl.Session()
	deckBefore := f.deck.State()

	res := handle(t, f.ctrl, wheelEv(0))
	assert.True(t, res.Proposed)
	assert.Equal(t, int64(0), res.Delta)
	assert.Equal(t, before, f.ctrl.Session())
	assert.Equal(t, deckBefore, f.deck.State())
}

func TestHandleInput_NonProposingEvents(t *testing.T) {
	p := always(wire.PhaseBefore)
	ctrl, bar := newFake(t, p)

	res := handle(t, ctrl, input.Event{Kind: input.KindTouchStart, Y: 300})
	assert.False(t, res.Proposed)
	res = handle(t, ctrl, input.Event{Kind: input.KindTouchMove, Y: 280})
	require.True(t, res.Proposed)
	assert.Equal(t, wire.EvTouch, res.EvType)
	assert.Equal(t, int64(60), res.Delta)
	handle(t, ctrl, input.Event{Kind: input.KindTouchEnd})

	assert.Len(t, p.calls, 1)
	assert.Equal(t, []int64{60}, bar.positions)
}

func TestHandleInput_ContextCancelled(t *testing.T) {
	p := &fakeProposer{reply: func(proposal) (wire.AuthorityStatus, error) {
		return wire.AuthorityStatus{}, context.Canceled
	}}
	ctrl, bar := newFake(t, p)

	_, err := ctrl.HandleInput(context.Background(), wheelEv(100))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, bar.positions)
	assert.False(t, ctrl.Session().StatusKnown)
}

func TestHandleInput_ProposesCurrentPosition(t *testing.T) {
	p := always(wire.PhaseBefore)
	ctrl, _ := newFake(t, p)

	handle(t, ctrl, wheelEv(40))
	handle(t, ctrl, wheelEv(-5))

	assert.Equal(t, []proposal{
		{wire.EvWheel, 40, 0},
		{wire.EvWheel, -10, 40},
	}, p.calls)
}

func TestRestore(t *testing.T) {
	ctrl, bar := newFake(t, always(wire.PhaseAfter))
	ctrl.Restore(scroll.Session{
		ID:            "saved",
		PageScrollPos: 9000,
		LastStatus:    wire.PhaseAfter,
		StatusKnown:   true,
	})

	s := ctrl.Session()
	assert.Equal(t, "saved", s.ID)
	assert.Equal(t, int64(3000), s.PageScrollPos)
	assert.Equal(t, wire.PhaseAfter, s.LastStatus)
	assert.Equal(t, []int64{3000}, bar.positions)
}

func TestSessionID(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, "session-1", f.ctrl.Session().ID)

	id := scroll.UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
