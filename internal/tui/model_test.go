package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthscroll/internal/authority"
	"github.com/roach88/synthscroll/internal/bus"
	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/deck"
	"github.com/roach88/synthscroll/internal/input"
	"github.com/roach88/synthscroll/internal/scroll"
	"github.com/roach88/synthscroll/internal/testutil"
)

type fixture struct {
	model Model
	track *Track
	deck  *deck.Runtime
	ctrl  *scroll.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()

	b := bus.NewBroker()
	a, err := deck.New(cfg.Deck, cfg.Constants)
	require.NoError(t, err)

	track := NewTrack(cfg.Viewport.MaxScroll)
	ch := authority.New(b, cfg.Timeouts, authority.WithTimer(testutil.NewManualTimer()))
	ctrl := scroll.New(b, ch, cfg,
		scroll.WithScrollbar(track),
		scroll.WithIDGenerator(testutil.NewFixedIDGenerator("tui-session")),
	)
	rt := deck.NewRuntime(b, a, deck.WithInline())
	rt.Start()
	t.Cleanup(func() {
		rt.Stop()
		ctrl.Close()
	})

	return &fixture{
		model: New(context.Background(), ctrl, rt, track, cfg),
		track: track,
		deck:  rt,
		ctrl:  ctrl,
	}
}

func key(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press applies a key and runs the resulting command to completion.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(key(k))
	got, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	if cmd == nil {
		return got
	}
	next, _ = got.Update(cmd())
	got, ok = next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return got
}

func TestModel_WheelDown(t *testing.T) {
	f := newFixture(t)

	m := press(t, f.model, "j")
	assert.Equal(t, int64(100), f.track.Position())
	assert.Equal(t, "wheel down: wheel +100 -> before", m.status)
	assert.Contains(t, m.View(), "position 100/3000")
}

func TestModel_WheelIntoDeck(t *testing.T) {
	f := newFixture(t)

	m := f.model
	for range 7 {
		m = press(t, m, "j")
	}
	assert.Equal(t, int64(600), f.track.Position())
	assert.Equal(t, "wheel down: wheel +100 -> animating", m.status)

	view := m.View()
	assert.Contains(t, view, "animating")
	assert.Contains(t, view, "acc 100/350")

	m = press(t, m, "k")
	assert.Equal(t, "wheel up: wheel -100 -> before", m.status)
	assert.Equal(t, "before", f.deck.State().Phase.String())
	assert.Equal(t, int64(600), f.track.Position())
}

func TestModel_ClickBottomIntercepted(t *testing.T) {
	f := newFixture(t)

	m := press(t, f.model, "G")
	assert.Equal(t, int64(600), f.track.Position())
	assert.Equal(t, "click bottom: click +3350 -> animating", m.status)
}

func TestModel_FreeScrollingToggle(t *testing.T) {
	f := newFixture(t)

	m := press(t, f.model, "f")
	assert.Equal(t, "free scrolling on", m.status)
	assert.True(t, f.ctrl.Session().FreeScrolling)
	assert.True(t, f.deck.State().FreeScrolling)

	m = press(t, m, "G")
	assert.Equal(t, int64(3000), f.track.Position())
	assert.Equal(t, "after", f.deck.State().Phase.String())

	m = press(t, m, "g")
	assert.Equal(t, int64(0), f.track.Position())

	m = press(t, m, "f")
	assert.Equal(t, "free scrolling off", m.status)
	assert.False(t, f.ctrl.Session().FreeScrolling)
}

func TestModel_Drag(t *testing.T) {
	f := newFixture(t)

	m := press(t, f.model, "J")
	// 30px of a 600px track over 3350px of range, clamped to the max delta
	assert.Equal(t, "drag down: drag +100 -> before", m.status)
	assert.Equal(t, int64(100), f.track.Position())
	assert.False(t, f.ctrl.Dragging())

	m = press(t, m, "K")
	assert.Equal(t, "drag up: drag -100 -> before", m.status)
	assert.Equal(t, int64(0), f.track.Position())
}

func TestModel_Quit(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.model.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModel_WindowSize(t *testing.T) {
	f := newFixture(t)

	next, cmd := f.model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Nil(t, cmd)
	m := next.(Model)
	assert.Equal(t, 80, m.width)
	assert.Equal(t, 24, m.height)
}

func TestModel_UnknownKeyIgnored(t *testing.T) {
	f := newFixture(t)

	next, cmd := f.model.Update(key("x"))
	assert.Nil(t, cmd)
	assert.Equal(t, "ready", next.(Model).status)
}

type failingDriver struct{}

func (failingDriver) HandleInput(context.Context, input.Event) (scroll.Result, error) {
	return scroll.Result{}, errors.New("propose wheel: context canceled")
}

func (failingDriver) Session() scroll.Session { return scroll.Session{} }

func TestModel_DriverError(t *testing.T) {
	f := newFixture(t)
	m := New(context.Background(), failingDriver{}, f.deck, f.track, config.Default())

	m = press(t, m, "j")
	assert.Equal(t, "wheel down failed", m.status)
	assert.Error(t, m.lastErr)
	assert.Contains(t, m.View(), "context canceled")
}

func TestView_Cards(t *testing.T) {
	f := newFixture(t)

	view := f.model.View()
	assert.Contains(t, view, "synthscroll")
	assert.Contains(t, view, `deck "deck"`)
	assert.Contains(t, view, "card 2")
	assert.Contains(t, view, "idle")
	assert.Contains(t, view, "j/k wheel")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "x: nothing proposed", describe("x", scroll.Result{}))
	assert.Equal(t, "x: touchmove -12 -> after (no reply)",
		describe("x", scroll.Result{Proposed: true, EvType: "touchmove", Delta: -12, Status: 2, TimedOut: true}))
}

func TestTrack_ThumbRow(t *testing.T) {
	tr := NewTrack(1000)
	assert.Equal(t, 0, tr.ThumbRow(12))

	tr.SetPosition(500)
	assert.Equal(t, 5, tr.ThumbRow(12))

	tr.SetPosition(1000)
	assert.Equal(t, 11, tr.ThumbRow(12))

	tr.SetPosition(5000)
	assert.Equal(t, 11, tr.ThumbRow(12))

	assert.Equal(t, 0, tr.ThumbRow(1))
	assert.Equal(t, 0, NewTrack(0).ThumbRow(12))
}
