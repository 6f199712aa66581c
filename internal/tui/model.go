// Package tui is an interactive terminal front end for a deck: it plays the
// page's scrollbar and feeds keyboard-synthesized input through the scroll
// controller.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/deck"
	"github.com/roach88/synthscroll/internal/input"
	"github.com/roach88/synthscroll/internal/scroll"
)

const (
	wheelDelta = 100
	trackRows  = 12
	dragRows   = 20 // one J/K press moves the thumb 1/dragRows of the track
)

// Driver is the scroll side the model drives. Implemented by
// *scroll.Controller.
type Driver interface {
	HandleInput(ctx context.Context, ev input.Event) (scroll.Result, error)
	Session() scroll.Session
}

// Deck is the deck side the model observes. Implemented by *deck.Runtime.
type Deck interface {
	State() deck.State
	SetFreeScrolling(on bool)
}

// inputDoneMsg carries the result of one key's input sequence.
type inputDoneMsg struct {
	label string
	res   scroll.Result
	err   error
}

// Model is the bubbletea model for the simulator.
type Model struct {
	ctx    context.Context
	driver Driver
	deck   Deck
	track  *Track
	cfg    config.Config

	width   int
	height  int
	status  string
	lastErr error
}

// New creates a model. track must be the scrollbar given to the controller.
func New(ctx context.Context, driver Driver, d Deck, track *Track, cfg config.Config) Model {
	return Model{
		ctx:    ctx,
		driver: driver,
		deck:   d,
		track:  track,
		cfg:    cfg,
		status: "ready",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case inputDoneMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			m.status = fmt.Sprintf("%s failed", msg.label)
			return m, nil
		}
		m.lastErr = nil
		m.status = describe(msg.label, msg.res)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	track := float64(m.cfg.Viewport.TrackHeight)

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		return m.send("wheel down", input.Event{Kind: input.KindWheel, DeltaY: wheelDelta})
	case "k", "up":
		return m.send("wheel up", input.Event{Kind: input.KindWheel, DeltaY: -wheelDelta})
	case "J":
		return m.send("drag down", m.dragEvents(track/dragRows)...)
	case "K":
		return m.send("drag up", m.dragEvents(-track/dragRows)...)
	case "g":
		return m.send("click top", input.Event{Kind: input.KindClick, Y: 0})
	case "G":
		return m.send("click bottom", input.Event{Kind: input.KindClick, Y: track})
	case "f":
		free := !m.driver.Session().FreeScrolling
		m.deck.SetFreeScrolling(free)
		m.status = fmt.Sprintf("free scrolling %s", onOff(free))
		return m, nil
	}
	return m, nil
}

// dragEvents grabs the thumb where it is drawn, moves it by dy track pixels
// and lets go.
func (m Model) dragEvents(dy float64) []input.Event {
	y := float64(m.track.ThumbRow(trackRows)) * float64(m.cfg.Viewport.TrackHeight) / trackRows
	return []input.Event{
		{Kind: input.KindPointerDown, Y: y},
		{Kind: input.KindPointerMove, Y: y + dy},
		{Kind: input.KindPointerUp, Y: y + dy},
	}
}

// send runs events through the driver off the update loop. The result of
// the last proposing event is reported.
func (m Model) send(label string, events ...input.Event) (tea.Model, tea.Cmd) {
	ctx, driver := m.ctx, m.driver
	return m, func() tea.Msg {
		var last scroll.Result
		for _, ev := range events {
			res, err := driver.HandleInput(ctx, ev)
			if err != nil {
				return inputDoneMsg{label: label, err: err}
			}
			if res.Proposed {
				last = res
			}
		}
		return inputDoneMsg{label: label, res: last}
	}
}

func describe(label string, res scroll.Result) string {
	if !res.Proposed {
		return label + ": nothing proposed"
	}
	s := fmt.Sprintf("%s: %s %+d -> %s", label, res.EvType, res.Delta, res.Status)
	if res.TimedOut {
		s += " (no reply)"
	}
	return s
}

// View implements tea.Model.
func (m Model) View() string {
	st := m.deck.State()
	sess := m.driver.Session()
	phase := st.Phase.String()

	var b strings.Builder
	fmt.Fprintf(&b, "%s  deck %q  %s\n",
		titleStyle.Render("synthscroll"), st.ID, phaseStyle(phase).Render(phase))
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render(fmt.Sprintf(
		"position %d/%d  acc %d/%d  offset %d  free scrolling %s",
		m.track.Position(), m.cfg.Viewport.MaxScroll,
		st.Accumulator, st.AnimationLength, st.OffsetTop, onOff(sess.FreeScrolling))))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.renderTrack()),
		" ",
		panelStyle.Render(renderCards(st)),
	))
	b.WriteString("\n")

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s: %v", m.status, m.lastErr)))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("j/k wheel  J/K drag  g/G click top/bottom  f free scrolling  q quit"))
	return b.String()
}

func (m Model) renderTrack() string {
	thumb := m.track.ThumbRow(trackRows)
	rows := make([]string, trackRows)
	for i := range rows {
		if i == thumb {
			rows[i] = thumbStyle.Render("█")
		} else {
			rows[i] = railStyle.Render("│")
		}
	}
	return strings.Join(rows, "\n")
}

func renderCards(st deck.State) string {
	lines := make([]string, 0, len(st.Cards))
	for _, c := range st.Cards {
		marker := " "
		if c.Index == st.CurrentIndex && st.Phase.Blocking() {
			marker = ">"
		}
		status := c.Status.String()
		style, ok := cardStyles[status]
		if !ok {
			style = mutedStyle
		}
		lines = append(lines, fmt.Sprintf("%s card %d  h %4d  y %5d  %s",
			marker, c.Index, c.Height, c.Translation, style.Render(status)))
	}
	return strings.Join(lines, "\n")
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// Run starts the program on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
