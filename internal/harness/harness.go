package harness

import (
	"context"
	"fmt"

	"github.com/roach88/synthscroll/internal/authority"
	"github.com/roach88/synthscroll/internal/bus"
	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/deck"
	"github.com/roach88/synthscroll/internal/input"
	"github.com/roach88/synthscroll/internal/scroll"
	"github.com/roach88/synthscroll/internal/store"
	"github.com/roach88/synthscroll/internal/testutil"
	"github.com/roach88/synthscroll/internal/wire"
)

// Harness holds the components wired for one scenario run.
type Harness struct {
	store   *store.Store
	bus     *lossyBus
	deck    *deck.Runtime
	channel *authority.Channel
	ctrl    *scroll.Controller
}

// lossyBus drops selected authority replies before delivery, simulating a
// message lost in transit. The deck has already applied the proposal.
type lossyBus struct {
	*bus.Broker
	drop     map[int]bool
	proposal int
}

func (b *lossyBus) Publish(topic wire.Topic, payload []byte) bus.Envelope {
	switch topic {
	case wire.TopicScrollProposal:
		b.proposal++
	case wire.TopicAuthorityStatus:
		if b.drop[b.proposal] {
			return bus.Envelope{Topic: topic}
		}
	}
	return b.Broker.Publish(topic, payload)
}

// LoadConfig compiles the scenario's config files, or returns the defaults
// when it lists none, and applies scenario overrides.
func LoadConfig(s *Scenario) (config.Config, error) {
	cfg := config.Default()
	if len(s.Config) > 0 {
		var err error
		cfg, err = config.LoadFiles(s.Config...)
		if err != nil {
			return config.Config{}, err
		}
	}
	if s.FreeScrolling != nil {
		cfg.Deck.FreeScrolling = *s.FreeScrolling
	}
	return cfg, nil
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store that records every
// bus message. Execution flow:
// 1. Compile the config and build the deck
// 2. Wire deck, authority channel and controller over one broker
// 3. Feed every event through the controller, checking step expectations
// 4. Evaluate assertions against the final state
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := LoadConfig(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	h, err := newHarness(ctx, st, cfg, scenario.DropReplies)
	if err != nil {
		return nil, err
	}
	defer h.close()

	result := NewResult()
	if err := h.execute(ctx, scenario.Events, result); err != nil {
		return nil, fmt.Errorf("failed to execute events: %w", err)
	}

	state := h.deck.State()
	result.Position = h.ctrl.Session().PageScrollPos
	result.Phase = state.Phase.String()
	result.Translations = make([]int64, len(state.Cards))
	for i, c := range state.Cards {
		result.Translations[i] = c.Translation
	}
	result.Timeouts = h.channel.TimedOut()
	result.Messages, err = st.CountMessages(ctx)
	if err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func newHarness(ctx context.Context, st *store.Store, cfg config.Config, drop []int) (*Harness, error) {
	a, err := deck.New(cfg.Deck, cfg.Constants)
	if err != nil {
		return nil, fmt.Errorf("failed to build deck: %w", err)
	}

	b := &lossyBus{Broker: bus.NewBroker(), drop: make(map[int]bool)}
	for _, n := range drop {
		b.drop[n] = true
	}
	b.Tap(st.Recorder(ctx))

	// Replies arrive inline, so an already-expired deadline only ever
	// catches dropped ones.
	ch := authority.New(b, cfg.Timeouts, authority.WithTimer(testutil.NewExpiredTimer()))
	ctrl := scroll.New(b, ch, cfg, scroll.WithIDGenerator(testutil.NewFixedIDGenerator("harness-session")))

	rt := deck.NewRuntime(b, a, deck.WithInline())
	rt.Start()

	return &Harness{store: st, bus: b, deck: rt, channel: ch, ctrl: ctrl}, nil
}

func (h *Harness) close() {
	h.deck.Stop()
	h.ctrl.Close()
}

// execute feeds the expanded event sequence through the controller.
func (h *Harness) execute(ctx context.Context, events []EventStep, result *Result) error {
	step := 0
	for i, ev := range events {
		kind, err := input.ParseKind(ev.Kind)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}

		var last scroll.Result
		for n := 0; n < max(ev.Repeat, 1); n++ {
			step++
			last, err = h.ctrl.HandleInput(ctx, input.Event{Kind: kind, DeltaY: ev.Delta, Y: ev.Y})
			if err != nil {
				return fmt.Errorf("event %d: %w", i, err)
			}
			if last.Proposed {
				result.AddTrace(TraceStep{
					Step:     step,
					Kind:     ev.Kind,
					EvType:   last.EvType,
					Delta:    last.Delta,
					Phase:    last.Status.String(),
					TimedOut: last.TimedOut,
					Position: last.Position,
				})
			}
		}

		if ev.Expect != nil {
			for _, msg := range checkExpect(i, ev.Expect, last) {
				result.AddError(msg)
			}
		}
	}
	return nil
}

func checkExpect(index int, want *StepExpect, got scroll.Result) []string {
	var errs []string
	if want.Phase != "" && want.Phase != got.Status.String() {
		errs = append(errs, fmt.Sprintf("events[%d]: expected phase %s, got %s", index, want.Phase, got.Status))
	}
	if want.Position != nil && *want.Position != got.Position {
		errs = append(errs, fmt.Sprintf("events[%d]: expected position %d, got %d", index, *want.Position, got.Position))
	}
	if want.TimedOut != nil && *want.TimedOut != got.TimedOut {
		errs = append(errs, fmt.Sprintf("events[%d]: expected timed_out %t, got %t", index, *want.TimedOut, got.TimedOut))
	}
	return errs
}
