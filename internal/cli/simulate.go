package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/synthscroll/internal/input"
	"github.com/roach88/synthscroll/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Kind     string  // wheel | touch
	Delta    float64 // wheel deltaY, or finger travel per touch step
	Steps    int
	Database string
	Restore  bool
}

// SimStep is one proposal made during a simulation.
type SimStep struct {
	Step     int    `json:"step"`
	EvType   string `json:"ev_type"`
	Delta    int64  `json:"delta"`
	Phase    string `json:"phase"`
	TimedOut bool   `json:"timed_out"`
	Position int64  `json:"position"`
}

// SimulateResult is the output of the simulate command.
type SimulateResult struct {
	SessionID    string    `json:"session_id"`
	Restored     bool      `json:"restored"`
	Steps        []SimStep `json:"steps"`
	Position     int64     `json:"position"`
	Phase        string    `json:"phase"`
	Translations []int64   `json:"translations"`
	Timeouts     int64     `json:"timeouts"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <config-dir>",
		Short: "Feed synthesized scroll input through a deck",
		Long: `Feed a run of identical wheel or touch events through the scroll driver
and the deck, printing every proposal and the final card layout.

With --db every bus message is appended to the SQLite log and the session
is saved at the end. --restore resumes from the newest saved session.

Examples:
  synthscroll simulate ./deck --steps 12
  synthscroll simulate ./deck --kind touch --delta 20 --steps 5
  synthscroll simulate ./deck --db run.db --restore --delta -100`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "wheel", "event kind (wheel|touch)")
	cmd.Flags().Float64Var(&opts.Delta, "delta", 100, "wheel deltaY or touch travel per step")
	cmd.Flags().IntVar(&opts.Steps, "steps", 10, "number of events")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database for the message log and session")
	cmd.Flags().BoolVar(&opts.Restore, "restore", false, "resume from the newest saved session (needs --db)")

	return cmd
}

func runSimulate(opts *SimulateOptions, dir string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)

	if opts.Kind != "wheel" && opts.Kind != "touch" {
		return f.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid kind %q: must be wheel or touch", opts.Kind), nil)
	}
	if opts.Steps < 0 {
		return f.fail(ExitCommandError, ErrCodeGeneric, "steps must be non-negative", nil)
	}
	if opts.Restore && opts.Database == "" {
		return f.fail(ExitCommandError, ErrCodeGeneric, "--restore needs --db", nil)
	}

	cfg, _, err := LoadDeck(dir)
	if err != nil {
		return loadFailure(f, err)
	}

	r, err := newRig(ctx, cfg, rigOptions{dbPath: opts.Database, inline: true})
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to set up simulation", err)
	}
	defer r.close()

	result := SimulateResult{Steps: []SimStep{}}
	if opts.Restore {
		rec, err := r.restoreLatest(ctx)
		if errors.Is(err, store.ErrNoSession) {
			return f.fail(ExitCommandError, ErrCodeNoSession, "no saved session in database", nil)
		}
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to restore session", err)
		}
		result.Restored = true
		f.VerboseLog("Restored session %s at position %d", rec.ID, rec.PageScrollPos)
	}

	for i, ev := range simulatedEvents(opts.Kind, opts.Delta, opts.Steps) {
		res, err := r.ctrl.HandleInput(ctx, ev)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeGeneric, "simulation aborted", err)
		}
		if !res.Proposed {
			continue
		}
		result.Steps = append(result.Steps, SimStep{
			Step:     i + 1,
			EvType:   res.EvType,
			Delta:    res.Delta,
			Phase:    res.Status.String(),
			TimedOut: res.TimedOut,
			Position: res.Position,
		})
	}

	if err := r.saveSession(ctx); err != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to save session", err)
	}

	sess := r.ctrl.Session()
	st := r.deck.State()
	result.SessionID = sess.ID
	result.Position = sess.PageScrollPos
	result.Phase = st.Phase.String()
	result.Translations = make([]int64, len(st.Cards))
	for i, c := range st.Cards {
		result.Translations[i] = c.Translation
	}
	result.Timeouts = r.channel.TimedOut()

	if f.JSON() {
		return f.Success(result)
	}

	if result.Restored {
		f.Printf("Restored session %s\n", result.SessionID)
	}
	for _, s := range result.Steps {
		f.Printf("  [%d] %s %+d -> %s @%d", s.Step, s.EvType, s.Delta, s.Phase, s.Position)
		if s.TimedOut {
			f.Printf(" (no reply)")
		}
		f.Printf("\n")
	}
	f.Printf("\nFinal: position %d, phase %s, cards %v\n", result.Position, result.Phase, result.Translations)
	return nil
}

// simulatedEvents builds steps identical events. Touch runs start with a
// touchstart at y=0 and move the finger up by delta per step, which
// scrolls the page down.
func simulatedEvents(kind string, delta float64, steps int) []input.Event {
	var events []input.Event
	if kind == "touch" {
		events = append(events, input.Event{Kind: input.KindTouchStart})
		for i := 1; i <= steps; i++ {
			events = append(events, input.Event{Kind: input.KindTouchMove, Y: -delta * float64(i)})
		}
		return append(events, input.Event{Kind: input.KindTouchEnd})
	}
	for range steps {
		events = append(events, input.Event{Kind: input.KindWheel, DeltaY: delta})
	}
	return events
}
