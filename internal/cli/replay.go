package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/synthscroll/internal/deck"
	"github.com/roach88/synthscroll/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// Divergence is one logged reply the fresh deck disagrees with.
type Divergence struct {
	Seq      int64  `json:"seq"`
	EvType   string `json:"ev_type"`
	DeltaY   int64  `json:"delta_y"`
	Logged   string `json:"logged"`
	Replayed string `json:"replayed"`
}

// ReplayResult holds the replay outcome.
type ReplayResult struct {
	Runs         int          `json:"runs"`
	Proposals    int          `json:"proposals"`
	Replied      int          `json:"replied"`
	Unanswered   int          `json:"unanswered"`
	Unmatched    int          `json:"unmatched"`
	Restores     int          `json:"restores"`
	Translations []int64      `json:"translations"`
	Phase        string       `json:"phase"`
	Divergences  []Divergence `json:"divergences,omitempty"`
	Consistent   bool         `json:"consistent"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <config-dir>",
		Short: "Replay a message log against a fresh deck",
		Long: `Replay the logged proposals, in order, into a fresh deck built from the
config and compare every produced status with the logged reply.

Proposals whose reply was lost are still applied; the deck saw them.
Every deck start in the log begins a new run against a reset deck.
Click policy changes and session restores found in the log are applied at
the point they were logged.

Exit codes:
  0 - Every logged reply was reproduced
  1 - Divergence detected
  2 - Command error (database not found, tampered log, etc.)

Examples:
  synthscroll replay ./deck --db run.db
  synthscroll replay ./deck --db run.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, dir string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)

	cfg, _, err := LoadDeck(dir)
	if err != nil {
		return loadFailure(f, err)
	}

	// Open would create an empty database.
	if _, err := os.Stat(opts.Database); err != nil {
		return f.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	defer st.Close()

	log, err := st.ReadExchanges(ctx)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to read message log", err)
	}
	f.VerboseLog("Read %d proposal(s), last seq %d", len(log.Exchanges), log.LastSeq)

	a, err := deck.New(cfg.Deck, cfg.Constants)
	if err != nil {
		return loadFailure(f, &LoadError{Code: deckErrorCode(err), Message: err.Error()})
	}

	result := replayExchanges(a, log)

	if f.JSON() {
		if !result.Consistent {
			if err := f.Failure(ErrCodeReplayDiverged, fmt.Sprintf("%d divergence(s)", len(result.Divergences)), result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "replay diverged from the log")
		}
		return f.Success(result)
	}

	f.Printf("Replayed %d proposal(s) over %d run(s): %d replied, %d unanswered",
		result.Proposals, result.Runs, result.Replied, result.Unanswered)
	if result.Restores > 0 {
		f.Printf(", %d restore(s)", result.Restores)
	}
	f.Printf("\nFinal: phase %s, cards %v\n", result.Phase, result.Translations)

	if !result.Consistent {
		f.Printf("\n✗ %d divergence(s)\n", len(result.Divergences))
		for _, d := range result.Divergences {
			f.Printf("  seq %d %s %+d: logged %s, replayed %s\n", d.Seq, d.EvType, d.DeltaY, d.Logged, d.Replayed)
		}
		return NewExitError(ExitFailure, "replay diverged from the log")
	}
	f.Printf("✓ Replay consistent\n")
	return nil
}

// replayExchanges applies the log to a and compares statuses.
func replayExchanges(a *deck.Animator, log store.ExchangeLog) ReplayResult {
	result := ReplayResult{Runs: log.Runs, Proposals: len(log.Exchanges), Unmatched: log.Unmatched}

	for _, ex := range log.Exchanges {
		// Every run was answered by a freshly started deck.
		if ex.RunStart {
			a.Reset()
		}
		if ex.Restored {
			a.Restore(ex.RestoredTo)
			result.Restores++
		}
		a.SetFreeScrolling(ex.FreeScrolling)
		got := a.Handle(ex.Proposal)

		if !ex.Replied {
			result.Unanswered++
			continue
		}
		result.Replied++
		if got.BlockedStatus != ex.Status.BlockedStatus {
			result.Divergences = append(result.Divergences, Divergence{
				Seq:      ex.Proposal.Seq,
				EvType:   ex.Proposal.EvType,
				DeltaY:   ex.Proposal.DeltaY,
				Logged:   ex.Status.BlockedStatus.String(),
				Replayed: got.BlockedStatus.String(),
			})
		}
	}

	result.Translations = a.Translations()
	result.Phase = a.Phase().String()
	result.Consistent = len(result.Divergences) == 0
	return result
}
