package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roach88/synthscroll/internal/store"
	"github.com/roach88/synthscroll/internal/tui"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Database string
	Restore  bool
	LogFile  string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <config-dir>",
		Short: "Drive a deck interactively in the terminal",
		Long: `Open an interactive view of the deck and drive it from the keyboard.

The deck runs on its own goroutine, so replies arrive asynchronously as they
would from a separate component.

Keys:
  j/k, down/up   wheel down/up
  J/K            drag the scrollbar thumb
  g/G            click the top/bottom of the track
  f              toggle free scrolling
  q              quit

Examples:
  synthscroll watch ./deck
  synthscroll watch ./deck --db run.db --restore --log watch.log`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database for the message log and session")
	cmd.Flags().BoolVar(&opts.Restore, "restore", false, "resume from the newest saved session (needs --db)")
	cmd.Flags().StringVar(&opts.LogFile, "log", "", "write logs to this file instead of discarding them")

	return cmd
}

func runWatch(opts *WatchOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if f.JSON() {
		return f.fail(ExitCommandError, ErrCodeGeneric, "watch is interactive and has no json output", nil)
	}
	if opts.Restore && opts.Database == "" {
		return f.fail(ExitCommandError, ErrCodeGeneric, "--restore needs --db", nil)
	}

	cfg, _, err := LoadDeck(dir)
	if err != nil {
		return loadFailure(f, err)
	}

	// The alternate screen owns the terminal; logs go to a file or nowhere.
	var logw io.Writer = io.Discard
	if opts.LogFile != "" {
		lf, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to open log file: %s", opts.LogFile), err)
		}
		defer lf.Close()
		logw = lf
	}
	setupLogging(logw, opts.Verbose)
	defer setupLogging(cmd.ErrOrStderr(), opts.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	track := tui.NewTrack(cfg.Viewport.MaxScroll)
	r, err := newRig(ctx, cfg, rigOptions{dbPath: opts.Database, scrollbar: track})
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to set up deck", err)
	}
	defer r.close()

	deckDone := make(chan error, 1)
	go func() {
		deckDone <- r.deck.Run(ctx)
	}()

	if opts.Restore {
		rec, err := r.restoreLatest(ctx)
		if errors.Is(err, store.ErrNoSession) {
			return f.fail(ExitCommandError, ErrCodeNoSession, "no saved session in database", nil)
		}
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to restore session", err)
		}
		slog.Info("session restored", "session_id", rec.ID, "position", rec.PageScrollPos)
	}

	uiErr := tui.Run(ctx, tui.New(ctx, r.ctrl, r.deck, track, cfg))

	saveErr := r.saveSession(context.Background())
	r.deck.Stop()
	if err := <-deckDone; err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("deck runtime ended with error", "error", err)
	}

	if uiErr != nil && !errors.Is(uiErr, context.Canceled) && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return f.fail(ExitCommandError, ErrCodeGeneric, "terminal UI failed", uiErr)
	}
	if saveErr != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to save session", saveErr)
	}
	return nil
}
