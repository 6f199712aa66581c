package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/synthscroll/internal/authority"
	"github.com/roach88/synthscroll/internal/bus"
	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/deck"
	"github.com/roach88/synthscroll/internal/scroll"
	"github.com/roach88/synthscroll/internal/store"
)

// rig is a driver and a deck wired over one broker, optionally logging to
// a store.
type rig struct {
	cfg     config.Config
	bus     *bus.Broker
	store   *store.Store
	deck    *deck.Runtime
	channel *authority.Channel
	ctrl    *scroll.Controller
}

type rigOptions struct {
	dbPath    string
	inline    bool
	scrollbar scroll.Scrollbar
}

// newRig builds the pair. With a database, clocks resume after what is
// already logged so appended messages never reuse a seq.
func newRig(ctx context.Context, cfg config.Config, ro rigOptions) (*rig, error) {
	a, err := deck.New(cfg.Deck, cfg.Constants)
	if err != nil {
		return nil, err
	}

	r := &rig{cfg: cfg}
	var cursor store.Cursor
	if ro.dbPath != "" {
		r.store, err = store.Open(ro.dbPath)
		if err != nil {
			return nil, err
		}
		cursor, err = r.store.ResumeCursor(ctx)
		if err != nil {
			r.store.Close()
			return nil, err
		}
	}

	r.bus = bus.NewBrokerWithClock(bus.NewClockAt(cursor.BusSeq))
	if r.store != nil {
		r.bus.Tap(r.store.Recorder(ctx))
	}

	r.channel = authority.New(r.bus, cfg.Timeouts, authority.WithClock(bus.NewClockAt(cursor.ProposalSeq)))

	var opts []scroll.Option
	if ro.scrollbar != nil {
		opts = append(opts, scroll.WithScrollbar(ro.scrollbar))
	}
	r.ctrl = scroll.New(r.bus, r.channel, cfg, opts...)

	var dopts []deck.RuntimeOption
	if ro.inline {
		dopts = append(dopts, deck.WithInline())
	}
	r.deck = deck.NewRuntime(r.bus, a, dopts...)
	r.deck.Start()

	return r, nil
}

// restoreLatest restores the newest saved session into the driver and
// aligns the deck with it.
func (r *rig) restoreLatest(ctx context.Context) (store.SessionRecord, error) {
	if r.store == nil {
		return store.SessionRecord{}, fmt.Errorf("restore needs a database")
	}
	rec, err := r.store.LoadLatestSession(ctx)
	if err != nil {
		return store.SessionRecord{}, err
	}

	r.ctrl.Restore(scroll.Session{
		ID:            rec.ID,
		PageScrollPos: rec.PageScrollPos,
		LastStatus:    rec.LastStatus,
		StatusKnown:   rec.StatusKnown,
	})
	if rec.FreeScrolling != r.deck.State().FreeScrolling {
		r.deck.SetFreeScrolling(rec.FreeScrolling)
	}
	if rec.StatusKnown {
		r.deck.Restore(rec.LastStatus)
	}
	return rec, nil
}

// saveSession snapshots the driver session. No-op without a database.
func (r *rig) saveSession(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	s := r.ctrl.Session()
	err := r.store.SaveSession(ctx, store.SessionRecord{
		ID:            s.ID,
		PageScrollPos: s.PageScrollPos,
		LastStatus:    s.LastStatus,
		StatusKnown:   s.StatusKnown,
		FreeScrolling: s.FreeScrolling,
		Seq:           r.bus.Clock().Next(),
	})
	if err != nil {
		return err
	}
	slog.Info("session saved", "session_id", s.ID, "position", s.PageScrollPos)
	return nil
}

func (r *rig) close() {
	r.deck.Stop()
	r.ctrl.Close()
	if r.store != nil {
		r.store.Close()
	}
}
