package deck

import (
	"log/slog"

	"github.com/roach88/synthscroll/internal/config"
	"github.com/roach88/synthscroll/internal/wire"
)

// Animator is the deck-side state machine.
//
// Not safe for concurrent use; Runtime serializes access.
type Animator struct {
	id            string
	offsetTop     int64
	freeScrolling bool
	freeDefault   bool
	length        int64
	travel        int64

	phase wire.Phase
	acc   int64
	index int
	cards []Card
}

// State is a copy of the animator's state.
type State struct {
	ID              string
	Phase           wire.Phase
	CurrentIndex    int
	Accumulator     int64
	AnimationLength int64
	OffsetTop       int64
	FreeScrolling   bool
	Cards           []Card
}

// New builds an animator in phase before with every card at its initial
// translation.
func New(d config.Deck, c config.Constants) (*Animator, error) {
	g, err := DeriveGeometry(d.CardHeights, c.Gap, c.TopDistance)
	if err != nil {
		return nil, err
	}
	return &Animator{
		id:            d.ID,
		offsetTop:     d.OffsetTop,
		freeScrolling: d.FreeScrolling,
		freeDefault:   d.FreeScrolling,
		length:        g.AnimationLength,
		travel:        g.Travel,
		phase:         wire.PhaseBefore,
		index:         firstIndex(len(g.Cards)),
		cards:         g.Cards,
	}, nil
}

// Handle applies one proposal and returns the status to publish. Every
// proposal gets a status, including zero-delta ones.
func (a *Animator) Handle(p wire.ScrollProposal) wire.AuthorityStatus {
	before := a.phase

	switch {
	case p.DeltaY == 0:
	case p.EvType == wire.EvClick:
		a.click(p.ScrollTop + p.DeltaY)
	default:
		a.scroll(p)
	}

	if a.phase != before {
		slog.Info("deck phase changed",
			"deck", a.id,
			"seq", p.Seq,
			"from", before.String(),
			"to", a.phase.String(),
		)
	}
	slog.Debug("deck handled proposal",
		"deck", a.id,
		"seq", p.Seq,
		"ev_type", p.EvType,
		"delta_y", p.DeltaY,
		"phase", a.phase.String(),
		"acc", a.acc,
		"index", a.index,
	)

	return wire.AuthorityStatus{
		BlockedStatus:    a.phase,
		BlockerElementID: a.id,
		InReplyTo:        p.Seq,
	}
}

func (a *Animator) scroll(p wire.ScrollProposal) {
	target := p.ScrollTop + p.DeltaY

	switch a.phase {
	case wire.PhaseBefore:
		if p.DeltaY > 0 && target > a.offsetTop {
			a.enter(0)
			a.animate(target - max(p.ScrollTop, a.offsetTop))
		}
	case wire.PhaseAfter:
		if p.DeltaY < 0 && target < a.offsetTop {
			a.enter(a.length)
			a.animate(target - min(p.ScrollTop, a.offsetTop))
		}
	case wire.PhaseAnimating:
		a.animate(p.DeltaY)
	}
}

// click handles a jump to an absolute target in virtual coordinates, where
// the window (offsetTop, offsetTop+length) is the animation.
func (a *Animator) click(target int64) {
	end := a.offsetTop + a.length

	if a.freeScrolling {
		if target >= end {
			a.toAfter()
		} else {
			a.toBefore()
		}
		return
	}

	switch a.phase {
	case wire.PhaseBefore:
		if target > a.offsetTop {
			a.enter(0)
		}
	case wire.PhaseAfter:
		if target < end {
			a.enter(a.length)
		}
	case wire.PhaseAnimating:
		switch {
		case target <= a.offsetTop:
			a.toBefore()
		case target >= end:
			a.toAfter()
		default:
			a.animate(target - a.offsetTop - a.acc)
		}
	}
}

// enter switches to animating with the accumulator at acc and cards laid
// out for it.
func (a *Animator) enter(acc int64) {
	a.phase = wire.PhaseAnimating
	if acc >= a.length {
		a.acc = a.length
		a.index = a.lastIndex()
		a.snap(true)
		return
	}
	a.acc = 0
	a.index = firstIndex(len(a.cards))
	a.snap(false)
}

// animate moves the accumulator by delta while animating, leaving the
// phase when the accumulator reaches either end of [0, length].
func (a *Animator) animate(delta int64) {
	if delta == 0 {
		return
	}
	next := a.acc + delta
	switch {
	case delta > 0 && next >= a.length:
		a.toAfter()
		return
	case delta < 0 && next <= 0:
		a.toBefore()
		return
	}

	moved := a.progress(next) - a.progress(a.acc)
	a.acc = next
	if moved > 0 {
		a.forward(moved)
	} else if moved < 0 {
		a.backward(-moved)
	}
}

// progress maps the accumulator onto total card travel.
func (a *Animator) progress(acc int64) int64 {
	switch {
	case acc <= 0:
		return 0
	case acc >= a.length:
		return a.travel
	case a.travel <= a.length:
		return min(acc, a.travel)
	default:
		return acc * a.travel / a.length
	}
}

// forward moves cards toward their final translation starting at the
// current index, settling each one before moving to the next.
func (a *Animator) forward(dist int64) {
	for dist > 0 && a.index < len(a.cards) {
		c := &a.cards[a.index]
		left := abs(c.FinalTranslation - c.Translation)
		if left == 0 {
			if a.index == a.lastIndex() {
				return
			}
			a.index++
			continue
		}

		step := min(dist, left)
		c.Translation += c.direction() * step
		dist -= step

		if c.Translation == c.FinalTranslation {
			c.Status = CardSettled
			if a.index < a.lastIndex() {
				a.index++
			}
		} else {
			c.Status = CardMoving
		}
	}
}

// backward retracts cards toward their initial translation starting at the
// current index, down to the first moving card.
func (a *Animator) backward(dist int64) {
	for dist > 0 && a.index < len(a.cards) {
		c := &a.cards[a.index]
		left := abs(c.Translation - c.InitialTranslation)
		if left == 0 {
			if a.index <= firstIndex(len(a.cards)) {
				return
			}
			a.index--
			continue
		}

		step := min(dist, left)
		c.Translation -= c.direction() * step
		dist -= step

		if c.Translation == c.InitialTranslation {
			c.Status = CardIdle
			if a.index > firstIndex(len(a.cards)) {
				a.index--
			}
		} else {
			c.Status = CardMoving
		}
	}
}

func (a *Animator) toBefore() {
	a.phase = wire.PhaseBefore
	a.acc = 0
	a.index = firstIndex(len(a.cards))
	a.snap(false)
}

func (a *Animator) toAfter() {
	a.phase = wire.PhaseAfter
	a.acc = a.length
	a.index = a.lastIndex()
	a.snap(true)
}

// snap moves every card to one of its rest positions in a single batch.
func (a *Animator) snap(final bool) {
	for i := range a.cards {
		c := &a.cards[i]
		if final {
			c.Translation = c.FinalTranslation
			c.Status = CardSettled
		} else {
			c.Translation = c.InitialTranslation
			c.Status = CardIdle
		}
	}
}

// lastIndex is the highest card index. A one-card deck has no moving card
// and stays at index 0.
func (a *Animator) lastIndex() int {
	return len(a.cards) - 1
}

// firstIndex is the lowest moving-card index. Card 0 never moves, so it is 1
// unless the deck has a single card.
func firstIndex(n int) int {
	return min(1, n-1)
}

// Restore puts the animator at the rest position of phase. Animating
// restarts the animation at its entry since the accumulator is not saved.
func (a *Animator) Restore(phase wire.Phase) {
	switch phase {
	case wire.PhaseAfter:
		a.toAfter()
	case wire.PhaseAnimating:
		a.enter(0)
	default:
		a.toBefore()
	}
}

// Reset returns the animator to the state New built: phase before, cards at
// their initial translation and the configured click policy.
func (a *Animator) Reset() {
	a.toBefore()
	a.freeScrolling = a.freeDefault
}

// SetFreeScrolling changes the click policy.
func (a *Animator) SetFreeScrolling(on bool) {
	a.freeScrolling = on
}

// Geometry returns the update announced to the driver.
func (a *Animator) Geometry() wire.GeometryUpdate {
	return wire.GeometryUpdate{
		ExtraPageHeight:  a.length,
		OffsetTopBlocker: a.offsetTop,
		FreeScrolling:    a.freeScrolling,
	}
}

// Phase returns the current phase.
func (a *Animator) Phase() wire.Phase {
	return a.phase
}

// AnimationLength returns the total animation delta.
func (a *Animator) AnimationLength() int64 {
	return a.length
}

// State returns a copy of the animator's state.
func (a *Animator) State() State {
	return State{
		ID:              a.id,
		Phase:           a.phase,
		CurrentIndex:    a.index,
		Accumulator:     a.acc,
		AnimationLength: a.length,
		OffsetTop:       a.offsetTop,
		FreeScrolling:   a.freeScrolling,
		Cards:           append([]Card(nil), a.cards...),
	}
}

// Translations returns the current translation of every card.
func (a *Animator) Translations() []int64 {
	out := make([]int64, len(a.cards))
	for i, c := range a.cards {
		out[i] = c.Translation
	}
	return out
}
