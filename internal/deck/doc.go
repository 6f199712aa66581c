// Package deck implements the card-stack animator.
//
// The animator owns a phase (before, animating, after), an accumulator of
// animation delta and a translation per card. It consumes scroll proposals
// and answers each with an authority status. While the phase is animating
// the deck owns scroll position and the driver pins the page at the deck's
// entry offset.
//
// Card layout is a pure function of the accumulator: card 0 never moves,
// cards 1..n-1 travel from their initial to their final translation in
// stack order. When the total card travel is shorter than the animation
// length, the remainder is dwell with every card settled.
//
// Runtime wires an Animator to a bus. Proposals are queued in a mailbox and
// applied by a single-writer Run loop; with WithInline they are applied on
// the publisher's goroutine instead, which keeps tests synchronous.
package deck
