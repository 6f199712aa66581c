// Package scroll implements the scroll position controller: the driver half
// of the authority protocol.
//
// The controller owns the page scroll position. For every input event it
// normalizes a delta, proposes it to the deck through an authority channel,
// and applies the resulting position to the scrollbar collaborator:
//
//   - while the deck is animating, or has just handed authority back, the
//     page is pinned at the deck's entry offset
//   - otherwise the delta is integrated and clamped to the page range, with
//     a boundary snap so a single input can never skip the deck window
//   - clicks land on the page position of their virtual target; a target
//     inside the animation window lands on the entry offset
//
// A proposal that gets no reply falls back to the last known status, or to
// before when none is known, so input is never frozen by a lost message.
package scroll
