// Package authority implements the driver's side of the movement-authority
// protocol: publish a scroll proposal, wait a bounded time for the
// animator's status reply, and resolve to that status or a NoStatusError.
//
// Protocol for one proposal:
//
//  1. Stamp the proposal with the next sequence number.
//  2. Install a one-shot subscription on authority-status that accepts only
//     a reply whose inReplyTo equals that sequence number.
//  3. Publish the proposal on scroll-proposal.
//  4. Wait for the reply, the deadline or context cancellation, whichever
//     comes first.
//
// The subscription is installed before publishing because bus delivery is
// synchronous: an animator replying inline would otherwise answer into the
// void. Replies to other proposals are counted as stale and dropped, and a
// reply arriving after the wait settled finds no subscription at all.
//
// Deadlines come from an injected Timer so tests can expire them without
// waiting on the wall clock.
package authority
