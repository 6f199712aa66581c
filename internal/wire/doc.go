// Package wire defines the messages exchanged between the scroll driver and
// the card-stack animator.
//
// The two components never share memory. Every cross-component effect is one
// of three payloads, published on a named topic:
//
//	scroll-proposal   driver -> animator   ScrollProposal
//	authority-status  animator -> driver   AuthorityStatus
//	geometry-update   animator -> driver   GeometryUpdate
//
// Payloads are encoded as canonical JSON (sorted keys, NFC strings, integers
// only) so that the same message always produces the same bytes. This keeps
// the message log replayable and lets content IDs be computed from payloads.
//
// This package imports nothing internal. All other internal packages may
// import wire.
package wire
