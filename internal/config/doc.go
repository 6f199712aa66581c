// Package config compiles synthscroll configuration from CUE.
//
// A configuration directory holds one or more .cue files that together
// describe the deck, the process-wide constants, the reply timeouts and the
// viewport the driver scrolls:
//
//	deck: {
//		id:         "deck"
//		offset_top: 600
//		cards:      [200, 150, 100]
//	}
//	constants: gap: 10
//	viewport: max_scroll: 3000
//
// Everything except deck.offset_top and deck.cards has a default. The files
// are unified with an embedded schema (schema.cue), validated as concrete,
// and compiled into an immutable Config value. Errors carry the CUE source
// position when one is available.
package config
