// Package harness runs scripted input scenarios against a wired driver and
// deck and checks the outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config:
//	  - ../configs/deck.cue
//	free_scrolling: true
//	drop_replies: [3]
//	events:
//	  - kind: wheel
//	    delta: 100
//	    repeat: 5
//	  - kind: click
//	    y: 150
//	    expect: { phase: before, position: 600 }
//	assertions:
//	  - type: final_position
//	    value: 600
//	  - type: card_translations
//	    values: [0, -20, -130]
//
// config paths are relative to the scenario file. Without config the
// built-in defaults are used. drop_replies lists proposal numbers (1-based,
// counting only events that produce a proposal) whose authority reply is
// lost in transit; the driver then falls back to its last known status.
//
// # Assertion Types
//
//   - final_position: the driver's page position after the last event
//   - final_phase: the deck phase after the last event
//   - card_translations: every card's translation after the last event
//   - timeout_count: how many proposals got no reply
//   - phase_count: how many proposals were answered with a given phase
//   - message_count: how many messages the bus carried
//
// # Deterministic Testing
//
// Each run uses a fresh broker, logical clocks starting at zero, an inline
// deck and an in-memory message store, so identical scenarios produce
// identical traces for golden comparison.
package harness
