// Package store provides SQLite-backed storage for the message log and the
// saved driver session.
//
// The store keeps:
//   - Messages: every envelope published on the bus, append-only
//   - Sessions: driver snapshots for the single restoration operation
//
// # Ordering
//
// All ordering uses seq INTEGER (the broker's logical clock), never
// timestamps. Message reads are ORDER BY seq ASC so a replay sees the log in
// publication order.
//
// # Integrity
//
// Each message carries a content_id, the SHA-256 of its canonical payload
// with topic domain separation (wire.ContentID). Reads used for replay
// verify it.
//
// # Database Configuration
//
// Connections run in WAL mode with synchronous=NORMAL and a 5 second busy
// timeout. PRAGMA user_version stamps the schema version; a database from a
// newer build is refused rather than written with an older layout.
package store
