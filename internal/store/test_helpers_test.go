package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/synthscroll/internal/bus"
	"github.com/roach88/synthscroll/internal/wire"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// encodeEnvelope builds an envelope for a payload value.
func encodeEnvelope(t *testing.T, seq int64, topic wire.Topic, v interface{ Encode() ([]byte, error) }) bus.Envelope {
	t.Helper()
	data, err := v.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return bus.Envelope{Seq: seq, Topic: topic, Payload: data}
}

// verifyPragma checks that a pragma reads back as expected.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
