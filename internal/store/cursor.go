package store

import (
	"context"
	"fmt"

	"github.com/roach88/synthscroll/internal/wire"
)

// Cursor is where a run appending to an existing log resumes its clocks.
type Cursor struct {
	// BusSeq is the highest broker seq in messages or sessions.
	BusSeq int64
	// ProposalSeq is the highest proposal seq logged.
	ProposalSeq int64
}

// ResumeCursor returns the clock positions after everything already stored.
// Both are 0 for an empty store.
func (s *Store) ResumeCursor(ctx context.Context) (Cursor, error) {
	var c Cursor
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			(SELECT COALESCE(MAX(seq), 0) FROM messages),
			(SELECT COALESCE(MAX(seq), 0) FROM sessions)
		)
	`).Scan(&c.BusSeq)
	if err != nil {
		return Cursor{}, fmt.Errorf("resume cursor: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(json_extract(payload, '$.seq')), 0)
		FROM messages WHERE topic = ?
	`, string(wire.TopicScrollProposal)).Scan(&c.ProposalSeq)
	if err != nil {
		return Cursor{}, fmt.Errorf("resume cursor: %w", err)
	}
	return c, nil
}
