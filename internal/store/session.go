package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/synthscroll/internal/wire"
)

// ErrNoSession is returned when no session has been saved.
var ErrNoSession = errors.New("no saved session")

// SessionRecord is a saved driver session.
type SessionRecord struct {
	ID            string
	PageScrollPos int64
	LastStatus    wire.Phase
	StatusKnown   bool
	FreeScrolling bool
	// Seq is the broker clock when the session was saved. The newest
	// session is the one with the highest seq.
	Seq int64
}

// SaveSession inserts or replaces the session with rec.ID.
func (s *Store) SaveSession(ctx context.Context, rec SessionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("save session: empty id")
	}

	var status sql.NullInt64
	if rec.StatusKnown {
		status = sql.NullInt64{Int64: int64(rec.LastStatus), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, page_scroll_pos, last_status, free_scrolling, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			page_scroll_pos = excluded.page_scroll_pos,
			last_status     = excluded.last_status,
			free_scrolling  = excluded.free_scrolling,
			seq             = excluded.seq
	`,
		rec.ID,
		rec.PageScrollPos,
		status,
		rec.FreeScrolling,
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

// LoadSession returns the session with the given id.
// Returns ErrNoSession if it does not exist.
func (s *Store) LoadSession(ctx context.Context, id string) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, page_scroll_pos, last_status, free_scrolling, seq
		FROM sessions
		WHERE id = ?
	`, id)
	return scanSession(row)
}

// LoadLatestSession returns the most recently saved session.
// Returns ErrNoSession if none was saved.
func (s *Store) LoadLatestSession(ctx context.Context) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, page_scroll_pos, last_status, free_scrolling, seq
		FROM sessions
		ORDER BY seq DESC, id COLLATE BINARY ASC
		LIMIT 1
	`)
	return scanSession(row)
}

func scanSession(row *sql.Row) (SessionRecord, error) {
	var (
		rec    SessionRecord
		status sql.NullInt64
	)
	err := row.Scan(&rec.ID, &rec.PageScrollPos, &status, &rec.FreeScrolling, &rec.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, ErrNoSession
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("scan session: %w", err)
	}

	if status.Valid {
		rec.LastStatus = wire.Phase(status.Int64)
		rec.StatusKnown = true
	}
	return rec, nil
}
