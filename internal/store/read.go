package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/synthscroll/internal/wire"
)

// ReadMessages returns the whole log ordered by seq ASC.
//
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ReadMessages(ctx context.Context) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, topic, content_id, payload
		FROM messages
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	return scanMessages(rows)
}

// ReadMessagesByTopic returns the messages of one topic ordered by seq ASC.
func (s *Store) ReadMessagesByTopic(ctx context.Context, topic wire.Topic) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, topic, content_id, payload
		FROM messages
		WHERE topic = ?
		ORDER BY seq ASC
	`, string(topic))
	if err != nil {
		return nil, fmt.Errorf("query %s messages: %w", topic, err)
	}
	return scanMessages(rows)
}

// CountMessages returns the number of logged messages.
func (s *Store) CountMessages(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var (
			m       Message
			topic   string
			payload string
		)
		if err := rows.Scan(&m.Seq, &topic, &m.ContentID, &payload); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Topic = wire.Topic(topic)
		m.Payload = []byte(payload)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}
