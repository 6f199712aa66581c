package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/synthscroll/internal/bus"
	"github.com/roach88/synthscroll/internal/wire"
)

// Message is one logged bus envelope.
type Message struct {
	Seq       int64
	Topic     wire.Topic
	ContentID string
	Payload   []byte
}

// WriteMessage appends an envelope to the log.
// Uses ON CONFLICT(seq) DO NOTHING for idempotency - a sequence number is
// logged once, later writes with the same seq are silently ignored.
func (s *Store) WriteMessage(ctx context.Context, env bus.Envelope) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (seq, topic, content_id, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		env.Seq,
		string(env.Topic),
		wire.ContentID(env.Topic, env.Payload),
		string(env.Payload),
	)
	if err != nil {
		return fmt.Errorf("write message %d: %w", env.Seq, err)
	}
	return nil
}

// Recorder returns a bus tap that logs every envelope.
//
// ERROR HANDLING: a failed write is logged and the envelope is skipped; the
// bus never fails a publish.
func (s *Store) Recorder(ctx context.Context) bus.Handler {
	return func(env bus.Envelope) {
		if err := s.WriteMessage(ctx, env); err != nil {
			slog.Error("message not recorded",
				"seq", env.Seq,
				"topic", env.Topic,
				"error", err,
			)
		}
	}
}
