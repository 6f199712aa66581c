package store

import (
	"context"
	"fmt"

	"github.com/roach88/synthscroll/internal/wire"
)

// Exchange is one logged proposal and the status that answered it, if any.
type Exchange struct {
	// BusSeq is the broker seq of the proposal message.
	BusSeq   int64
	Proposal wire.ScrollProposal
	Status   wire.AuthorityStatus
	Replied  bool
	// FreeScrolling is the click policy of the latest geometry update
	// logged before the proposal.
	FreeScrolling bool
	// RunStart is set on the first proposal after a deck start. The deck
	// that answered it began in phase before.
	RunStart bool
	// Restored is set when the deck announced a restored phase since the
	// previous proposal.
	Restored   bool
	RestoredTo wire.Phase
}

// ExchangeLog is the decoded message log, grouped for replay.
type ExchangeLog struct {
	Exchanges []Exchange
	// Geometry holds every announced geometry update in order.
	Geometry []wire.GeometryUpdate
	// Unmatched counts statuses whose proposal was already answered or is
	// not in the log.
	Unmatched int
	// Runs counts deck starts.
	Runs    int
	LastSeq int64
}

// ReadExchanges reads the log, verifies every content_id and pairs each
// status with the latest proposal carrying its inReplyTo seq.
//
// Returns an error on the first tampered or undecodable message.
func (s *Store) ReadExchanges(ctx context.Context) (ExchangeLog, error) {
	msgs, err := s.ReadMessages(ctx)
	if err != nil {
		return ExchangeLog{}, fmt.Errorf("read exchanges: %w", err)
	}

	log := ExchangeLog{Exchanges: []Exchange{}}
	open := make(map[int64]int) // proposal seq -> index in Exchanges
	free := false
	started := false
	var restore *wire.Phase

	for _, m := range msgs {
		if got := wire.ContentID(m.Topic, m.Payload); got != m.ContentID {
			return ExchangeLog{}, fmt.Errorf("message %d: content_id mismatch (stored %s, computed %s)", m.Seq, m.ContentID, got)
		}
		log.LastSeq = m.Seq

		switch m.Topic {
		case wire.TopicScrollProposal:
			p, err := wire.DecodeProposal(m.Payload)
			if err != nil {
				return ExchangeLog{}, fmt.Errorf("message %d: %w", m.Seq, err)
			}
			ex := Exchange{BusSeq: m.Seq, Proposal: p, FreeScrolling: free, RunStart: started}
			started = false
			if restore != nil {
				ex.Restored, ex.RestoredTo = true, *restore
				restore = nil
			}
			open[p.Seq] = len(log.Exchanges)
			log.Exchanges = append(log.Exchanges, ex)

		case wire.TopicAuthorityStatus:
			st, err := wire.DecodeStatus(m.Payload)
			if err != nil {
				return ExchangeLog{}, fmt.Errorf("message %d: %w", m.Seq, err)
			}
			if st.InReplyTo == 0 {
				phase := st.BlockedStatus
				restore = &phase
				continue
			}
			idx, ok := open[st.InReplyTo]
			if !ok {
				log.Unmatched++
				continue
			}
			delete(open, st.InReplyTo)
			log.Exchanges[idx].Status = st
			log.Exchanges[idx].Replied = true

		case wire.TopicGeometryUpdate:
			g, err := wire.DecodeGeometry(m.Payload)
			if err != nil {
				return ExchangeLog{}, fmt.Errorf("message %d: %w", m.Seq, err)
			}
			free = g.FreeScrolling
			log.Geometry = append(log.Geometry, g)
			if g.Started {
				// A restore belongs to the run that logged it.
				started, restore = true, nil
				log.Runs++
			}
		}
	}

	return log, nil
}
