package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthscroll/internal/wire"
)

func TestResumeCursor_Empty(t *testing.T) {
	s := createTestStore(t)

	c, err := s.ResumeCursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Cursor{}, c)
}

func TestResumeCursor_MessagesAndSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteMessage(ctx, encodeEnvelope(t, 4, wire.TopicScrollProposal,
		wire.ScrollProposal{Seq: 2, EvType: wire.EvWheel, DeltaY: 100})))
	require.NoError(t, s.WriteMessage(ctx, encodeEnvelope(t, 5, wire.TopicAuthorityStatus,
		wire.AuthorityStatus{BlockedStatus: wire.PhaseBefore, InReplyTo: 2})))

	c, err := s.ResumeCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, Cursor{BusSeq: 5, ProposalSeq: 2}, c)

	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "s1", Seq: 9}))
	c, err = s.ResumeCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), c.BusSeq)
	assert.Equal(t, int64(2), c.ProposalSeq)
}
