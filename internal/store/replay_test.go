package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthscroll/internal/wire"
)

func TestReadExchanges_PairsByInReplyTo(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	envs := []struct {
		topic wire.Topic
		v     interface{ Encode() ([]byte, error) }
	}{
		{wire.TopicGeometryUpdate, wire.GeometryUpdate{ExtraPageHeight: 350, OffsetTopBlocker: 600}},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 1, EvType: wire.EvWheel, DeltaY: 100, ScrollTop: 550}},
		{wire.TopicAuthorityStatus, wire.AuthorityStatus{BlockedStatus: wire.PhaseAnimating, InReplyTo: 1}},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 2, EvType: wire.EvWheel, DeltaY: 100, ScrollTop: 600}},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 3, EvType: wire.EvWheel, DeltaY: 100, ScrollTop: 600}},
		{wire.TopicAuthorityStatus, wire.AuthorityStatus{BlockedStatus: wire.PhaseAnimating, InReplyTo: 3}},
		{wire.TopicAuthorityStatus, wire.AuthorityStatus{BlockedStatus: wire.PhaseAnimating, InReplyTo: 2}},
		{wire.TopicAuthorityStatus, wire.AuthorityStatus{BlockedStatus: wire.PhaseAnimating, InReplyTo: 2}},
	}
	for i, e := range envs {
		require.NoError(t, s.WriteMessage(ctx, encodeEnvelope(t, int64(i+1), e.topic, e.v)))
	}

	log, err := s.ReadExchanges(ctx)
	require.NoError(t, err)
	require.Len(t, log.Exchanges, 3)
	assert.Equal(t, int64(8), log.LastSeq)
	assert.Equal(t, 1, log.Unmatched)
	assert.Equal(t, []wire.GeometryUpdate{{ExtraPageHeight: 350, OffsetTopBlocker: 600}}, log.Geometry)

	for i, ex := range log.Exchanges {
		assert.True(t, ex.Replied, "exchange %d", i)
		assert.Equal(t, ex.Proposal.Seq, ex.Status.InReplyTo)
	}
	assert.Equal(t, int64(2), log.Exchanges[0].BusSeq)
}

func TestReadExchanges_Unanswered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteMessage(ctx, encodeEnvelope(t, 1, wire.TopicScrollProposal,
		wire.ScrollProposal{Seq: 1, EvType: wire.EvClick, DeltaY: 500})))

	log, err := s.ReadExchanges(ctx)
	require.NoError(t, err)
	require.Len(t, log.Exchanges, 1)
	assert.False(t, log.Exchanges[0].Replied)
}

func TestReadExchanges_DetectsTampering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteMessage(ctx, encodeEnvelope(t, 1, wire.TopicScrollProposal,
		wire.ScrollProposal{Seq: 1, EvType: wire.EvWheel, DeltaY: 10})))
	_, err := s.db.Exec(`UPDATE messages SET payload = '{"deltaY":99,"evType":"wheel","scrollTop":0,"seq":1}' WHERE seq = 1`)
	require.NoError(t, err)

	_, err = s.ReadExchanges(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content_id mismatch")
}

func TestReadExchanges_TracksClickPolicy(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	envs := []struct {
		topic wire.Topic
		v     interface{ Encode() ([]byte, error) }
	}{
		{wire.TopicGeometryUpdate, wire.GeometryUpdate{ExtraPageHeight: 350, OffsetTopBlocker: 600}},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 1, EvType: wire.EvClick, DeltaY: 900}},
		{wire.TopicGeometryUpdate, wire.GeometryUpdate{ExtraPageHeight: 350, OffsetTopBlocker: 600, FreeScrolling: true}},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 3, EvType: wire.EvClick, DeltaY: 900}},
	}
	for i, e := range envs {
		require.NoError(t, s.WriteMessage(ctx, encodeEnvelope(t, int64(i+1), e.topic, e.v)))
	}

	log, err := s.ReadExchanges(ctx)
	require.NoError(t, err)
	require.Len(t, log.Exchanges, 2)
	assert.False(t, log.Exchanges[0].FreeScrolling)
	assert.True(t, log.Exchanges[1].FreeScrolling)
	assert.Len(t, log.Geometry, 2)
}

func TestReadExchanges_UnsolicitedStatusMarksRestore(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	envs := []struct {
		topic wire.Topic
		v     interface{ Encode() ([]byte, error) }
	}{
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 1, EvType: wire.EvWheel, DeltaY: 100}},
		{wire.TopicAuthorityStatus, wire.AuthorityStatus{BlockedStatus: wire.PhaseBefore, InReplyTo: 1}},
		{wire.TopicAuthorityStatus, wire.AuthorityStatus{BlockedStatus: wire.PhaseAfter}},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 2, EvType: wire.EvWheel, DeltaY: -100, ScrollTop: 900}},
	}
	for i, e := range envs {
		require.NoError(t, s.WriteMessage(ctx, encodeEnvelope(t, int64(i+1), e.topic, e.v)))
	}

	log, err := s.ReadExchanges(ctx)
	require.NoError(t, err)
	require.Len(t, log.Exchanges, 2)
	assert.Equal(t, 0, log.Unmatched)
	assert.False(t, log.Exchanges[0].Restored)
	assert.True(t, log.Exchanges[1].Restored)
	assert.Equal(t, wire.PhaseAfter, log.Exchanges[1].RestoredTo)
}

func TestReadExchanges_MarksRunStarts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	start := wire.GeometryUpdate{ExtraPageHeight: 350, OffsetTopBlocker: 600, Started: true}
	envs := []struct {
		topic wire.Topic
		v     interface{ Encode() ([]byte, error) }
	}{
		{wire.TopicGeometryUpdate, start},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 1, EvType: wire.EvWheel, DeltaY: 100}},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 2, EvType: wire.EvWheel, DeltaY: 100}},
		{wire.TopicGeometryUpdate, wire.GeometryUpdate{ExtraPageHeight: 350, OffsetTopBlocker: 600, FreeScrolling: true}},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 3, EvType: wire.EvWheel, DeltaY: 100}},
		{wire.TopicGeometryUpdate, start},
		{wire.TopicAuthorityStatus, wire.AuthorityStatus{BlockedStatus: wire.PhaseAfter}},
		{wire.TopicScrollProposal, wire.ScrollProposal{Seq: 4, EvType: wire.EvWheel, DeltaY: -100}},
	}
	for i, e := range envs {
		require.NoError(t, s.WriteMessage(ctx, encodeEnvelope(t, int64(i+1), e.topic, e.v)))
	}

	log, err := s.ReadExchanges(ctx)
	require.NoError(t, err)
	require.Len(t, log.Exchanges, 4)
	assert.Equal(t, 2, log.Runs)

	var starts []bool
	for _, ex := range log.Exchanges {
		starts = append(starts, ex.RunStart)
	}
	assert.Equal(t, []bool{true, false, false, true}, starts)
	assert.False(t, log.Exchanges[3].FreeScrolling)
	assert.True(t, log.Exchanges[3].Restored)
	assert.Equal(t, wire.PhaseAfter, log.Exchanges[3].RestoredTo)
}
