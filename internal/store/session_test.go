package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthscroll/internal/wire"
)

func TestSession_SaveLoad(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := SessionRecord{
		ID:            "0190b6c2-0000-7000-8000-000000000001",
		PageScrollPos: 600,
		LastStatus:    wire.PhaseAnimating,
		StatusKnown:   true,
		FreeScrolling: true,
		Seq:           42,
	}
	require.NoError(t, s.SaveSession(ctx, rec))

	got, err := s.LoadSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestSession_UnknownStatusIsNull(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "fresh", PageScrollPos: 10, Seq: 1}))

	var status *int64
	require.NoError(t, s.db.QueryRow(`SELECT last_status FROM sessions WHERE id = 'fresh'`).Scan(&status))
	assert.Nil(t, status)

	got, err := s.LoadSession(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, got.StatusKnown)
	assert.Equal(t, wire.PhaseBefore, got.LastStatus)
}

func TestSession_SaveReplaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "a", PageScrollPos: 10, Seq: 1}))
	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "a", PageScrollPos: 900, LastStatus: wire.PhaseAfter, StatusKnown: true, Seq: 9}))

	got, err := s.LoadSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(900), got.PageScrollPos)
	assert.Equal(t, wire.PhaseAfter, got.LastStatus)
	assert.Equal(t, int64(9), got.Seq)
}

func TestSession_LoadLatest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LoadLatestSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "old", PageScrollPos: 1, Seq: 3}))
	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "new", PageScrollPos: 2, Seq: 8}))

	got, err := s.LoadLatestSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)
}

func TestSession_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LoadSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Error(t, s.SaveSession(ctx, SessionRecord{}))
}
