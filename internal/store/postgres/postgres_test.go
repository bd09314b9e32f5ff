package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("JOTTR_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("JOTTR_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	st, err := Open(ctx, url, zerolog.Nop())
	require.NoError(t, err)

	_, err = st.pool.Exec(ctx, `TRUNCATE stories`)
	require.NoError(t, err)

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRowConversion(t *testing.T) {
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.FixedZone("X", 3600))
	r := row{
		ID:          uuid.New(),
		Text:        "text",
		CreatedAt:   at,
		UpdatedAt:   at,
		DiscardedAt: &at,
	}

	s := r.story()
	assert.Equal(t, time.UTC, s.CreatedAt.Location())
	require.True(t, s.IsDiscarded())
	assert.True(t, at.Equal(*s.DiscardedAt))
}

func TestLifecycle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	s := story.New("Once upon a time", now)
	require.NoError(t, st.Put(ctx, s))
	require.NoError(t, st.Persist(ctx))

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Text, got.Text)
	assert.False(t, got.IsDiscarded())

	require.NoError(t, st.MarkDiscarded(ctx, s.ID, now))
	got, err = st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDiscarded())
	require.NoError(t, st.Persist(ctx))

	later := now.Add(time.Hour)
	require.NoError(t, st.Restore(ctx, s.ID, later))
	require.NoError(t, st.Persist(ctx))
	got, err = st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, later.Equal(got.UpdatedAt))

	require.NoError(t, st.HardDelete(ctx, s.ID))
	require.NoError(t, st.Persist(ctx))

	_, err = st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMissingStoryIsNotFound(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, st.Restore(ctx, uuid.New(), time.Now()), store.ErrNotFound)
}

func TestListAllNewestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	older := story.New("older", now.Add(-time.Hour))
	newer := story.New("newer", now)
	require.NoError(t, st.Put(ctx, older))
	require.NoError(t, st.Put(ctx, newer))
	require.NoError(t, st.Persist(ctx))

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
}

func TestFailedChangeKeepsStoreUsable(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	kept := story.New("kept", now)
	require.NoError(t, st.Put(ctx, kept))

	// Postgres rejects NUL bytes in text columns.
	bad := story.New("bad\x00text", now)
	require.Error(t, st.Put(ctx, bad))

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)

	require.NoError(t, st.Persist(ctx))
	got, err := st.Get(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Text)
}
