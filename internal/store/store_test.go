package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/store/memory"
	"github.com/Paintersrp/jottr/internal/story"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func withID(s story.Story, id string) story.Story {
	s.ID = uuid.MustParse(id)
	return s
}

func discardedAt(s story.Story, at time.Time) story.Story {
	s.DiscardedAt = &at
	return s
}

func TestSortNewestFirstBreaksTiesByID(t *testing.T) {
	a := withID(story.New("a", now), "aaaaaaaa-0000-0000-0000-000000000000")
	b := withID(story.New("b", now), "bbbbbbbb-0000-0000-0000-000000000000")
	c := story.New("c", now.Add(time.Minute))

	records := []story.Story{b, a, c}
	store.SortNewestFirst(records)

	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, []uuid.UUID{records[0].ID, records[1].ID, records[2].ID})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	a := withID(story.New("a", now), "abc12345-0000-0000-0000-000000000000")
	b := withID(story.New("b", now), "abd12345-0000-0000-0000-000000000000")
	st := memory.New(a, b)

	tests := []struct {
		name    string
		ref     string
		want    uuid.UUID
		wantErr error
	}{
		{name: "full id", ref: a.ID.String(), want: a.ID},
		{name: "unique prefix", ref: "abd", want: b.ID},
		{name: "upper case prefix", ref: "ABC1", want: a.ID},
		{name: "ambiguous prefix", ref: "ab", wantErr: store.ErrAmbiguous},
		{name: "no match", ref: "ffff", wantErr: store.ErrNotFound},
		{name: "empty", ref: "  ", wantErr: store.ErrNotFound},
		{name: "unknown full id", ref: uuid.NewString(), wantErr: store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Resolve(ctx, st, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestEmptyTrash(t *testing.T) {
	ctx := context.Background()
	keep := story.New("keep", now)
	drop1 := discardedAt(story.New("drop one", now), now)
	drop2 := discardedAt(story.New("drop two", now), now.Add(-time.Hour))
	st := memory.New(keep, drop1, drop2)

	n, err := store.EmptyTrash(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	committed := st.Committed()
	require.Len(t, committed, 1)
	assert.Equal(t, keep.ID, committed[0].ID)
	assert.False(t, st.Dirty())
}

func TestEmptyTrashNothingToDo(t *testing.T) {
	st := memory.New(story.New("keep", now))

	n, err := store.EmptyTrash(context.Background(), st)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	retention := 30 * 24 * time.Hour

	fresh := discardedAt(story.New("fresh", now), now.Add(-24*time.Hour))
	stale := discardedAt(story.New("stale", now), now.Add(-31*24*time.Hour))
	active := story.New("active", now.Add(-90*24*time.Hour))
	st := memory.New(fresh, stale, active)

	n, err := store.PurgeExpired(ctx, st, now, retention)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = st.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Get(ctx, fresh.ID)
	assert.NoError(t, err)
	_, err = st.Get(ctx, active.ID)
	assert.NoError(t, err)
}

func TestPurgeExpiredDisabled(t *testing.T) {
	stale := discardedAt(story.New("stale", now), now.Add(-365*24*time.Hour))
	st := memory.New(stale)

	n, err := store.PurgeExpired(context.Background(), st, now, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, st.Committed(), 1)
}
