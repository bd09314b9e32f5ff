package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newVault(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	st, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st, dir
}

func TestNewRejectsEmptyDir(t *testing.T) {
	_, err := New("  ", zerolog.Nop())
	require.Error(t, err)
}

func TestPutIsStagedUntilPersist(t *testing.T) {
	ctx := context.Background()
	st, dir := newVault(t)

	s := story.New("# Dawn\nThe ship left at dawn.", now)
	require.NoError(t, st.Put(ctx, s))

	_, err := os.Stat(filepath.Join(dir, s.ID.String()+".md"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Text, got.Text)

	require.NoError(t, st.Persist(ctx))
	_, err = os.Stat(filepath.Join(dir, s.ID.String()+".md"))
	require.NoError(t, err)
}

func TestReopenReadsPersistedStories(t *testing.T) {
	ctx := context.Background()
	st, dir := newVault(t)

	older := story.New("older", now.Add(-time.Hour))
	newer := story.New("newer", now)
	require.NoError(t, st.Put(ctx, older))
	require.NoError(t, st.Put(ctx, newer))
	require.NoError(t, st.Persist(ctx))
	require.NoError(t, st.Close())

	reopened, err := New(dir, zerolog.Nop())
	require.NoError(t, err)

	all, err := reopened.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)
	assert.True(t, older.CreatedAt.Equal(all[1].CreatedAt))
}

func TestDiscardMovesFileToTrash(t *testing.T) {
	ctx := context.Background()
	st, dir := newVault(t)

	s := story.New("gone soon", now)
	require.NoError(t, st.Put(ctx, s))
	require.NoError(t, st.Persist(ctx))

	require.NoError(t, st.MarkDiscarded(ctx, s.ID, now))
	require.NoError(t, st.Persist(ctx))

	_, err := os.Stat(filepath.Join(dir, s.ID.String()+".md"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, TrashDir, s.ID.String()+".md"))
	require.NoError(t, err)

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, got.IsDiscarded())
	assert.True(t, now.Equal(*got.DiscardedAt))

	later := now.Add(time.Hour)
	require.NoError(t, st.Restore(ctx, s.ID, later))
	require.NoError(t, st.Persist(ctx))

	got, err = st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, later.Equal(got.UpdatedAt))

	_, err = os.Stat(filepath.Join(dir, s.ID.String()+".md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, TrashDir, s.ID.String()+".md"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHardDeleteRemovesFile(t *testing.T) {
	ctx := context.Background()
	st, dir := newVault(t)

	s := story.New("doomed", now)
	require.NoError(t, st.Put(ctx, s))
	require.NoError(t, st.Persist(ctx))

	require.NoError(t, st.HardDelete(ctx, s.ID))
	_, err := st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Persist(ctx))
	_, err = os.Stat(filepath.Join(dir, s.ID.String()+".md"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMissingStory(t *testing.T) {
	ctx := context.Background()
	st, _ := newVault(t)

	_, err := st.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.MarkDiscarded(ctx, uuid.New(), now), store.ErrNotFound)
	assert.ErrorIs(t, st.HardDelete(ctx, uuid.New()), store.ErrNotFound)
}

func TestPlainMarkdownFilesGetStableIDs(t *testing.T) {
	ctx := context.Background()
	st, dir := newVault(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "imported.md"), []byte("# Imported\nhello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TrashDir, "old.md"), []byte("old words"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a story"), 0o644))

	first, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first[0].ID, first[1].ID}, []uuid.UUID{second[0].ID, second[1].ID})

	var discarded int
	for _, s := range first {
		if s.IsDiscarded() {
			discarded++
			assert.Equal(t, "old words", s.Text)
		}
	}
	assert.Equal(t, 1, discarded)
}

func TestPersistRewritesImportedFileUnderID(t *testing.T) {
	ctx := context.Background()
	st, dir := newVault(t)

	path := filepath.Join(dir, "imported.md")
	require.NoError(t, os.WriteFile(path, []byte("hand written"), 0o644))

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, st.MarkDiscarded(ctx, all[0].ID, now))
	require.NoError(t, st.Persist(ctx))

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, TrashDir, all[0].ID.String()+".md"))
	require.NoError(t, err)
}

func TestHiddenEntriesAreSkipped(t *testing.T) {
	ctx := context.Background()
	st, dir := newVault(t)

	hidden := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(hidden, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(hidden, "x.md"), []byte("nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".draft.md"), []byte("nope"), 0o644))

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	st, _ := newVault(t)
	require.NoError(t, st.Close())

	_, err := st.ListAll(ctx)
	assert.ErrorIs(t, err, store.ErrClosed)
	assert.ErrorIs(t, st.Put(ctx, story.New("x", now)), store.ErrClosed)
	assert.NoError(t, st.Close())
}

func TestEmptyTrashThroughVault(t *testing.T) {
	ctx := context.Background()
	st, dir := newVault(t)

	keep := story.New("keep", now)
	drop := story.New("drop", now)
	require.NoError(t, st.Put(ctx, keep))
	require.NoError(t, st.Put(ctx, drop))
	require.NoError(t, st.MarkDiscarded(ctx, drop.ID, now))
	require.NoError(t, st.Persist(ctx))

	n, err := store.EmptyTrash(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := os.ReadDir(filepath.Join(dir, TrashDir))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
