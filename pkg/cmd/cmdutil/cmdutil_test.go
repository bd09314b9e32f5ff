package cmdutil

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/config"
	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/store/memory"
	"github.com/Paintersrp/jottr/internal/story"
)

func TestParseNow(t *testing.T) {
	got, err := ParseNow("2024-06-15 12:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 15, 12, 30, 0, 0, time.Local), got)

	got, err = ParseNow("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseNow("not a date")
	require.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Recently")
	require.NoError(t, err)
	assert.Equal(t, query.Recent, c)

	_, err = ParseCategory("archive")
	assert.ErrorIs(t, err, query.ErrUnknownCategory)
}

func TestReadText(t *testing.T) {
	cmd := &cobra.Command{}

	text, ok, err := ReadText(cmd, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a b", text)

	cmd.SetIn(bytes.NewBufferString("from stdin\n"))
	text, ok, err = ReadText(cmd, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from stdin\n", text)

	cmd.SetIn(&bytes.Buffer{})
	_, ok, err = ReadText(cmd, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEachStoryResolvesAllRefsFirst(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	a := story.New("a", now)
	cfg := config.Default(t.TempDir())
	cfg.Store.Driver = config.DriverMemory
	s := state.New(cfg, state.WithStore(memory.New(a)))

	var seen int
	_, err := EachStory(context.Background(), s, []string{a.ShortID(), "ffffffff"}, func(store.Store, story.Story) error {
		seen++
		return nil
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, seen)

	_, err = EachStory(context.Background(), s, []string{a.ID.String()}, func(_ store.Store, r story.Story) error {
		seen++
		assert.Equal(t, a.ID, r.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}
