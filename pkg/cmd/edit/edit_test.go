package edit

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdtest"
)

func stubEditor(t *testing.T, fn func(path string) error) {
	t.Helper()
	orig := runEditor
	runEditor = func(cmd *exec.Cmd) error {
		return fn(cmd.Args[len(cmd.Args)-1])
	}
	t.Cleanup(func() { runEditor = orig })
}

func TestEditSavesChangedText(t *testing.T) {
	r := story.New("first draft", cmdtest.Now.Add(-48*time.Hour))
	s, st := cmdtest.NewState(t, r)
	s.Config.Editor = "nano"

	stubEditor(t, func(path string) error {
		return os.WriteFile(path, []byte("second draft"), 0o644)
	})

	out, err := cmdtest.Execute(t, NewCmdEdit(s), r.ShortID())
	require.NoError(t, err)
	assert.Contains(t, out, "Saved")

	got, err := st.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "second draft", got.Text)
	assert.True(t, r.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, cmdtest.Now.Equal(got.UpdatedAt))
}

func TestEditWithoutChanges(t *testing.T) {
	r := story.New("same", cmdtest.Now)
	s, st := cmdtest.NewState(t, r)
	s.Config.Editor = "nano"

	stubEditor(t, func(string) error { return nil })

	out, err := cmdtest.Execute(t, NewCmdEdit(s), r.ShortID())
	require.NoError(t, err)
	assert.Contains(t, out, "No changes")
	assert.False(t, st.Dirty())
}

func TestEditRefusesTrashedStory(t *testing.T) {
	r := query.Discard(story.New("gone", cmdtest.Now), cmdtest.Now)
	s, _ := cmdtest.NewState(t, r)

	stubEditor(t, func(string) error {
		t.Fatal("editor should not be opened")
		return nil
	})

	_, err := cmdtest.Execute(t, NewCmdEdit(s), r.ShortID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore it first")
}
