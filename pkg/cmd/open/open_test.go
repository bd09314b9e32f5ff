package open

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/fzf"
	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/render"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdtest"
)

type fakePicker struct {
	stories []story.Story
	header  string
	query   string
	pick    int
}

func (f *fakePicker) Run(query string) (story.Story, error) {
	f.query = query
	if f.pick < 0 {
		return story.Story{}, fzf.ErrNoSelection
	}
	return f.stories[f.pick], nil
}

func stub(t *testing.T, pick int) *fakePicker {
	t.Helper()
	f := &fakePicker{pick: pick}
	orig := newPicker
	newPicker = func(stories []story.Story, _ *render.Previewer, header string) picker {
		f.stories = stories
		f.header = header
		return f
	}
	t.Cleanup(func() { newPicker = orig })
	return f
}

func TestOpenPrintsPickedStory(t *testing.T) {
	a := story.New("# Dawn\nfirst", cmdtest.Now)
	gone := query.Discard(story.New("# Wreck\nsunk", cmdtest.Now), cmdtest.Now)
	s, _ := cmdtest.NewState(t, a, gone)
	f := stub(t, 0)

	out, err := cmdtest.Execute(t, NewCmdOpen(s), "--raw", "dawn")
	require.NoError(t, err)
	assert.Equal(t, "# Dawn\nfirst\n", out)
	assert.Equal(t, "dawn", f.query)
	assert.Equal(t, "All (1)", f.header)
	require.Len(t, f.stories, 1)
}

func TestOpenTrashCategory(t *testing.T) {
	gone := query.Discard(story.New("# Wreck\nsunk", cmdtest.Now), cmdtest.Now)
	s, _ := cmdtest.NewState(t, gone)
	f := stub(t, 0)

	_, err := cmdtest.Execute(t, NewCmdOpen(s), "--raw", "-c", "trash")
	require.NoError(t, err)
	assert.Equal(t, "Trash (1)", f.header)
}

func TestOpenAborted(t *testing.T) {
	s, _ := cmdtest.NewState(t, story.New("x", cmdtest.Now))
	stub(t, -1)

	out, err := cmdtest.Execute(t, NewCmdOpen(s))
	require.NoError(t, err)
	assert.Equal(t, "No story selected\n", out)
}
