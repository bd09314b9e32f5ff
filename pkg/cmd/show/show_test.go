package show

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdtest"
)

func TestShowRendersStory(t *testing.T) {
	r := story.New("# Dawn\nThe ship left at **dawn**.", cmdtest.Now)
	s, _ := cmdtest.NewState(t, r)

	out, err := cmdtest.Execute(t, NewCmdShow(s), r.ShortID())
	require.NoError(t, err)
	assert.Contains(t, out, r.ShortID())
	assert.Contains(t, out, "The ship left at")
}

func TestShowRaw(t *testing.T) {
	r := story.New("# Dawn\nThe ship left at **dawn**.", cmdtest.Now)
	s, _ := cmdtest.NewState(t, r)

	out, err := cmdtest.Execute(t, NewCmdShow(s), "--raw", r.ID.String())
	require.NoError(t, err)
	assert.Equal(t, r.Text+"\n", out)
}

func TestShowUnknownStory(t *testing.T) {
	s, _ := cmdtest.NewState(t)

	_, err := cmdtest.Execute(t, NewCmdShow(s), "abc")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
