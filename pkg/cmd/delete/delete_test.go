package delete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdtest"
)

func TestDeleteTrashedStory(t *testing.T) {
	gone := query.Discard(story.New("gone", cmdtest.Now), cmdtest.Now)
	keep := story.New("keep", cmdtest.Now)
	s, st := cmdtest.NewState(t, gone, keep)

	_, err := cmdtest.Execute(t, NewCmdDelete(s), gone.ShortID())
	require.NoError(t, err)

	all := st.Committed()
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)
}

func TestDeleteActiveStoryNeedsForce(t *testing.T) {
	keep := story.New("keep", cmdtest.Now)
	s, st := cmdtest.NewState(t, keep)

	_, err := cmdtest.Execute(t, NewCmdDelete(s), keep.ShortID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the trash")
	assert.Len(t, st.Committed(), 1)

	_, err = cmdtest.Execute(t, NewCmdDelete(s), "--force", keep.ShortID())
	require.NoError(t, err)
	assert.Empty(t, st.Committed())
}
