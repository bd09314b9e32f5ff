package root

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/jottr/internal/config"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdtest"
)

func TestRootRegistersCommands(t *testing.T) {
	s, _ := cmdtest.NewState(t)
	cmd, err := NewCmdRoot(s)
	require.NoError(t, err)

	for _, name := range []string{
		"init", "change-editor", "new", "list", "show", "open", "search", "edit",
		"discard", "restore", "delete", "empty-trash", "purge", "share", "continue", "sync",
	} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.NotEqual(t, cmd, found, name)
	}
}

func TestRootNowFlagPinsReferenceTime(t *testing.T) {
	r := story.New("# Voyage\nThe ship left at dawn.", cmdtest.Now.Add(-time.Hour))
	s, _ := cmdtest.NewState(t, r)
	cmd, err := NewCmdRoot(s)
	require.NoError(t, err)

	out, err := cmdtest.Execute(t, cmd, "list", "-c", "recent", "--now", "2024-07-01")
	require.NoError(t, err)
	assert.NotContains(t, out, "Voyage")
	assert.Equal(t, 2024, s.Now().Year())
	assert.Equal(t, time.July, s.Now().Month())
}

func TestRootRejectsBadNow(t *testing.T) {
	s, _ := cmdtest.NewState(t)
	cmd, err := NewCmdRoot(s)
	require.NoError(t, err)

	_, err = cmdtest.Execute(t, cmd, "list", "--now", "not a date")
	assert.ErrorContains(t, err, "invalid --now")
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	s, _ := cmdtest.NewState(t)
	cmd, err := NewCmdRoot(s)
	require.NoError(t, err)

	_, err = cmdtest.Execute(t, cmd, "list", "--editor", "hx", "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, "hx", s.Config.Editor)
	assert.Equal(t, "debug", s.Config.LogLevel)
}

func TestRootRejectsUnknownDriver(t *testing.T) {
	s, _ := cmdtest.NewState(t)
	cmd, err := NewCmdRoot(s)
	require.NoError(t, err)

	_, err = cmdtest.Execute(t, cmd, "list", "--driver", "sqlite")
	assert.ErrorIs(t, err, config.ErrUnknownDriver)
}
