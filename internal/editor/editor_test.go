package editor

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		editor string
		want   []string
	}{
		{editor: "nvim", want: []string{"nvim", "/tmp/x.md"}},
		{editor: "nano", want: []string{"nano", "/tmp/x.md"}},
		{editor: "code", want: []string{"code", "--wait", "/tmp/x.md"}},
		{editor: "vscode", want: []string{"code", "--wait", "/tmp/x.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.editor, func(t *testing.T) {
			cmd, err := Command(tt.editor, "/tmp/x.md")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Args)
		})
	}
}

func TestCommandFallsBackToEnvironment(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "micro -readonly false")

	cmd, err := Command("", "/tmp/x.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"micro", "-readonly", "false", "/tmp/x.md"}, cmd.Args)

	t.Setenv("EDITOR", "")
	_, err = Command("custom", "/tmp/x.md")
	assert.ErrorIs(t, err, ErrNoEditor)
}

func TestCommandRejectsUnknownEditor(t *testing.T) {
	_, err := Command("notepad", "/tmp/x.md")
	require.Error(t, err)
}

func TestEditReturnsSavedText(t *testing.T) {
	var path string
	run := func(cmd *exec.Cmd) error {
		path = cmd.Args[len(cmd.Args)-1]
		before, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(before, []byte(" and more")...), 0o644)
	}

	got, err := Edit("vim", "start", run)
	require.NoError(t, err)
	assert.Equal(t, "start and more", got)

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEditCleansUpOnFailure(t *testing.T) {
	var path string
	run := func(cmd *exec.Cmd) error {
		path = cmd.Args[len(cmd.Args)-1]
		return errors.New("editor crashed")
	}

	_, err := Edit("vim", "start", run)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}
