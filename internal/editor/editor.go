// Package editor opens story text in the user's editor.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var ErrNoEditor = errors.New("editor not configured")

// Command builds the process that edits path with the named editor and waits
// for it to exit. An empty name or "custom" falls back to $VISUAL and $EDITOR.
func Command(editor, path string) (*exec.Cmd, error) {
	switch editor {
	case "nvim", "vim", "nano", "emacs", "hx":
		return exec.Command(editor, path), nil
	case "vscode", "code":
		return exec.Command("code", "--wait", path), nil
	case "", "custom":
		return fromEnv(path)
	default:
		return nil, fmt.Errorf("unsupported editor: %s", editor)
	}
}

func fromEnv(path string) (*exec.Cmd, error) {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		fields := strings.Fields(os.Getenv(name))
		if len(fields) == 0 {
			continue
		}
		args := append(fields[1:], path)
		return exec.Command(fields[0], args...), nil
	}
	return nil, ErrNoEditor
}

// Session is a temporary file being edited.
type Session struct {
	Cmd  *exec.Cmd
	Path string
}

// NewSession writes initial to a temporary Markdown file and prepares the
// editor command for it.
func NewSession(editor, initial string) (*Session, error) {
	f, err := os.CreateTemp("", "jottr-*.md")
	if err != nil {
		return nil, err
	}
	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}

	cmd, err := Command(editor, f.Name())
	if err != nil {
		os.Remove(f.Name())
		return nil, err
	}

	return &Session{Cmd: cmd, Path: f.Name()}, nil
}

// Result reads the edited text and removes the temporary file.
func (s *Session) Result() (string, error) {
	defer os.Remove(s.Path)

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Discard removes the temporary file without reading it.
func (s *Session) Discard() {
	os.Remove(s.Path)
}

// Run starts the command attached to the current terminal and waits for it.
func Run(cmd *exec.Cmd) error {
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting editor: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("error waiting for editor to close: %w", err)
	}
	return nil
}

// Edit opens initial in the editor and returns the saved text. run is
// usually Run; tests substitute their own.
func Edit(editor, initial string, run func(*exec.Cmd) error) (string, error) {
	s, err := NewSession(editor, initial)
	if err != nil {
		return "", err
	}
	if err := run(s.Cmd); err != nil {
		s.Discard()
		return "", err
	}
	return s.Result()
}
