// Package cmdutil holds helpers shared by the jottr commands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/render"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
)

var ErrEmptyText = errors.New("story text cannot be empty")

// ParseNow reads a reference time given on the command line. Anything
// dateparse understands is accepted and interpreted in the local zone.
func ParseNow(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}

	t, err := dateparse.ParseLocal(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value %q: %w", value, err)
	}
	return t, nil
}

// ParseCategory validates a --category flag.
func ParseCategory(value string) (query.Category, error) {
	c, err := query.ParseCategory(value)
	if err != nil {
		return "", fmt.Errorf("invalid --category: %w", err)
	}
	return c, nil
}

// ResolveStory opens the configured store and finds the story named by ref.
func ResolveStory(ctx context.Context, s *state.State, ref string) (store.Store, story.Story, error) {
	st, err := s.Store(ctx)
	if err != nil {
		return nil, story.Story{}, err
	}

	r, err := store.Resolve(ctx, st, ref)
	if err != nil {
		return nil, story.Story{}, err
	}
	return st, r, nil
}

// ReadText returns the arguments joined by spaces, or the command's stdin when
// no arguments were given and stdin is not a terminal. ok is false when neither
// source provided anything.
func ReadText(cmd *cobra.Command, args []string) (text string, ok bool, err error) {
	if len(args) > 0 {
		return strings.Join(args, " "), true, nil
	}

	in := cmd.InOrStdin()
	if f, isFile := in.(*os.File); isFile && term.IsTerminal(int(f.Fd())) {
		return "", false, nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", false, fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

// Output returns the colour profile and width to use for the command's
// stdout.
func Output(cmd *cobra.Command) (termenv.Profile, int) {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return render.Profile(f), render.Width(f)
	}
	return termenv.Ascii, render.Width(nil)
}

// Styles returns render styles for the command's stdout.
func Styles(cmd *cobra.Command) render.Styles {
	profile, _ := Output(cmd)
	return render.NewStyles(cmd.OutOrStdout(), profile)
}

// EachStory resolves every ref before calling fn for each story, so a bad
// reference fails the command before anything is staged.
func EachStory(ctx context.Context, s *state.State, refs []string, fn func(store.Store, story.Story) error) (store.Store, error) {
	st, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}

	stories := make([]story.Story, 0, len(refs))
	for _, ref := range refs {
		r, err := store.Resolve(ctx, st, ref)
		if err != nil {
			return nil, err
		}
		stories = append(stories, r)
	}

	for _, r := range stories {
		if err := fn(st, r); err != nil {
			return nil, err
		}
	}
	return st, nil
}
