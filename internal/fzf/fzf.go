package fzf

import (
	"errors"
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/jottr/internal/render"
	"github.com/Paintersrp/jottr/internal/story"
)

// ErrNoSelection is returned when the finder is aborted or given nothing to
// choose from.
var ErrNoSelection = errors.New("no story selected")

type findFunc func(slice any, itemFunc func(int) string, opts ...fuzzyfinder.Option) (int, error)

// FuzzyFinder picks a story by fuzzy matching its title and short id.
type FuzzyFinder struct {
	Header  string
	preview *render.Previewer
	stories []story.Story
	find    findFunc
}

func NewFuzzyFinder(stories []story.Story, preview *render.Previewer, header string) *FuzzyFinder {
	return &FuzzyFinder{
		Header:  header,
		preview: preview,
		stories: stories,
		find:    fuzzyfinder.Find,
	}
}

// Run shows the finder, seeded with query when it is not empty.
func (f *FuzzyFinder) Run(query string) (story.Story, error) {
	if len(f.stories) == 0 {
		return story.Story{}, ErrNoSelection
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.renderPreview),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}
	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}

	idx, err := f.find(f.stories, f.label, options...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return story.Story{}, ErrNoSelection
		}
		return story.Story{}, fmt.Errorf("error selecting story: %w", err)
	}
	if idx < 0 || idx >= len(f.stories) {
		return story.Story{}, ErrNoSelection
	}

	return f.stories[idx], nil
}

func (f *FuzzyFinder) label(i int) string {
	s := f.stories[i]
	label := fmt.Sprintf("%s %s", s.ShortID(), s.Title())
	if s.Genre != "" {
		label += fmt.Sprintf(" [%s]", s.Genre)
	}
	if s.IsDiscarded() {
		label += " (trash)"
	}
	return label
}

func (f *FuzzyFinder) renderPreview(i, w, h int) string {
	if i == -1 {
		return ""
	}
	if f.preview == nil {
		return f.stories[i].Text
	}

	out, err := f.preview.Render(f.stories[i], w-4)
	if err != nil {
		return "Error rendering markdown"
	}
	return out
}
