package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/Paintersrp/jottr/internal/cache"
	"github.com/Paintersrp/jottr/internal/story"
)

const defaultPreviewCache = 64

// Previewer renders story Markdown with glamour and keeps recent renders.
type Previewer struct {
	cache   *cache.LRU[string, string]
	profile termenv.Profile
	style   string
}

func NewPreviewer(size int, profile termenv.Profile) (*Previewer, error) {
	if size <= 0 {
		size = defaultPreviewCache
	}
	c, err := cache.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview cache: %w", err)
	}

	style := "dracula"
	if profile == termenv.Ascii {
		style = "notty"
	}

	return &Previewer{cache: c, profile: profile, style: style}, nil
}

// Render returns the story rendered for the given wrap width.
func (p *Previewer) Render(s story.Story, width int) (string, error) {
	if width <= 0 {
		width = defaultWidth
	}

	key := fmt.Sprintf("%s:%d:%d", s.ID, s.UpdatedAt.UnixNano(), width)
	if out, ok := p.cache.Get(key); ok {
		return out, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(p.style),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(p.profile),
	)
	if err != nil {
		return "", err
	}

	out, err := r.Render(s.Text)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", s.ShortID(), err)
	}

	p.cache.Put(key, out)
	return out, nil
}

// Cached reports how many renders are held.
func (p *Previewer) Cached() int {
	return p.cache.Len()
}
