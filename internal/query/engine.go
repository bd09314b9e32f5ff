package query

import (
	"fmt"
	"time"

	"github.com/Paintersrp/jottr/internal/story"
)

// Engine bundles Select and Highlight behind an injected clock so callers can
// recompute a view whenever the category, the search term or the underlying
// collection changes.
type Engine struct {
	now    func() time.Time
	strict bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the function used as the reference time for Recent.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithStrict makes Query fail with ErrUnknownCategory instead of returning an
// empty result for unknown categories.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// NewEngine returns an engine using time.Now unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's reference time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Result is a computed view over a story snapshot.
type Result struct {
	Category Category
	Term     string
	At       time.Time
	Stories  []story.Story
	Matches  Matches
}

// Count returns the number of stories in the selected category.
func (r Result) Count() int {
	return len(r.Stories)
}

// Searching reports whether a search term is active.
func (r Result) Searching() bool {
	return r.Term != ""
}

// Visible returns the stories to display: every selected story when no term is
// active, otherwise only those with a match.
func (r Result) Visible() []story.Story {
	if !r.Searching() {
		return r.Stories
	}
	out := make([]story.Story, 0, len(r.Stories))
	for i, s := range r.Stories {
		if r.Matches[i].Found {
			out = append(out, s)
		}
	}
	return out
}

// Query selects records in category c and highlights term within them.
func (e *Engine) Query(records []story.Story, c Category, term string) (Result, error) {
	if e.strict && !c.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}

	now := e.now()
	selected := Select(records, c, now)
	return Result{
		Category: c,
		Term:     term,
		At:       now,
		Stories:  selected,
		Matches:  Highlight(selected, term),
	}, nil
}
