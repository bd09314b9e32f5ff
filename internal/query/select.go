// Package query filters story collections by category and locates search
// matches for highlighting.
//
// Every function in this package is pure: inputs are never mutated and the
// reference time is always passed in by the caller.
package query

import (
	"time"

	"github.com/google/uuid"

	"github.com/Paintersrp/jottr/internal/story"
)

// RecentWindow is how far back the Recent category reaches (604,800 seconds).
const RecentWindow = 7 * 24 * time.Hour

// Select returns the stories belonging to category c, preserving input order.
// An unknown category selects nothing.
func Select(records []story.Story, c Category, now time.Time) []story.Story {
	out := make([]story.Story, 0, len(records))

	keep := predicate(c, now)
	if keep == nil {
		return out
	}

	for _, s := range records {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func predicate(c Category, now time.Time) func(story.Story) bool {
	switch c {
	case All:
		return func(s story.Story) bool {
			return !s.IsDiscarded()
		}
	case Recent:
		cutoff := now.Add(-RecentWindow)
		return func(s story.Story) bool {
			return !s.IsDiscarded() && s.CreatedAt.After(cutoff)
		}
	case Trash:
		return func(s story.Story) bool {
			return s.IsDiscarded()
		}
	default:
		return nil
	}
}

// Discard marks the story as discarded at now. An already discarded story is
// returned unchanged and keeps its original discard time.
func Discard(s story.Story, now time.Time) story.Story {
	if s.IsDiscarded() {
		return s
	}
	at := now.UTC()
	s.DiscardedAt = &at
	s.Touch(at)
	return s
}

// Restore brings a discarded story back to the active state at now.
func Restore(s story.Story, now time.Time) story.Story {
	if !s.IsDiscarded() {
		return s
	}
	s.DiscardedAt = nil
	s.Touch(now)
	return s
}

// Remove drops the story with the given id from an in-memory result list,
// typically after the store has hard-deleted it.
func Remove(records []story.Story, id uuid.UUID) []story.Story {
	out := make([]story.Story, 0, len(records))
	for _, s := range records {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}
