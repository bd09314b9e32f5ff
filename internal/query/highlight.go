package query

import (
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Paintersrp/jottr/internal/story"
)

// Range is a half-open byte range [Start, End) into a story's text.
type Range struct {
	Start int
	End   int
}

// Len returns the width of the range in bytes.
func (r Range) Len() int {
	return r.End - r.Start
}

// Match is the highlight outcome for a single story.
type Match struct {
	ID    uuid.UUID
	Range Range
	Found bool
}

// Matches holds one Match per story, in the order the stories were given.
type Matches []Match

// Lookup returns the highlighted range for id, if any.
func (m Matches) Lookup(id uuid.UUID) (Range, bool) {
	for _, match := range m {
		if match.ID == id {
			return match.Range, match.Found
		}
	}
	return Range{}, false
}

// Count returns the number of stories with a match.
func (m Matches) Count() int {
	n := 0
	for _, match := range m {
		if match.Found {
			n++
		}
	}
	return n
}

// Highlight locates the first case-insensitive occurrence of term in every
// story. An empty term matches nothing.
func Highlight(records []story.Story, term string) Matches {
	out := make(Matches, 0, len(records))
	for _, s := range records {
		r, ok := Find(s.Text, term)
		out = append(out, Match{ID: s.ID, Range: r, Found: ok})
	}
	return out
}

// Find returns the byte range of the first case-insensitive occurrence of term
// in text. Letters are compared with Unicode simple case folding, so the
// matched range may differ in byte length from term.
func Find(text, term string) (Range, bool) {
	if term == "" {
		return Range{}, false
	}

	for start := 0; start < len(text); {
		if end, ok := matchAt(text, start, term); ok {
			return Range{Start: start, End: end}, true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		start += size
	}
	return Range{}, false
}

func matchAt(text string, start int, term string) (int, bool) {
	i := start
	for _, want := range term {
		if i >= len(text) {
			return 0, false
		}
		got, size := utf8.DecodeRuneInString(text[i:])
		if !foldEqual(got, want) {
			return 0, false
		}
		i += size
	}
	return i, true
}

func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}
