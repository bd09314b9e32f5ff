// Package story defines the narrative record kept by jottr.
package story

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Story is a single stored narrative entry.
//
// CreatedAt is assigned once by New and is never changed afterwards. A nil
// DiscardedAt means the story is active; a non-nil value means it has been
// moved to the trash.
type Story struct {
	ID          uuid.UUID
	Text        string
	Genre       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DiscardedAt *time.Time
}

// New creates an active story with a fresh identifier.
func New(content string, now time.Time) Story {
	now = now.UTC()
	return Story{
		ID:        uuid.New(),
		Text:      content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsDiscarded reports whether the story has been soft-deleted.
func (s Story) IsDiscarded() bool {
	return s.DiscardedAt != nil
}

// ShortID returns the first eight characters of the identifier, which is what
// the CLI prints and accepts as a reference.
func (s Story) ShortID() string {
	return s.ID.String()[:8]
}

// WithText returns a copy of the story with replaced content.
func (s Story) WithText(content string, now time.Time) Story {
	s.Text = content
	s.UpdatedAt = now.UTC()
	return s
}

// Touch moves UpdatedAt forward to at. Earlier times are ignored so a
// lifecycle change never makes a story look older than its last edit.
func (s *Story) Touch(at time.Time) {
	if at = at.UTC(); at.After(s.UpdatedAt) {
		s.UpdatedAt = at
	}
}

// Title returns the first Markdown heading of the story, falling back to the
// first non-empty line of text.
func (s Story) Title() string {
	source := []byte(s.Text)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var heading string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			heading = strings.TrimSpace(string(headingText(h, source)))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if heading != "" {
		return heading
	}

	for _, line := range strings.Split(s.Text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return "Untitled"
}

func headingText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		buf.Write(headingText(c, source))
	}
	return buf.Bytes()
}
