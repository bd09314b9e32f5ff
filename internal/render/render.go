// Package render formats query results for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/story"
)

const (
	defaultWidth = 80
	ellipsis     = "…"
	dateLayout   = "Jan 02 2006 15:04"
)

// Profile picks the colour profile for f: 256 colours on a terminal, plain
// text otherwise.
func Profile(f *os.File) termenv.Profile {
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return termenv.ANSI256
	}
	return termenv.Ascii
}

// Width returns the terminal width of f, or a default when f is not a
// terminal.
func Width(f *os.File) int {
	if f == nil {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

type Styles struct {
	Header lipgloss.Style
	Count  lipgloss.Style
	ID     lipgloss.Style
	Title  lipgloss.Style
	Meta   lipgloss.Style
	Match  lipgloss.Style
}

// NewStyles builds the styles for output written to w with the given profile.
func NewStyles(w io.Writer, profile termenv.Profile) Styles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)

	return Styles{
		Header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#0AF")),
		Count:  r.NewStyle().Foreground(lipgloss.Color("#666666")),
		ID:     r.NewStyle().Foreground(lipgloss.Color("#cba6f7")),
		Title:  r.NewStyle().Bold(true),
		Meta:   r.NewStyle().Foreground(lipgloss.Color("#666666")),
		Match: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000")).
			Background(lipgloss.Color("#FFD700")),
	}
}

// Mark renders text with the matched range styled. Text is returned unchanged
// when the match was not found or its range does not fit the text.
func Mark(text string, m query.Match, style lipgloss.Style) string {
	if !validRange(text, m) {
		return text
	}
	r := m.Range
	return text[:r.Start] + style.Render(text[r.Start:r.End]) + text[r.End:]
}

// Snippet returns a single line of at most width cells taken from text. When
// the match was found the window is positioned so the highlighted term is
// visible.
func Snippet(text string, m query.Match, width int, style lipgloss.Style) string {
	if width <= 0 {
		width = defaultWidth
	}
	flat := flatten(text)

	if !validRange(flat, m) {
		return truncate.StringWithTail(strings.TrimSpace(flat), uint(width), ellipsis)
	}

	start := m.Range.Start - width/3
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(flat[start]) {
		start--
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	window := m
	window.Range = query.Range{Start: m.Range.Start - start, End: m.Range.End - start}
	b.WriteString(Mark(flat[start:], window, style))

	return truncate.StringWithTail(b.String(), uint(width), ellipsis)
}

// Header is the summary line shown above a listing.
func Header(res query.Result, styles Styles) string {
	count := fmt.Sprintf("%d Items", res.Count())
	if res.Count() == 1 {
		count = "1 Item"
	}
	if res.Searching() {
		count = fmt.Sprintf("%d of %s match %q", len(res.Visible()), count, res.Term)
	}
	return styles.Header.Render(res.Category.Label()) + " " + styles.Count.Render(count)
}

// WriteList prints the result header followed by one entry per visible story.
func WriteList(w io.Writer, res query.Result, width int, styles Styles) error {
	if _, err := fmt.Fprintln(w, Header(res, styles)); err != nil {
		return err
	}

	for _, s := range res.Visible() {
		r, found := res.Matches.Lookup(s.ID)
		m := query.Match{ID: s.ID, Range: r, Found: found}
		if _, err := fmt.Fprintln(w, Line(s, styles)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "  "+Snippet(s.Text, m, width-2, styles.Match)); err != nil {
			return err
		}
	}
	return nil
}

// Line is the one-line summary of a story: short id, date and title.
func Line(s story.Story, styles Styles) string {
	date := s.CreatedAt.Local().Format(dateLayout)
	if s.IsDiscarded() {
		date += " (discarded " + s.DiscardedAt.Local().Format(dateLayout) + ")"
	}
	return fmt.Sprintf(
		"%s %s %s",
		styles.ID.Render(s.ShortID()),
		styles.Meta.Render(date),
		styles.Title.Render(s.Title()),
	)
}

func validRange(text string, m query.Match) bool {
	r := m.Range
	return m.Found && r.Start >= 0 && r.Start < r.End && r.End <= len(text)
}

// flatten replaces line breaks and tabs with spaces. It works on bytes so
// the result has the same length as text and match offsets stay valid even
// when text is not valid UTF-8.
func flatten(text string) string {
	b := []byte(text)
	for i, c := range b {
		switch c {
		case '\n', '\r', '\t':
			b[i] = ' '
		}
	}
	return string(b)
}
