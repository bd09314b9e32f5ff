package search

import (
	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/render"
	"github.com/Paintersrp/jottr/internal/story"
)

const dateLayout = "Jan 02 2006"

type storyItem struct {
	story story.Story
	match query.Match
	width int
}

func (i storyItem) Title() string {
	return i.story.Title()
}

// Description is the creation date followed by a snippet of the text with the
// search match highlighted.
func (i storyItem) Description() string {
	date := i.story.CreatedAt.Local().Format(dateLayout)
	if i.story.Genre != "" {
		date += " · " + i.story.Genre
	}
	width := i.width - len(date) - 3
	if width < 10 {
		width = 10
	}
	return date + " · " + render.Snippet(i.story.Text, i.match, width, matchStyle)
}

func (i storyItem) FilterValue() string {
	return i.story.Title()
}
