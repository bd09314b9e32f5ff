package story

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrMissingID is returned when a document carries front matter without an id.
var ErrMissingID = errors.New("story: front matter has no id")

var frontMatterRe = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n`)

type frontMatter struct {
	ID        string     `yaml:"id"`
	Created   time.Time  `yaml:"created"`
	Updated   time.Time  `yaml:"updated,omitempty"`
	Discarded *time.Time `yaml:"discarded,omitempty"`
	Genre     string     `yaml:"genre,omitempty"`
}

// HasFrontMatter reports whether data starts with a YAML front matter block.
func HasFrontMatter(data []byte) bool {
	return frontMatterRe.Match(data)
}

// Marshal encodes the story as a Markdown document with YAML front matter.
func Marshal(s Story) ([]byte, error) {
	fm := frontMatter{
		ID:      s.ID.String(),
		Created: s.CreatedAt.UTC(),
		Updated: s.UpdatedAt.UTC(),
		Genre:   s.Genre,
	}
	if s.DiscardedAt != nil {
		at := s.DiscardedAt.UTC()
		fm.Discarded = &at
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("story: encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n")
	buf.WriteString(s.Text)
	return buf.Bytes(), nil
}

// Unmarshal decodes a document produced by Marshal.
//
// Documents without front matter are accepted as plain story text: they are
// given a new identifier and fallback as their creation time.
func Unmarshal(data []byte, fallback time.Time) (Story, error) {
	loc := frontMatterRe.FindSubmatchIndex(data)
	if loc == nil {
		return New(string(data), fallback), nil
	}

	var fm frontMatter
	if err := yaml.Unmarshal(data[loc[2]:loc[3]], &fm); err != nil {
		return Story{}, fmt.Errorf("story: parse front matter: %w", err)
	}
	if fm.ID == "" {
		return Story{}, ErrMissingID
	}
	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return Story{}, fmt.Errorf("story: parse id %q: %w", fm.ID, err)
	}

	s := Story{
		ID:        id,
		Text:      string(data[loc[1]:]),
		Genre:     fm.Genre,
		CreatedAt: fm.Created.UTC(),
		UpdatedAt: fm.Updated.UTC(),
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = fallback.UTC()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	if fm.Discarded != nil {
		at := fm.Discarded.UTC()
		s.DiscardedAt = &at
	}
	return s, nil
}
