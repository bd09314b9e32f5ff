// Package export turns stories into shareable text, Markdown or HTML.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Paintersrp/jottr/internal/story"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	HTML     Format = "html"
)

var Formats = []Format{Text, Markdown, HTML}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "html":
		return HTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Render returns the story encoded in format f. Markdown keeps the front
// matter so the file can be imported into another vault.
func Render(s story.Story, f Format) ([]byte, error) {
	switch f {
	case Text:
		return []byte(strings.TrimRight(s.Text, "\n") + "\n"), nil
	case Markdown:
		return story.Marshal(s)
	case HTML:
		var body bytes.Buffer
		if err := md.Convert([]byte(s.Text), &body); err != nil {
			return nil, fmt.Errorf("convert %s: %w", s.ShortID(), err)
		}

		var out bytes.Buffer
		fmt.Fprintf(&out, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n<article>\n",
			html.EscapeString(s.Title()))
		out.Write(body.Bytes())
		out.WriteString("</article>\n</body>\n</html>\n")
		return out.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Write renders s to w.
func Write(w io.Writer, s story.Story, f Format) error {
	data, err := Render(s, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Clipboard is the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// SystemClipboard returns the clipboard backed by the host's copy utilities.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

// Copy renders s and places it on the clipboard.
func Copy(cb Clipboard, s story.Story, f Format) error {
	data, err := Render(s, f)
	if err != nil {
		return err
	}
	return cb.WriteAll(string(data))
}
