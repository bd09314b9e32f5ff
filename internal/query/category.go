package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is reported by strict engines and by ParseCategory.
var ErrUnknownCategory = errors.New("unknown category")

// Category selects which part of the story collection is shown.
type Category string

const (
	All    Category = "all"
	Recent Category = "recent"
	Trash  Category = "trash"
)

// Categories lists the selectable categories in display order.
var Categories = []Category{All, Recent, Trash}

var categoryLabels = map[Category]string{
	All:    "All",
	Recent: "Recently",
	Trash:  "Trash",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the human facing name of the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}

// Next returns the category after c in display order, wrapping around.
func (c Category) Next() Category {
	for i, candidate := range Categories {
		if candidate == c {
			return Categories[(i+1)%len(Categories)]
		}
	}
	return All
}

// Prev returns the category before c in display order, wrapping around.
func (c Category) Prev() Category {
	for i, candidate := range Categories {
		if candidate == c {
			return Categories[(i+len(Categories)-1)%len(Categories)]
		}
	}
	return All
}

// ParseCategory resolves a category name case-insensitively. "Recently" is
// accepted as an alias of Recent.
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "all", "":
		return All, nil
	case "recent", "recently":
		return Recent, nil
	case "trash":
		return Trash, nil
	}
	return "", fmt.Errorf("%w: %q (choose from all, recent, trash)", ErrUnknownCategory, name)
}
