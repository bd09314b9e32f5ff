// Package views renders the category bar shown above story listings.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/jottr/internal/query"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true)
	activeViewStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0AF")).
			Padding(0, 1)
	inactiveViewStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 1)
	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			SetString("│")
	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0AF")).
			Bold(true)
)

// Tab is the label of category c, prefixed with its number key.
func Tab(c query.Category) string {
	for i, cat := range query.Categories {
		if cat == c {
			return fmt.Sprintf("[%d] %s", i+1, c.Label())
		}
	}
	return c.Label()
}

// CategoryForKey maps the number keys shown by Tab back to a category.
func CategoryForKey(key string) (query.Category, bool) {
	for i, cat := range query.Categories {
		if key == fmt.Sprint(i+1) {
			return cat, true
		}
	}
	return "", false
}

// GetTitleForView renders the category tabs with the active one highlighted,
// followed by the item count of res.
func GetTitleForView(active query.Category, res query.Result) string {
	var tabs []string
	for _, c := range query.Categories {
		if c == active {
			tabs = append(tabs, activeViewStyle.Render(Tab(c)))
		} else {
			tabs = append(tabs, inactiveViewStyle.Render(Tab(c)))
		}
	}

	viewLine := fmt.Sprintf("%s %s",
		titleStyle.Render("Stories:"),
		strings.Join(tabs, dividerStyle.String()),
	)

	return fmt.Sprintf("%s\n%s", viewLine, countStyle.Render(CountLabel(res)))
}

// CountLabel is "N Items", or "M of N Items" while a search is active.
func CountLabel(res query.Result) string {
	count := fmt.Sprintf("%d Items", res.Count())
	if res.Count() == 1 {
		count = "1 Item"
	}
	if res.Searching() {
		return fmt.Sprintf("%d of %s", len(res.Visible()), count)
	}
	return count
}
