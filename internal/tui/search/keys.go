package search

import "github.com/charmbracelet/bubbles/key"

type listKeyMap struct {
	focusSearch    key.Binding
	blurSearch     key.Binding
	clearSearch    key.Binding
	nextCategory   key.Binding
	prevCategory   key.Binding
	switchToAll    key.Binding
	switchToRecent key.Binding
	switchToTrash  key.Binding
	togglePreview  key.Binding
	toggleHelp     key.Binding
	quit           key.Binding
}

func newListKeyMap() *listKeyMap {
	return &listKeyMap{
		focusSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		blurSearch: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("↵/esc", "done"),
		),
		clearSearch: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
		nextCategory: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next category"),
		),
		prevCategory: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev category"),
		),
		switchToAll: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "all"),
		),
		switchToRecent: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "recently"),
		),
		switchToTrash: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "trash"),
		),
		togglePreview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preview"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "toggle help"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (m listKeyMap) fullHelp() []key.Binding {
	return []key.Binding{
		m.focusSearch,
		m.clearSearch,
		m.nextCategory,
		m.prevCategory,
		m.switchToAll,
		m.switchToRecent,
		m.switchToTrash,
		m.togglePreview,
		m.toggleHelp,
	}
}
