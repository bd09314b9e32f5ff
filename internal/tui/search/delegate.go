package search

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"

	"github.com/Paintersrp/jottr/internal/query"
)

type delegateKeyMap struct {
	edit       key.Binding
	discard    key.Binding
	restore    key.Binding
	delete     key.Binding
	emptyTrash key.Binding
}

func newDelegateKeyMap() *delegateKeyMap {
	return &delegateKeyMap{
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		discard: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "discard"),
		),
		restore: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "restore"),
		),
		delete: key.NewBinding(
			key.WithKeys("D", "delete"),
			key.WithHelp("D", "delete forever"),
		),
		emptyTrash: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "empty trash"),
		),
	}
}

// forCategory enables the actions that apply to stories shown in c. Active
// stories can be discarded; only stories in the trash can be restored or
// deleted.
func (k *delegateKeyMap) forCategory(c query.Category) {
	trash := c == query.Trash
	k.discard.SetEnabled(!trash)
	k.edit.SetEnabled(!trash)
	k.restore.SetEnabled(trash)
	k.delete.SetEnabled(trash)
	k.emptyTrash.SetEnabled(trash)
}

func newItemDelegate(keys *delegateKeyMap, c query.Category) list.DefaultDelegate {
	keys.forCategory(c)

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Copy().Inherit(selectedItemStyle)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Copy().Inherit(selectedItemStyle)

	var (
		shortHelp []key.Binding
		longHelp  [][]key.Binding
	)

	switch c {
	case query.Trash:
		shortHelp = []key.Binding{keys.restore, keys.delete}
		longHelp = [][]key.Binding{{keys.restore, keys.delete, keys.emptyTrash}}
	default:
		shortHelp = []key.Binding{keys.edit, keys.discard}
		longHelp = [][]key.Binding{{keys.edit, keys.discard}}
	}

	d.ShortHelpFunc = func() []key.Binding {
		return shortHelp
	}
	d.FullHelpFunc = func() [][]key.Binding {
		return longHelp
	}
	return d
}
