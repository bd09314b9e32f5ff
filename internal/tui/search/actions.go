package search

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Paintersrp/jottr/internal/editor"
	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
)

type actionMsg struct {
	status  string
	removed []uuid.UUID
	err     error
}

type editFinishedMsg struct {
	story   story.Story
	session *editor.Session
	err     error
}

// mutate runs fn against the store and persists the result off the update
// loop. done is delivered when both succeed.
func (m Model) mutate(done actionMsg, fn func(context.Context, store.Store) error) tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		if err := fn(ctx, st); err != nil {
			return actionMsg{err: err}
		}
		if err := st.Persist(ctx); err != nil {
			return actionMsg{err: err}
		}
		return done
	}
}

func (m *Model) discard(s story.Story) tea.Cmd {
	if s.IsDiscarded() {
		return nil
	}
	at := query.Discard(s, m.now()).DiscardedAt
	return m.mutate(actionMsg{status: "Moved " + s.Title() + " to trash"}, func(ctx context.Context, st store.Store) error {
		return st.MarkDiscarded(ctx, s.ID, *at)
	})
}

func (m *Model) restore(s story.Story) tea.Cmd {
	at := m.now()
	return m.mutate(actionMsg{status: "Restored " + s.Title()}, func(ctx context.Context, st store.Store) error {
		return st.Restore(ctx, s.ID, at)
	})
}

func (m *Model) delete(s story.Story) tea.Cmd {
	if !s.IsDiscarded() {
		return m.list.NewStatusMessage(statusStyle("Only stories in the trash can be deleted"))
	}
	return m.mutate(actionMsg{status: "Deleted " + s.Title(), removed: []uuid.UUID{s.ID}}, func(ctx context.Context, st store.Store) error {
		return st.HardDelete(ctx, s.ID)
	})
}

func (m Model) emptyTrash() tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		n, err := store.EmptyTrash(ctx, st)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("Deleted %d stories", n)}
	}
}

func (m *Model) edit(s story.Story) tea.Cmd {
	sess, err := editor.NewSession(m.editor, s.Text)
	if err != nil {
		return m.list.NewStatusMessage(statusStyle("Error opening editor: " + err.Error()))
	}

	return tea.ExecProcess(sess.Cmd, func(err error) tea.Msg {
		return editFinishedMsg{story: s, session: sess, err: err}
	})
}

func (m *Model) handleEditFinished(msg editFinishedMsg) tea.Cmd {
	if msg.err != nil {
		msg.session.Discard()
		return m.handleAction(actionMsg{err: msg.err})
	}

	text, err := msg.session.Result()
	if err != nil {
		return m.handleAction(actionMsg{err: err})
	}
	if text == msg.story.Text {
		return m.list.NewStatusMessage(statusStyle("No changes to " + msg.story.Title()))
	}

	updated := msg.story.WithText(text, m.now())
	return m.mutate(actionMsg{status: "Saved " + updated.Title()}, func(ctx context.Context, st store.Store) error {
		return st.Put(ctx, updated)
	})
}

// handleAction reports the outcome of a store mutation and reloads the
// collection.
func (m *Model) handleAction(msg actionMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("story action failed")
		return tea.Batch(
			m.list.NewStatusMessage(statusStyle("Error: "+msg.err.Error())),
			m.load(),
		)
	}

	m.log.Debug().Str("status", msg.status).Msg("story action")
	var cmd tea.Cmd
	if len(msg.removed) > 0 {
		for _, id := range msg.removed {
			m.records = query.Remove(m.records, id)
		}
		cmd = m.recompute()
	}
	return tea.Batch(cmd, m.list.NewStatusMessage(statusStyle(msg.status)), m.load())
}
