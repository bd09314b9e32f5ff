// Package search is the interactive story browser: category tabs, a live
// search field and a list of highlighted results.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/render"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/internal/views"
)

const previewCacheSize = 64

type storiesLoadedMsg struct {
	records []story.Story
	err     error
}

type Model struct {
	ctx       context.Context
	store     store.Store
	engine    *query.Engine
	now       func() time.Time
	log       zerolog.Logger
	watcher   *state.VaultWatcher
	previewer *render.Previewer
	editor    string

	list  list.Model
	input textinput.Model
	keys  *listKeyMap
	dkeys *delegateKeyMap

	category    query.Category
	records     []story.Story
	result      query.Result
	preview     string
	showPreview bool
	width       int
	height      int
}

// New builds the browser over the state's store, starting in category c with
// term already typed into the search field.
func New(ctx context.Context, s *state.State, c query.Category, term string) (Model, error) {
	st, err := s.Store(ctx)
	if err != nil {
		return Model{}, err
	}

	w, err := s.Watcher()
	if err != nil {
		s.Logger.Warn().Err(err).Msg("vault changes will not be picked up")
	}

	p, err := render.NewPreviewer(previewCacheSize, termenv.ANSI256)
	if err != nil {
		return Model{}, err
	}

	if !c.Valid() {
		c = query.All
	}

	input := textinput.New()
	input.Placeholder = "Search stories"
	input.Prompt = "🔍 "
	input.SetValue(term)
	input.Focus()

	lkeys := newListKeyMap()
	dkeys := newDelegateKeyMap()

	l := list.New(nil, newItemDelegate(dkeys, c), 0, 0)
	l.Styles.Title = titleStyle
	l.SetFilteringEnabled(false)
	l.SetShowFilter(false)
	l.KeyMap.Quit = key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{lkeys.focusSearch, lkeys.nextCategory}
	}
	l.AdditionalFullHelpKeys = lkeys.fullHelp

	m := Model{
		ctx:       ctx,
		store:     st,
		engine:    s.Engine,
		now:       s.Now,
		log:       s.Logger.With().Str("component", "tui").Logger(),
		watcher:   w,
		previewer: p,
		editor:    s.Config.Editor,
		list:      l,
		input:     input,
		keys:      lkeys,
		dkeys:     dkeys,
		category:  c,
	}
	m.recompute()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.watcher.Start())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		cmd := m.recompute()
		return m, cmd

	case storiesLoadedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("failed to load stories")
			cmd := m.list.NewStatusMessage(statusStyle("Error loading stories: " + msg.err.Error()))
			return m, cmd
		}
		m.records = msg.records
		cmd := m.recompute()
		return m, cmd

	case state.StoriesChangedMsg:
		m.log.Debug().Str("path", msg.Path).Msg("vault changed")
		return m, tea.Batch(m.load(), m.watcher.Start())

	case state.VaultWatcherErrMsg:
		m.log.Warn().Err(msg.Err).Msg("vault watcher error")
		return m, m.watcher.Start()

	case actionMsg:
		cmd := m.handleAction(msg)
		return m, cmd

	case editFinishedMsg:
		cmd := m.handleEditFinished(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.handleSearchInput(msg)
		}
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	prev := m.list.Index()
	m.list, cmd = m.list.Update(msg)
	if m.list.Index() != prev {
		m.handlePreview()
	}
	return m, cmd
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.blurSearch) {
		m.input.Blur()
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		recompute := m.recompute()
		return m, tea.Batch(cmd, recompute)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.focusSearch):
		return m.input.Focus(), true

	case key.Matches(msg, m.keys.clearSearch):
		if m.input.Value() == "" {
			return nil, true
		}
		m.input.SetValue("")
		return m.recompute(), true

	case key.Matches(msg, m.keys.nextCategory):
		return m.swapCategory(m.category.Next()), true

	case key.Matches(msg, m.keys.prevCategory):
		return m.swapCategory(m.category.Prev()), true

	case key.Matches(msg, m.keys.switchToAll, m.keys.switchToRecent, m.keys.switchToTrash):
		if c, ok := views.CategoryForKey(msg.String()); ok {
			return m.swapCategory(c), true
		}

	case key.Matches(msg, m.keys.togglePreview):
		m.showPreview = !m.showPreview
		m.resize()
		return m.recompute(), true

	case key.Matches(msg, m.keys.toggleHelp):
		m.list.SetShowHelp(!m.list.ShowHelp())
		return nil, true

	case key.Matches(msg, m.dkeys.emptyTrash):
		return m.emptyTrash(), true
	}

	s, ok := m.selected()
	if !ok {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.dkeys.edit):
		return m.edit(s), true
	case key.Matches(msg, m.dkeys.discard):
		return m.discard(s), true
	case key.Matches(msg, m.dkeys.restore):
		return m.restore(s), true
	case key.Matches(msg, m.dkeys.delete):
		return m.delete(s), true
	}

	return nil, false
}

func (m Model) View() string {
	search := inputStyle.Width(max(m.listWidth()-4, 20)).Render(m.input.View())

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = lipgloss.JoinVertical(lipgloss.Left, m.list.Title, emptyStyle.Render(m.emptyText()))
	}
	left := listStyle.Width(m.listWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, search, body))

	if !m.showPreview {
		return appStyle.Render(left)
	}

	preview := previewStyle.Render(
		lipgloss.NewStyle().
			Height(m.list.Height()).
			MaxHeight(m.list.Height() + 3).
			Render(fmt.Sprintf("%s\n%s", titleStyle.Render("Preview"), m.preview)),
	)
	return appStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, left, preview))
}

// Run starts the browser in the alternate screen and blocks until it exits.
func Run(ctx context.Context, s *state.State, c query.Category, term string) error {
	m, err := New(ctx, s, c, term)
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func (m Model) load() tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		records, err := st.ListAll(ctx)
		return storiesLoadedMsg{records: records, err: err}
	}
}

// recompute reruns the query for the current category and term and rebuilds
// the list items from the result.
func (m *Model) recompute() tea.Cmd {
	res, err := m.engine.Query(m.records, m.category, m.input.Value())
	if err != nil {
		return m.list.NewStatusMessage(statusStyle(err.Error()))
	}
	m.result = res
	m.list.Title = views.GetTitleForView(m.category, res)

	visible := res.Visible()
	items := make([]list.Item, 0, len(visible))
	for _, s := range visible {
		r, found := res.Matches.Lookup(s.ID)
		items = append(items, storyItem{
			story: s,
			match: query.Match{ID: s.ID, Range: r, Found: found},
			width: m.listWidth() - 4,
		})
	}

	cmd := m.list.SetItems(items)
	if idx := m.list.Index(); idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	m.handlePreview()
	return cmd
}

func (m *Model) swapCategory(c query.Category) tea.Cmd {
	if c == m.category {
		return nil
	}
	m.category = c
	m.list.SetDelegate(newItemDelegate(m.dkeys, c))
	m.list.ResetSelected()
	return m.recompute()
}

func (m *Model) handlePreview() {
	if !m.showPreview {
		return
	}
	s, ok := m.selected()
	if !ok {
		m.preview = ""
		return
	}

	out, err := m.previewer.Render(s, m.previewWidth())
	if err != nil {
		m.log.Error().Err(err).Str("id", s.ShortID()).Msg("failed to render preview")
		m.preview = s.Text
		return
	}
	m.preview = out
}

func (m *Model) resize() {
	_, v := appStyle.GetFrameSize()
	m.list.SetSize(m.listWidth(), max(m.height-v-3, 0))
}

func (m Model) listWidth() int {
	h, _ := appStyle.GetFrameSize()
	w := m.width - h
	if m.showPreview {
		w /= 2
	}
	return max(w, 0)
}

func (m Model) previewWidth() int {
	h, _ := appStyle.GetFrameSize()
	return max(m.width-h-m.listWidth()-4, 20)
}

func (m Model) selected() (story.Story, bool) {
	i, ok := m.list.SelectedItem().(storyItem)
	if !ok {
		return story.Story{}, false
	}
	return i.story, true
}

func (m Model) emptyText() string {
	if m.result.Searching() {
		return fmt.Sprintf("No stories match %q.", m.result.Term)
	}
	switch m.category {
	case query.Trash:
		return "The trash is empty."
	case query.Recent:
		return "Nothing written in the last week."
	default:
		return "No stories yet."
	}
}
