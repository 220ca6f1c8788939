package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/binding"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/domain"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/errclass"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/fieldstore"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/results"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/selection"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/ui/views"
)

// listing is what the result list currently shows
type listing int

const (
	listItems listing = iota
	listCategories
)

// Model is the terminal host of one field binding
type Model struct {
	ctx      context.Context
	binding  *binding.Binding
	store    fieldstore.FieldStore
	logger   *zap.Logger
	renderer *views.Renderer
	keys     keyMap
	help     help.Model
	input    textinput.Model
	program  *tea.Program // reference to Bubble Tea program for terminal management
	pager    *PagerOps

	width  int
	height int
	ready  bool // hydration finished
	paused bool // an external pager owns the terminal

	kind         domain.QueryKind
	listing      listing
	categories   []domain.FlatCategory
	categoryName string

	gen     uint64 // generation of the search whose pages are shown
	items   []domain.Item
	page    int
	hasNext bool
	loading bool
	cursor  int

	status     string
	statusKind views.StatusKind
	alert      string
}

// NewModel creates the UI for b. store is read when the stored value is shown.
func NewModel(ctx context.Context, b *binding.Binding, store fieldstore.FieldStore, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	input := textinput.New()
	input.Placeholder = "Search products"
	input.Prompt = ""
	input.CharLimit = 256

	return &Model{
		ctx:        ctx,
		binding:    b,
		store:      store,
		logger:     logger.Named("ui"),
		renderer:   views.NewRenderer(),
		keys:       defaultKeyMap(),
		help:       help.New(),
		input:      input,
		kind:       domain.QueryKeyword,
		status:     "Loading stored value...",
		statusKind: views.StatusLoading,
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager = NewPagerOps(p)
}

// Init starts hydration
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.hydrate())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pauseRenderingMsg:
		m.paused = true
		return m, nil

	case resumeRenderingMsg:
		m.paused = false
		return m, nil

	case hydratedMsg:
		m.handleHydrated(msg)
		return m, nil

	case pageMsg:
		m.handlePage(msg)
		return m, nil

	case categoriesMsg:
		m.loading = false
		if msg.err != nil {
			m.showError(msg.err)
			return m, nil
		}
		m.categories = msg.categories
		m.listing = listCategories
		m.cursor = 0
		m.setStatus("Pick a category", views.StatusInfo)
		m.binding.SetListOpen(true)
		return m, nil

	case mutationMsg:
		m.handleMutation(msg)
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			m.showError(msg.err)
		}
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleHydrated(msg hydratedMsg) {
	if msg.err != nil {
		m.showError(msg.err)
		return
	}
	m.ready = true
	r := msg.report
	switch {
	case r.Degraded:
		m.setStatus("Stored value had an unexpected shape and was ignored", views.StatusWarning)
	case len(r.Dropped) > 0:
		m.setStatus(fmt.Sprintf("%d stored item(s) no longer exist: %s", len(r.Dropped), strings.Join(r.Dropped, ", ")), views.StatusWarning)
	default:
		m.setStatus(fmt.Sprintf("Loaded %d selected item(s). Press / to search", r.Selected), views.StatusInfo)
	}
}

func (m *Model) handlePage(msg pageMsg) {
	if msg.gen != m.gen || errors.Is(msg.err, results.ErrStaleResult) {
		m.logger.Debug("Dropping page of superseded search", zap.Uint64("generation", msg.gen))
		return
	}
	m.loading = false
	if msg.err != nil {
		m.showError(msg.err)
		return
	}
	m.items = msg.page.Items
	m.page = msg.page.Index
	m.hasNext = len(m.items) >= m.binding.PageSize()
	m.cursor = 0
	m.listing = listItems
	if len(m.items) == 0 {
		m.setStatus("No results", views.StatusInfo)
	} else {
		m.setStatus("", views.StatusInfo)
	}
}

func (m *Model) handleMutation(msg mutationMsg) {
	switch {
	case msg.err == nil:
		if msg.verb != "" {
			m.setStatus(msg.verb, views.StatusSuccess)
		}
	case errors.Is(msg.err, selection.ErrDuplicateSelection),
		errors.Is(msg.err, selection.ErrMaxItemsExceeded):
		m.setStatus(msg.err.Error(), views.StatusWarning)
	case errors.Is(msg.err, binding.ErrNotReady):
		m.setStatus("Still loading the stored value", views.StatusWarning)
	default:
		m.showError(msg.err)
	}
}

func (m *Model) handleEvent(event domain.DomainEvent) {
	switch e := event.(type) {
	case domain.ValuePushedEvent:
		m.logger.Debug("Value pushed", zap.ByteString("value", e.Value))
	case domain.ValueClearedEvent:
		m.setStatus("Field cleared", views.StatusSuccess)
	case domain.HeightRequestedEvent:
		m.logger.Debug("Frame height requested", zap.Int("pixels", e.Pixels))
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch msg.Type {
		case tea.KeyEnter:
			m.input.Blur()
			return m, m.submitSearch()
		case tea.KeyEsc:
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.alert != "" {
		switch {
		case key.Matches(msg, m.keys.Dismiss):
			m.alert = ""
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		return m, m.showHelp()
	case key.Matches(msg, m.keys.Search):
		m.setKind(domain.QueryKeyword)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Mode):
		if m.kind == domain.QueryKeyword {
			m.setKind(domain.QueryCategory)
			return m, m.loadCategories()
		}
		m.setKind(domain.QueryKeyword)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.NextPage):
		if m.listing == listItems && m.hasNext && !m.loading {
			m.loading = true
			return m, m.loadPage(m.gen, m.page+1)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.listing == listItems && m.page > 0 && !m.loading {
			m.loading = true
			return m, m.loadPage(m.gen, m.page-1)
		}
	case key.Matches(msg, m.keys.Toggle):
		return m, m.activate()
	case key.Matches(msg, m.keys.Remove):
		sel := m.binding.Selection()
		if len(sel) == 0 {
			return m, nil
		}
		last := sel[len(sel)-1]
		return m, m.mutate(last.DisplayName, func(ctx context.Context) (selection.Change, error) {
			return m.binding.Remove(ctx, last.Key())
		})
	case key.Matches(msg, m.keys.Clear):
		return m, m.mutate("", m.binding.Clear)
	case key.Matches(msg, m.keys.Value):
		return m, m.showValue()
	case key.Matches(msg, m.keys.Dismiss):
		if m.listing == listCategories {
			m.listing = listItems
			m.cursor = 0
			m.binding.SetListOpen(false)
		}
	}
	return m, nil
}

func (m *Model) setKind(kind domain.QueryKind) {
	if m.kind == kind {
		return
	}
	m.kind = kind
	if kind == domain.QueryKeyword && m.listing == listCategories {
		m.listing = listItems
		m.cursor = 0
		m.binding.SetListOpen(false)
	}
}

func (m *Model) moveCursor(delta int) {
	n := len(m.items)
	if m.listing == listCategories {
		n = len(m.categories)
	}
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
}

// activate acts on the row under the cursor
func (m *Model) activate() tea.Cmd {
	if m.listing == listCategories {
		if m.cursor >= len(m.categories) {
			return nil
		}
		cat := m.categories[m.cursor]
		m.categoryName = cat.Label
		m.listing = listItems
		m.binding.SetListOpen(false)
		return m.startSearch(domain.CategoryQuery(cat.ID))
	}
	if m.cursor >= len(m.items) {
		return nil
	}
	item := m.items[m.cursor]
	return m.mutate(item.DisplayName, func(ctx context.Context) (selection.Change, error) {
		return m.binding.Toggle(ctx, item)
	})
}

func (m *Model) submitSearch() tea.Cmd {
	q := domain.KeywordQuery(m.input.Value())
	if q.Kind() == domain.QueryEmpty {
		m.setStatus("Type something to search", views.StatusInfo)
		return nil
	}
	return m.startSearch(q)
}

func (m *Model) startSearch(q domain.Query) tea.Cmd {
	m.gen = m.binding.Search(q)
	m.items = nil
	m.page = 0
	m.hasNext = false
	m.cursor = 0
	m.loading = true
	m.logger.Debug("Search started", zap.Stringer("query", q), zap.Uint64("generation", m.gen))
	return m.loadPage(m.gen, 0)
}

// loadPage returns a command that fetches page n of the search with generation gen
func (m *Model) loadPage(gen uint64, n int) tea.Cmd {
	b, ctx := m.binding, m.ctx
	return func() tea.Msg {
		p, err := b.Page(ctx, n)
		return pageMsg{gen: gen, page: p, err: err}
	}
}

// hydrate returns a command that loads the stored selection
func (m *Model) hydrate() tea.Cmd {
	b, ctx := m.binding, m.ctx
	return func() tea.Msg {
		report, err := b.Hydrate(ctx)
		return hydratedMsg{report: report, err: err}
	}
}

// loadCategories returns a command that fetches the category list
func (m *Model) loadCategories() tea.Cmd {
	m.loading = true
	b, ctx := m.binding, m.ctx
	return func() tea.Msg {
		cats, err := b.Categories(ctx)
		return categoriesMsg{categories: cats, err: err}
	}
}

// mutate returns a command that applies a selection change
func (m *Model) mutate(label string, fn func(context.Context) (selection.Change, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		change, err := fn(ctx)
		return mutationMsg{verb: describe(change, label), err: err}
	}
}

func describe(change selection.Change, label string) string {
	switch change.Kind {
	case selection.ChangeAdded:
		return "Selected " + label
	case selection.ChangeReplaced:
		return "Replaced selection with " + label
	case selection.ChangeRemoved:
		return "Removed " + label
	case selection.ChangeCleared:
		return "Cleared selection"
	default:
		return ""
	}
}

func (m *Model) showHelp() tea.Cmd {
	if m.program == nil {
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}
	return m.fetchPager(NewHelpRenderer().RenderHelpContent())
}

func (m *Model) showValue() tea.Cmd {
	raw, err := m.store.GetValue(m.ctx)
	if err != nil {
		m.showError(err)
		return nil
	}
	content := FormatValue(raw)
	if m.program == nil {
		m.setStatus(strings.Join(strings.Fields(content), " "), views.StatusInfo)
		return nil
	}
	return m.fetchPager(content)
}

// fetchPager returns a command that shows content using ov pager
func (m *Model) fetchPager(content string) tea.Cmd {
	return func() tea.Msg {
		m.program.Send(pauseRenderingMsg{})
		err := m.pager.Show(content)
		m.program.Send(resumeRenderingMsg{})
		return pagerMsg{err: err}
	}
}

func (m *Model) setStatus(text string, kind views.StatusKind) {
	m.status = text
	m.statusKind = kind
}

// showError raises the alert, preferring the classified user message
func (m *Model) showError(err error) {
	var classified *errclass.Classified
	if errors.As(err, &classified) {
		m.alert = classified.Message
	} else {
		m.alert = err.Error()
	}
	m.loading = false
	m.setStatus("Error", views.StatusError)
}

// View renders the UI
func (m *Model) View() string {
	if m.paused {
		return ""
	}
	return m.renderer.Render(m.viewState())
}

func (m *Model) viewState() views.ViewState {
	schema := m.binding.Schema()
	state := views.ViewState{
		Width:       m.width,
		Height:      m.height,
		Title:       schema.Title,
		Description: schema.Description,
		SearchKind:  m.kind.String(),
		Cursor:      m.cursor,
		Page:        m.page,
		HasPrev:     m.listing == listItems && m.page > 0,
		HasNext:     m.listing == listItems && m.hasNext,
		MaxItems:    m.binding.MaxItems(),
		Status:      m.status,
		StatusKind:  m.statusKind,
		Alert:       m.alert,
		Help:        m.help.View(m.keys),
		Loading:     m.loading,
	}

	switch m.kind {
	case domain.QueryCategory:
		state.SearchInput = m.categoryName
		if state.SearchInput == "" {
			state.SearchInput = "(pick a category)"
		}
	default:
		state.SearchInput = m.input.View()
	}

	selected := m.binding.Selection()
	keys := make(map[string]bool, len(selected))
	for _, item := range selected {
		keys[item.Key()] = true
		state.Selected = append(state.Selected, item.DisplayName)
	}

	if m.listing == listCategories {
		state.Heading = "Categories"
		for _, c := range m.categories {
			state.Rows = append(state.Rows, views.Row{Label: c.Label})
		}
		return state
	}

	state.Heading = "Results"
	for _, item := range m.items {
		state.Rows = append(state.Rows, views.Row{
			Label:    item.DisplayName,
			Detail:   "(" + item.Key() + ")",
			Selected: keys[item.Key()],
		})
	}
	return state
}
