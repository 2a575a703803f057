package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/turnsim/internal/registry"
	"github.com/vovakirdan/turnsim/internal/storage"
)

const maxHistoryRuns = 100

// HistoryKeyMap defines the key bindings for the run history.
type HistoryKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Open       key.Binding
	NextFilter key.Binding
	PrevFilter key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.NextFilter, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.NextFilter, k.PrevFilter},
		{k.Back, k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show trace"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next scenario"),
		),
		PrevFilter: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev scenario"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for browsing recorded runs.
type HistoryModel struct {
	store     *storage.Store
	filters   []string // "" for all scenarios, then each scenario ID
	filter    int
	runs      []storage.RunRecord
	loadErr   error
	table     table.Model
	help      help.Model
	keys      HistoryKeyMap
	detail    *storage.RunRecord // Run whose trace is open
	scroll    int                // First trace line shown in detail view
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewHistoryModel creates a history browser over store. A nil store
// shows an empty list.
func NewHistoryModel(store *storage.Store, width, height int) HistoryModel {
	filters := []string{""}
	for _, s := range registry.List() {
		filters = append(filters, s.ID)
	}

	m := HistoryModel{
		store:   store,
		filters: filters,
		help:    help.New(),
		keys:    DefaultHistoryKeyMap(),
		width:   width,
		height:  height,
	}
	m.table = m.createTable()
	m.loadRuns()
	return m
}

func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Run", Width: 8},
		{Title: "Scenario", Width: 10},
		{Title: "Frames", Width: 6},
		{Title: "Next phase", Width: 13},
		{Title: "Digest", Width: 12},
		{Title: "Date", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns reloads the table for the current filter.
func (m *HistoryModel) loadRuns() {
	m.runs, m.loadErr = nil, nil
	if m.store != nil {
		m.runs, m.loadErr = m.store.RecentRuns(m.filters[m.filter], maxHistoryRuns)
	}

	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		rows[i] = table.Row{
			shortID(r.ID, 8),
			r.ScenarioID,
			fmt.Sprintf("%d", r.Frames),
			r.FinalPhase,
			shortID(r.Digest, 12),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history view.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.detail != nil {
			return m.updateDetail(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Open):
			if i := m.table.Cursor(); i >= 0 && i < len(m.runs) {
				run := m.runs[i]
				m.detail = &run
				m.scroll = 0
			}
			return m, nil

		case key.Matches(msg, m.keys.NextFilter):
			m.filter = (m.filter + 1) % len(m.filters)
			m.loadRuns()
			return m, nil

		case key.Matches(msg, m.keys.PrevFilter):
			m.filter = (m.filter - 1 + len(m.filters)) % len(m.filters)
			m.loadRuns()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.loadRuns()
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateDetail scrolls the open trace.
func (m HistoryModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lines := m.traceLines()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.detail = nil
	case key.Matches(msg, m.keys.Up):
		m.scroll = max(0, m.scroll-1)
	case key.Matches(msg, m.keys.Down):
		m.scroll = min(max(0, len(lines)-m.traceHeight()), m.scroll+1)
	}
	return m, nil
}

func (m HistoryModel) traceLines() []string {
	if m.detail == nil || m.detail.Trace == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(m.detail.Trace, "\n"), "\n")
}

func (m HistoryModel) traceHeight() int {
	return max(3, m.height-6)
}

// Runs returns the runs currently listed.
func (m HistoryModel) Runs() []storage.RunRecord {
	return m.runs
}

// Filter returns the scenario the list is narrowed to, empty for all.
func (m HistoryModel) Filter() string {
	return m.filters[m.filter]
}

// Detail returns the run whose trace is open, or nil.
func (m HistoryModel) Detail() *storage.RunRecord {
	return m.detail
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// View renders the history browser.
func (m HistoryModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}
	if m.detail != nil {
		return m.renderDetail()
	}

	var b strings.Builder

	title := "RUN HISTORY - all scenarios"
	if f := m.Filter(); f != "" {
		title = "RUN HISTORY - " + f
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	switch {
	case m.loadErr != nil:
		b.WriteString(enemyStyle.Render("Could not load runs: " + m.loadErr.Error()))
	case len(m.runs) == 0:
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(tableStyle.Render(emptyStyle.Render("No runs recorded yet.\nWatch or run a scenario with --record.")))
	default:
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m HistoryModel) renderDetail() string {
	var b strings.Builder

	r := m.detail
	b.WriteString(titleStyle.Render(fmt.Sprintf("Run %s", shortID(r.ID, 8))))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s  %d frames  next %s  %s",
		r.ScenarioID, r.Frames, r.FinalPhase, r.CreatedAt.Format("2006-01-02 15:04"))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("digest " + r.Digest))
	b.WriteString("\n\n")

	lines := m.traceLines()
	end := min(len(lines), m.scroll+m.traceHeight())
	for _, line := range lines[min(m.scroll, end):end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("lines %d-%d of %d  up/down: scroll  esc: back  q: quit",
		min(m.scroll+1, end), end, len(lines))))
	return b.String()
}

func shortID(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// RunHistory runs the history screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(store *storage.Store, width, height int) (goBack bool, err error) {
	model := NewHistoryModel(store, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}

	return m.IsGoingBack(), nil
}
