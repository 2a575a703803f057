package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/turnsim/internal/registry"
	"github.com/vovakirdan/turnsim/internal/storage"
)

// MenuItem represents a selectable scenario in the menu.
type MenuItem struct {
	ScenarioID  string
	Title       string
	Description string
	Frames      int
	Runs        int // Recorded runs, 0 without a store
}

// MenuModel is the Bubble Tea model for the scenario picker.
type MenuModel struct {
	items       []MenuItem
	cursor      int
	width       int
	height      int
	keyMapper   *KeyMapper
	quitting    bool
	selected    *MenuItem // Set when user selects a scenario
	openHistory bool      // True if user pressed Tab for run history
}

// NewMenuModel creates a new menu model listing every registered scenario.
func NewMenuModel(store *storage.Store, width, height int) MenuModel {
	scenarios := registry.List()

	var stats map[string]*storage.ScenarioStats
	if store != nil {
		//nolint:errcheck // Run counts are decoration only
		stats, _ = store.AllScenarioStats()
	}

	items := make([]MenuItem, 0, len(scenarios))
	for _, s := range scenarios {
		item := MenuItem{
			ScenarioID:  s.ID,
			Title:       s.Title,
			Description: s.Description,
			Frames:      s.Frames,
		}
		if st, ok := stats[s.ID]; ok {
			item.Runs = st.Runs
		}
		items = append(items, item)
	}

	return MenuModel{
		items:     items,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// handleKey processes keyboard input in the menu.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case MenuActionSelect:
		if len(m.items) > 0 {
			item := m.items[m.cursor]
			m.selected = &item
			return m, tea.Quit
		}
	case MenuActionHistory:
		m.openHistory = true
		return m, tea.Quit
	}
	return m, nil
}

// Selected returns the chosen scenario, or nil if none yet.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// WantsHistory returns true if user asked for the run history.
func (m MenuModel) WantsHistory() bool {
	return m.openHistory
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Size returns the last known terminal size.
func (m MenuModel) Size() (width, height int) {
	return m.width, m.height
}

// Cursor returns the highlighted row.
func (m MenuModel) Cursor() int {
	return m.cursor
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("turnsim"))
	sb.WriteString(dimStyle.Render("  pick a scenario to watch"))
	sb.WriteString("\n\n")

	if len(m.items) == 0 {
		sb.WriteString("No scenarios registered.\n")
	}

	for i, item := range m.items {
		cursor := "  "
		line := fmt.Sprintf("%-10s %-20s %3d frames", item.ScenarioID, item.Title, item.Frames)
		if item.Runs > 0 {
			line += fmt.Sprintf("  %d runs", item.Runs)
		}
		if i == m.cursor {
			cursor = "> "
			line = readyStyle.Render(line)
		}
		sb.WriteString(cursor + line + "\n")
		if i == m.cursor && item.Description != "" {
			sb.WriteString("    " + dimStyle.Render(item.Description) + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("up/down: move  enter: watch  tab: history  q: quit"))
	return sb.String()
}

// MenuResult contains the result of running the menu.
type MenuResult struct {
	ScenarioID   string // Selected scenario ID (empty if quit)
	WantsHistory bool   // True if user wants the run history
	Quit         bool   // True if user quit the menu
	Width        int    // Terminal size when the menu closed
	Height       int
}

// RunMenu starts the menu and returns the user's choice.
func RunMenu(store *storage.Store, width, height int) (MenuResult, error) {
	model := NewMenuModel(store, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Quit: true}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Quit: true}, nil
	}

	res := MenuResult{Quit: m.IsQuitting(), WantsHistory: m.WantsHistory()}
	res.Width, res.Height = m.Size()
	if sel := m.Selected(); sel != nil {
		res.ScenarioID = sel.ScenarioID
	}
	return res, nil
}
