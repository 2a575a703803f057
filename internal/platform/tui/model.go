package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/turnsim/internal/config"
	"github.com/vovakirdan/turnsim/internal/sim"
	"github.com/vovakirdan/turnsim/internal/storage"
)

// WatchConfig controls the live scheduler view.
type WatchConfig struct {
	ScreenW  int
	ScreenH  int
	TickRate int // Frames per second
	Frames   int // Frame budget; 0 uses the scenario's
}

// DefaultWatchConfig returns a WatchConfig with sensible defaults.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: config.TickRateForPace(config.PaceNormal),
	}
}

// WatchModel is the Bubble Tea model that plays a scheduler frame by
// frame.
type WatchModel struct {
	sched      *sim.Scheduler
	scenarioID string
	store      *storage.Store
	logger     *log.Logger
	config     WatchConfig
	budget     int
	events     []sim.Event
	keys       WatchKeyMap
	help       help.Model
	tickSeq    int
	paused     bool
	recorded   bool
	recordID   string
	recordErr  error
	quitting   bool
	backToMenu bool
}

// NewWatchModel creates a view over sched. store and logger may be nil.
func NewWatchModel(sched *sim.Scheduler, store *storage.Store, logger *log.Logger, cfg WatchConfig) WatchModel {
	budget := cfg.Frames
	if budget <= 0 {
		budget = sched.Scenario().FrameBudget()
	}
	cfg.TickRate = config.ClampTickRate(cfg.TickRate)

	h := help.New()
	h.Width = cfg.ScreenW

	return WatchModel{
		sched:      sched,
		scenarioID: sched.Scenario().ID,
		store:      store,
		logger:     logger,
		config:     cfg,
		budget:     budget,
		keys:       DefaultWatchKeyMap(),
		help:       h,
		tickSeq:    nextTickSeq(),
	}
}

// Init starts the tick loop.
func (m WatchModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate, m.tickSeq)
}

// Update handles messages and updates the model state.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(msg)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.backToMenu = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		if m.Done() {
			return m, nil
		}
		m.paused = !m.paused
		if m.paused {
			return m, nil
		}
		return m, m.restartTicks()

	case key.Matches(msg, m.keys.Step):
		if m.paused && !m.Done() {
			m.step()
		}
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		m.sched.Reset()
		m.events = nil
		m.paused = false
		m.recorded = false
		m.recordID = ""
		m.recordErr = nil
		return m, m.restartTicks()

	case key.Matches(msg, m.keys.Faster):
		return m.setTickRate(m.config.TickRate * 2)

	case key.Matches(msg, m.keys.Slower):
		return m.setTickRate(m.config.TickRate / 2)
	}

	return m, nil
}

func (m WatchModel) setTickRate(rate int) (tea.Model, tea.Cmd) {
	m.config.TickRate = config.ClampTickRate(rate)
	if m.paused || m.Done() {
		return m, nil
	}
	return m, m.restartTicks()
}

// restartTicks abandons the current tick chain and starts a new one.
func (m *WatchModel) restartTicks() tea.Cmd {
	m.tickSeq = nextTickSeq()
	return tickCmd(m.config.TickRate, m.tickSeq)
}

// handleTick advances the scheduler by one frame.
func (m WatchModel) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.tickSeq || m.paused {
		return m, nil
	}
	if m.Done() {
		return m, nil
	}

	m.step()

	if m.Done() {
		return m, nil
	}
	return m, tickCmd(m.config.TickRate, m.tickSeq)
}

// step runs one frame and records the run once the budget is spent.
func (m *WatchModel) step() {
	m.events = append(m.events, m.sched.Step()...)
	if m.Done() {
		m.record()
	}
}

// record saves the finished run once.
func (m *WatchModel) record() {
	if m.recorded || m.store == nil {
		return
	}
	m.recorded = true

	res := sim.Result{
		Frames: m.sched.Frame(),
		Final:  m.sched.Snapshot(),
		Events: m.events,
		Digest: sim.Digest(m.events),
	}
	rec, err := storage.NewRunRecord(m.sched.Scenario(), res)
	if err == nil {
		m.recordID, err = m.store.SaveRun(rec)
	}
	m.recordErr = err
	if m.logger == nil {
		return
	}
	if m.recordErr != nil {
		m.logger.Warn("could not record run", "scenario", m.scenarioID, "error", m.recordErr)
		return
	}
	m.logger.Info("run recorded", "scenario", m.scenarioID, "id", m.recordID, "digest", res.Digest[:12])
}

// Done reports whether the frame budget is spent.
func (m WatchModel) Done() bool {
	return m.sched.Done(m.budget)
}

// Paused reports whether playback is paused.
func (m WatchModel) Paused() bool {
	return m.paused
}

// Events returns every event seen since the last restart.
func (m WatchModel) Events() []sim.Event {
	return m.events
}

// RecordID returns the stored run ID, empty until the run is recorded.
func (m WatchModel) RecordID() string {
	return m.recordID
}

// TickRate returns the current playback rate.
func (m WatchModel) TickRate() int {
	return m.config.TickRate
}

// IsQuitting returns true if user requested to quit entirely.
func (m WatchModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m WatchModel) BackToMenu() bool {
	return m.backToMenu
}

// View renders the current state to a string for display.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	snap := m.sched.Snapshot()
	var sb strings.Builder

	title := m.sched.Scenario().Title
	if title == "" {
		title = m.scenarioID
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("  ")
	sb.WriteString(fmt.Sprintf("Frame %d/%d  next: %s  %d fps  ", snap.Frame, m.budget, renderPhase(snap.Phase), m.config.TickRate))
	sb.WriteString(statusStyle.Render(m.status()))
	sb.WriteString("\n\n")

	sb.WriteString(panelStyle.Render(m.renderActors(snap)))
	sb.WriteString("\n")
	sb.WriteString(m.renderTrace())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))

	return sb.String()
}

func (m WatchModel) status() string {
	switch {
	case m.Done() && m.recordErr != nil:
		return "done, not recorded"
	case m.Done() && m.recordID != "":
		return "done, run " + m.recordID[:8]
	case m.Done():
		return "done"
	case m.paused:
		return "paused"
	default:
		return "running"
	}
}

func (m WatchModel) renderActors(snap sim.Snapshot) string {
	var lines []string

	hero := fmt.Sprintf("%-8s %s %2d/%-2d", "Hero", EnergyBar(snap.Hero.Energy, snap.Hero.MaxEnergy, barWidth),
		snap.Hero.Energy, snap.Hero.MaxEnergy)
	if snap.Hero.Ticket > 0 {
		hero += ticketStyle.Render(fmt.Sprintf("  move %d", snap.Hero.Ticket))
	}
	lines = append(lines, heroStyle.Render(hero))

	for i, e := range snap.Enemies {
		row := fmt.Sprintf("%-8s %s %2d/%-2d", sim.EnemyActor(i), EnergyBar(e.Energy, e.MaxEnergy, barWidth),
			e.Energy, e.MaxEnergy)
		if e.Ticket > 0 {
			row += ticketStyle.Render(fmt.Sprintf("  attack %d", e.Ticket))
		}
		lines = append(lines, enemyStyle.Render(row))
	}

	return strings.Join(lines, "\n")
}

// renderTrace shows as many of the latest trace lines as fit.
func (m WatchModel) renderTrace() string {
	// Header, actor panel (roster + border) and help footer.
	used := 4 + len(m.sched.Scenario().Enemies) + 3 + 2
	avail := max(3, m.config.ScreenH-used)

	start := max(0, len(m.events)-avail)
	lines := make([]string, 0, avail)
	for _, ev := range m.events[start:] {
		lines = append(lines, renderTraceLine(ev))
	}
	return strings.Join(lines, "\n")
}

// RunWatch starts a Bubble Tea program that plays sched and returns the
// final model so callers can report what happened.
func RunWatch(sched *sim.Scheduler, store *storage.Store, logger *log.Logger, cfg WatchConfig) (WatchModel, error) {
	model := NewWatchModel(sched, store, logger, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if wm, ok := final.(WatchModel); ok {
		model = wm
	}
	return model, err
}
