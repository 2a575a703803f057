package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/turnsim/internal/sim"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	heroStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	enemyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	readyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	ticketStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// phaseStyles colours each phase in the header and trace.
var phaseStyles = map[sim.Phase]lipgloss.Style{
	sim.Regenerating: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	sim.ActionSelect: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	sim.Executing:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	sim.EndTurn:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

const barWidth = 20

// EnergyBar renders a fixed-width meter for current/maxEnergy.
func EnergyBar(current, maxEnergy, width int) string {
	if width <= 0 || maxEnergy <= 0 {
		return ""
	}
	filled := max(0, min(width, current*width/maxEnergy))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// renderPhase returns the styled phase name.
func renderPhase(p sim.Phase) string {
	style, ok := phaseStyles[p]
	if !ok {
		style = dimStyle
	}
	return style.Render(p.Label())
}

// renderTraceLine styles one trace line by event kind.
func renderTraceLine(ev sim.Event) string {
	switch ev.Kind {
	case sim.KindPhase:
		return dimStyle.Render(ev.Line())
	case sim.KindReady:
		return readyStyle.Render(ev.Line())
	case sim.KindSelect:
		return ticketStyle.Render(ev.Line())
	case sim.KindAttack:
		return enemyStyle.Render(ev.Line())
	case sim.KindMove:
		return heroStyle.Render(ev.Line())
	default:
		return ev.Line()
	}
}
