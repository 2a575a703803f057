// Package tui provides the Bubble Tea front-end for turnsim: the live
// scheduler view, the scenario menu, run history and the SSH server.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/turnsim/internal/config"
)

// TickMsg is sent to trigger one scheduler frame. Seq identifies the
// tick chain that produced it; stale chains are ignored after a pause,
// restart or speed change.
type TickMsg struct {
	Seq  int
	Time time.Time
}

var tickChains atomic.Int64

// nextTickSeq hands out tick chain IDs that are unique across models, so a
// chain left over from a closed view never drives a new one.
func nextTickSeq() int {
	return int(tickChains.Add(1))
}

// tickCmd returns a Bubble Tea command that sends a tick message after one
// frame interval at the given rate.
func tickCmd(tickRate, seq int) tea.Cmd {
	interval := time.Second / time.Duration(config.ClampTickRate(tickRate))
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Seq: seq, Time: t}
	})
}
