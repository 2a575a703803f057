package sim

import "github.com/vovakirdan/turnsim/internal/config"

// State is the simulation context handed to every phase handler.
// Phase is the phase the next frame will run; Frame is the number of the
// last evaluated frame (0 before the first Step).
type State struct {
	Phase   Phase
	Frame   int
	Hero    Hero
	Enemies []Enemy
}

// NewState builds the initial state for a scenario. The scenario is
// expected to be valid.
func NewState(sc config.Scenario) State {
	st := State{
		Phase: Regenerating,
		Hero: Hero{
			Energy:    Gauge{Current: sc.Hero.Energy, Max: sc.Hero.MaxEnergy},
			MoveTicks: sc.Hero.MoveTicks,
		},
		Enemies: make([]Enemy, len(sc.Enemies)),
	}
	for i, e := range sc.Enemies {
		st.Enemies[i] = Enemy{
			Energy:      Gauge{Current: e.Energy, Max: e.MaxEnergy},
			AttackTicks: e.AttackTicks,
		}
	}
	return st
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := s
	c.Enemies = append([]Enemy(nil), s.Enemies...)
	return c
}

// Snapshot is a flat, comparable view of the state used by tests, the
// viewer and run history.
type Snapshot struct {
	Frame   int
	Phase   Phase
	Hero    ActorSnapshot
	Enemies []ActorSnapshot
}

// ActorSnapshot captures one actor's energy and pending ticket.
type ActorSnapshot struct {
	Energy    int
	MaxEnergy int
	Ticket    int // Move ticks left for the hero, attack ticket for enemies
}

// Snapshot captures the current state.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		Frame: s.Frame,
		Phase: s.Phase,
		Hero: ActorSnapshot{
			Energy:    s.Hero.Energy.Current,
			MaxEnergy: s.Hero.Energy.Max,
			Ticket:    s.Hero.Move,
		},
		Enemies: make([]ActorSnapshot, len(s.Enemies)),
	}
	for i, e := range s.Enemies {
		snap.Enemies[i] = ActorSnapshot{
			Energy:    e.Energy.Current,
			MaxEnergy: e.Energy.Max,
			Ticket:    e.Attack,
		}
	}
	return snap
}

// Energies returns hero energy followed by each enemy's energy.
func (s Snapshot) Energies() []int {
	out := make([]int, 0, 1+len(s.Enemies))
	out = append(out, s.Hero.Energy)
	for _, e := range s.Enemies {
		out = append(out, e.Energy)
	}
	return out
}
