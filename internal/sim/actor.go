package sim

import "fmt"

// Gauge is a clamped energy meter. Current stays within [0, Max].
type Gauge struct {
	Current int
	Max     int
}

// Charge adds n energy, clamped to [0, Max].
func (g *Gauge) Charge(n int) {
	g.Current = max(0, min(g.Current+n, g.Max))
}

// Full reports whether the gauge has reached its cap.
func (g Gauge) Full() bool {
	return g.Current >= g.Max
}

// Drain empties the gauge.
func (g *Gauge) Drain() {
	g.Current = 0
}

// Hero is the single player-side actor. Move counts the Executing
// frames left on its current move ticket.
type Hero struct {
	Energy    Gauge
	Move      int
	MoveTicks int
}

// Busy reports whether the hero holds a move ticket.
func (h Hero) Busy() bool {
	return h.Move > 0
}

// Enemy is one roster slot. Attack is the pending attack ticket, 0 when
// none is queued.
type Enemy struct {
	Energy      Gauge
	Attack      int
	AttackTicks int
}

// Busy reports whether the enemy has an attack queued.
func (e Enemy) Busy() bool {
	return e.Attack > 0
}

// Role separates the two actor groups.
type Role int

const (
	RoleNone Role = iota
	RoleHero
	RoleEnemy
)

func (r Role) String() string {
	switch r {
	case RoleHero:
		return "hero"
	case RoleEnemy:
		return "enemy"
	default:
		return "none"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	switch string(b) {
	case "hero":
		*r = RoleHero
	case "enemy":
		*r = RoleEnemy
	case "none", "":
		*r = RoleNone
	default:
		return fmt.Errorf("sim: unknown role %q", b)
	}
	return nil
}

// Actor identifies who an event is about. The hero always has index 0.
type Actor struct {
	Role  Role `json:"role"`
	Index int  `json:"index"`
}

// HeroActor refers to the hero.
var HeroActor = Actor{Role: RoleHero}

// EnemyActor refers to the enemy in roster slot i.
func EnemyActor(i int) Actor {
	return Actor{Role: RoleEnemy, Index: i}
}

func (a Actor) String() string {
	switch a.Role {
	case RoleHero:
		return "Hero"
	case RoleEnemy:
		return fmt.Sprintf("Enemy %d", a.Index)
	default:
		return ""
	}
}
