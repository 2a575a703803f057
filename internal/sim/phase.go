package sim

import "fmt"

// Phase is one of the global simulation states shared by all actors.
type Phase int

const (
	Regenerating Phase = iota
	ActionSelect
	Executing
	EndTurn
)

// Phases lists every phase in turn order.
var Phases = []Phase{Regenerating, ActionSelect, Executing, EndTurn}

// String returns the phase identifier.
func (p Phase) String() string {
	switch p {
	case Regenerating:
		return "Regenerating"
	case ActionSelect:
		return "ActionSelect"
	case Executing:
		return "Executing"
	case EndTurn:
		return "EndTurn"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Label returns the phase as shown in trace lines.
func (p Phase) Label() string {
	switch p {
	case ActionSelect:
		return "Action select"
	case EndTurn:
		return "End turn"
	default:
		return p.String()
	}
}

// ParsePhase is the inverse of String.
func ParsePhase(s string) (Phase, error) {
	for _, p := range Phases {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("sim: unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
