package config

import "fmt"

// Pace is a named playback speed for the live viewer.
type Pace string

const (
	PaceSlow   Pace = "slow"
	PaceNormal Pace = "normal"
	PaceFast   Pace = "fast"
)

// Tick rate bounds for the live viewer, in frames per second.
const (
	MinTickRate = 1
	MaxTickRate = 60
)

// TickRateForPace returns the frames per second for a pace preset.
func TickRateForPace(p Pace) int {
	switch p {
	case PaceSlow:
		return 2
	case PaceFast:
		return 20
	default:
		return 6
	}
}

// ParsePace validates a pace name. Empty means normal.
func ParsePace(name string) (Pace, error) {
	switch Pace(name) {
	case "":
		return PaceNormal, nil
	case PaceSlow, PaceNormal, PaceFast:
		return Pace(name), nil
	default:
		return "", fmt.Errorf("config: unknown pace %q (want slow, normal or fast)", name)
	}
}

// ClampTickRate restricts a tick rate to [MinTickRate, MaxTickRate].
func ClampTickRate(rate int) int {
	return max(MinTickRate, min(MaxTickRate, rate))
}
