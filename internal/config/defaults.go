package config

import (
	"embed"
	"path"
	"sort"
	"strings"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// DefaultScenario returns the classic skirmish without touching the
// embedded files.
func DefaultScenario() Scenario {
	enemy := func(energy int) EnemyConfig {
		return EnemyConfig{Energy: energy, MaxEnergy: 10, AttackTicks: 2}
	}
	return Scenario{
		ID:          "classic",
		Title:       "Classic Skirmish",
		Description: "Hero starts ready, enemies staggered 0/0/2/2/4.",
		Frames:      DefaultFrames,
		Hero: HeroConfig{
			Energy:    10,
			MaxEnergy: 10,
			MoveTicks: 3,
		},
		Enemies: []EnemyConfig{
			enemy(0),
			enemy(0),
			enemy(2),
			enemy(2),
			enemy(4),
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a scenario, or nil.
func GetDefaultYAML(id string) []byte {
	data, err := defaultsFS.ReadFile(path.Join("defaults", id+".yaml"))
	if err != nil {
		return nil
	}
	return data
}

// BuiltinIDs lists the scenarios shipped as embedded YAML, sorted.
func BuiltinIDs() []string {
	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids
}
