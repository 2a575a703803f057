// Package scenarios registers the scenarios shipped with turnsim.
// Import it for its side effects.
package scenarios

import (
	"fmt"

	"github.com/vovakirdan/turnsim/internal/config"
	"github.com/vovakirdan/turnsim/internal/registry"
)

func init() {
	for _, id := range config.BuiltinIDs() {
		sc, err := config.LoadEmbedded(id)
		if err != nil {
			panic(fmt.Sprintf("scenarios: embedded %s is broken: %v", id, err))
		}
		registry.Register(id, func() config.Scenario {
			c := sc
			c.Enemies = append([]config.EnemyConfig(nil), sc.Enemies...)
			return c
		})
	}
}
