package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Marshal encodes the scenario as a YAML document that Parse accepts.
func (s Scenario) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("config: cannot encode scenario %q: %w", s.ID, err)
	}
	return data, nil
}

// Fingerprint identifies the starting roster. Two scenarios with equal
// fingerprints produce the same trace for the same frame budget, whatever
// their id, title or description.
func (s Scenario) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "hero %d/%d move %d\n", s.Hero.Energy, s.Hero.MaxEnergy, s.Hero.MoveTicks)
	for i, e := range s.Enemies {
		fmt.Fprintf(h, "enemy %d %d/%d attack %d\n", i, e.Energy, e.MaxEnergy, e.AttackTicks)
	}
	return hex.EncodeToString(h.Sum(nil))
}
