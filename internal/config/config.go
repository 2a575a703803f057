// Package config provides YAML-based scenario loading and validation
// for the turn scheduler.
package config

import (
	"errors"
	"fmt"
)

// MaxEnemies is the size of the enemy roster.
const MaxEnemies = 5

// DefaultFrames is the frame budget used when a scenario does not set one.
const DefaultFrames = 31

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid scenario")

// Scenario is the complete starting setup for one simulation run.
type Scenario struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Frames      int           `yaml:"frames"` // Frame budget; 0 means DefaultFrames
	Hero        HeroConfig    `yaml:"hero"`
	Enemies     []EnemyConfig `yaml:"enemies"`
}

// HeroConfig defines the hero's starting energy and move ticket.
type HeroConfig struct {
	Energy    int `yaml:"energy"`
	MaxEnergy int `yaml:"max_energy"`
	MoveTicks int `yaml:"move_ticks"` // Executing frames consumed per move
}

// EnemyConfig defines one roster slot.
type EnemyConfig struct {
	Energy      int `yaml:"energy"`
	MaxEnergy   int `yaml:"max_energy"`
	AttackTicks int `yaml:"attack_ticks"` // Ticket value; attacks always resolve in one frame
}

// FrameBudget returns the configured budget, falling back to DefaultFrames.
func (s Scenario) FrameBudget() int {
	if s.Frames <= 0 {
		return DefaultFrames
	}
	return s.Frames
}

// Validate checks that the scenario can be simulated.
func (s Scenario) Validate() error {
	if s.Frames < 0 {
		return fmt.Errorf("config: frames must not be negative, got %d: %w", s.Frames, ErrInvalid)
	}
	if err := checkEnergy("hero", s.Hero.Energy, s.Hero.MaxEnergy); err != nil {
		return err
	}
	if s.Hero.MoveTicks <= 0 {
		return fmt.Errorf("config: hero move_ticks must be positive, got %d: %w", s.Hero.MoveTicks, ErrInvalid)
	}

	if len(s.Enemies) > MaxEnemies {
		return fmt.Errorf("config: at most %d enemies allowed, got %d: %w", MaxEnemies, len(s.Enemies), ErrInvalid)
	}
	for i, e := range s.Enemies {
		if err := checkEnergy(fmt.Sprintf("enemy %d", i), e.Energy, e.MaxEnergy); err != nil {
			return err
		}
		if e.AttackTicks <= 0 {
			return fmt.Errorf("config: enemy %d attack_ticks must be positive, got %d: %w", i, e.AttackTicks, ErrInvalid)
		}
	}
	return nil
}

func checkEnergy(who string, energy, maxEnergy int) error {
	if maxEnergy <= 0 {
		return fmt.Errorf("config: %s max_energy must be positive, got %d: %w", who, maxEnergy, ErrInvalid)
	}
	if energy < 0 || energy > maxEnergy {
		return fmt.Errorf("config: %s energy %d outside [0, %d]: %w", who, energy, maxEnergy, ErrInvalid)
	}
	return nil
}
