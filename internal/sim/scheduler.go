// Package sim implements the turn scheduler: one hero and a small enemy
// roster advanced through Regenerating, ActionSelect, Executing and
// EndTurn, with per-actor energy gating when each actor may act.
//
// The scheduler is single-threaded and deterministic. Every Step
// evaluates exactly one frame and reports what happened as trace events.
package sim

import (
	"context"
	"fmt"

	"github.com/vovakirdan/turnsim/internal/config"
)

// Scheduler owns the simulation context and drives it frame by frame.
type Scheduler struct {
	scenario config.Scenario
	state    State
	out      Emitter
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithEmitter forwards every event to e in addition to the events
// returned from Step.
func WithEmitter(e Emitter) Option {
	return func(s *Scheduler) {
		s.out = e
	}
}

// New validates the scenario and builds a scheduler at frame 0.
func New(sc config.Scenario, opts ...Option) (*Scheduler, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		scenario: sc,
		state:    NewState(sc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scenario returns the scenario the scheduler was built from.
func (s *Scheduler) Scenario() config.Scenario {
	return s.scenario
}

// Reset restores the initial state.
func (s *Scheduler) Reset() {
	s.state = NewState(s.scenario)
}

// Frame returns the number of frames evaluated so far.
func (s *Scheduler) Frame() int {
	return s.state.Frame
}

// Phase returns the phase the next frame will run.
func (s *Scheduler) Phase() Phase {
	return s.state.Phase
}

// State returns a deep copy of the simulation context.
func (s *Scheduler) State() State {
	return s.state.Clone()
}

// Snapshot captures the current state.
func (s *Scheduler) Snapshot() Snapshot {
	return s.state.Snapshot()
}

// Done reports whether maxFrames frames have been evaluated.
func (s *Scheduler) Done(maxFrames int) bool {
	return s.state.Frame >= maxFrames
}

// Step evaluates one frame and returns its events, phase event first.
func (s *Scheduler) Step() []Event {
	rec := &Recorder{}
	out := Tee(rec, s.out)

	s.state.Frame++
	emit(out, &s.state, KindPhase, Actor{}, 0)

	h, ok := handlers[s.state.Phase]
	if !ok {
		// Unreachable for states built by NewState.
		panic(fmt.Sprintf("sim: no handler for %s", s.state.Phase))
	}
	s.state.Phase = h(&s.state, out)

	return rec.Events()
}

// Result summarizes a Run.
type Result struct {
	Frames int
	Final  Snapshot
	Events []Event
	Digest string
}

// Run steps until maxFrames frames have been evaluated in total or ctx is
// done. A maxFrames of 0 uses the scenario's frame budget. On
// cancellation the partial result is returned with ctx's error.
func (s *Scheduler) Run(ctx context.Context, maxFrames int) (Result, error) {
	if maxFrames < 0 {
		return Result{}, fmt.Errorf("sim: frame budget must not be negative, got %d", maxFrames)
	}
	if maxFrames == 0 {
		maxFrames = s.scenario.FrameBudget()
	}

	var events []Event
	var err error
	for !s.Done(maxFrames) {
		if err = ctx.Err(); err != nil {
			break
		}
		events = append(events, s.Step()...)
	}

	return Result{
		Frames: s.state.Frame,
		Final:  s.state.Snapshot(),
		Events: events,
		Digest: Digest(events),
	}, err
}
