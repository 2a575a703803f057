package sim

// Handler evaluates one frame of a phase against the simulation context
// and returns the phase for the next frame.
type Handler func(s *State, out Emitter) Phase

// handlers is the phase dispatch table.
var handlers = map[Phase]Handler{
	Regenerating: Regenerate,
	ActionSelect: SelectActions,
	Executing:    Execute,
	EndTurn:      CloseTurn,
}

// HandlerFor returns the handler registered for p.
func HandlerFor(p Phase) (Handler, bool) {
	h, ok := handlers[p]
	return h, ok
}

func emit(out Emitter, s *State, kind Kind, actor Actor, value int) {
	out.Emit(Event{Frame: s.Frame, Phase: s.Phase, Kind: kind, Actor: actor, Value: value})
}

// Regenerate charges every actor by one, hero first then enemies by
// index. Every actor at max afterwards is reported ready; any ready
// actor moves the simulation to ActionSelect.
func Regenerate(s *State, out Emitter) Phase {
	ready := false

	s.Hero.Energy.Charge(1)
	if s.Hero.Energy.Full() {
		emit(out, s, KindReady, HeroActor, 0)
		ready = true
	}

	for i := range s.Enemies {
		e := &s.Enemies[i]
		e.Energy.Charge(1)
		if e.Energy.Full() {
			emit(out, s, KindReady, EnemyActor(i), 0)
			ready = true
		}
	}

	if ready {
		return ActionSelect
	}
	return Regenerating
}

// SelectActions converts readiness into tickets. Each actor at max energy
// without a pending ticket is drained to 0 and given its default action:
// a move for the hero, an attack for enemies.
func SelectActions(s *State, out Emitter) Phase {
	assigned := false

	if s.Hero.Energy.Full() && !s.Hero.Busy() {
		s.Hero.Energy.Drain()
		s.Hero.Move = s.Hero.MoveTicks
		emit(out, s, KindSelect, HeroActor, s.Hero.Move)
		assigned = true
	}

	for i := range s.Enemies {
		e := &s.Enemies[i]
		if !e.Energy.Full() || e.Busy() {
			continue
		}
		e.Energy.Drain()
		e.Attack = e.AttackTicks
		emit(out, s, KindSelect, EnemyActor(i), e.Attack)
		assigned = true
	}

	if !assigned {
		return Regenerating
	}
	return Executing
}

// Execute resolves every queued attack in this frame and advances the
// hero's move by one tick. The phase repeats while the move has ticks
// left.
func Execute(s *State, out Emitter) Phase {
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if !e.Busy() {
			continue
		}
		e.Attack = 0
		emit(out, s, KindAttack, EnemyActor(i), 0)
	}

	if s.Hero.Busy() {
		s.Hero.Move--
		emit(out, s, KindMove, HeroActor, s.Hero.Move)
	}

	if s.Hero.Busy() {
		return Executing
	}
	return EndTurn
}

// CloseTurn marks the end of a turn.
func CloseTurn(_ *State, _ Emitter) Phase {
	return Regenerating
}
