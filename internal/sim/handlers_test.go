package sim

import (
	"testing"
)

// newTestState builds a state directly so handlers can be exercised
// without a scheduler.
func newTestState(heroEnergy int, enemyEnergies ...int) State {
	s := State{
		Phase: Regenerating,
		Frame: 1,
		Hero: Hero{
			Energy:    Gauge{Current: heroEnergy, Max: 10},
			MoveTicks: 3,
		},
	}
	for _, e := range enemyEnergies {
		s.Enemies = append(s.Enemies, Enemy{
			Energy:      Gauge{Current: e, Max: 10},
			AttackTicks: 2,
		})
	}
	return s
}

func TestGaugeCharge(t *testing.T) {
	g := Gauge{Current: 9, Max: 10}
	g.Charge(1)
	if g.Current != 10 || !g.Full() {
		t.Fatalf("Expected full gauge at 10, got %+v", g)
	}
	g.Charge(5)
	if g.Current != 10 {
		t.Errorf("Charge past max should clamp, got %d", g.Current)
	}
	g.Charge(-20)
	if g.Current != 0 {
		t.Errorf("Charge below zero should clamp, got %d", g.Current)
	}
	g.Charge(3)
	g.Drain()
	if g.Current != 0 || g.Full() {
		t.Errorf("Drain should empty the gauge, got %+v", g)
	}
}

func TestHandlerTableCoversAllPhases(t *testing.T) {
	for _, p := range Phases {
		if _, ok := HandlerFor(p); !ok {
			t.Errorf("No handler for %s", p)
		}
	}
	if _, ok := HandlerFor(Phase(99)); ok {
		t.Error("Unexpected handler for unknown phase")
	}
}

func TestRegenerateChargesEveryone(t *testing.T) {
	s := newTestState(0, 0, 3, 5)
	rec := &Recorder{}

	next := Regenerate(&s, rec)

	if next != Regenerating {
		t.Errorf("Expected to stay in Regenerating, got %s", next)
	}
	if s.Hero.Energy.Current != 1 {
		t.Errorf("Hero energy = %d, want 1", s.Hero.Energy.Current)
	}
	want := []int{1, 4, 6}
	for i, w := range want {
		if s.Enemies[i].Energy.Current != w {
			t.Errorf("Enemy %d energy = %d, want %d", i, s.Enemies[i].Energy.Current, w)
		}
	}
	if len(rec.Events()) != 0 {
		t.Errorf("Expected no events, got %v", rec.Events())
	}
}

func TestRegenerateReportsEveryReadyActor(t *testing.T) {
	s := newTestState(9, 9, 0, 9)
	rec := &Recorder{}

	next := Regenerate(&s, rec)

	if next != ActionSelect {
		t.Fatalf("Expected ActionSelect, got %s", next)
	}
	events := rec.Events()
	want := []Actor{HeroActor, EnemyActor(0), EnemyActor(2)}
	if len(events) != len(want) {
		t.Fatalf("Expected %d ready events, got %v", len(want), events)
	}
	for i, a := range want {
		if events[i].Kind != KindReady || events[i].Actor != a {
			t.Errorf("Event %d = %+v, want ready for %v", i, events[i], a)
		}
	}
}

func TestRegenerateHeroAlreadyFull(t *testing.T) {
	s := newTestState(10, 0, 0, 2, 2, 4)
	rec := &Recorder{}

	next := Regenerate(&s, rec)

	if next != ActionSelect {
		t.Fatalf("Expected ActionSelect, got %s", next)
	}
	if s.Hero.Energy.Current != 10 {
		t.Errorf("Hero energy should stay capped at 10, got %d", s.Hero.Energy.Current)
	}
	events := rec.Events()
	if len(events) != 1 || events[0].Actor != HeroActor {
		t.Errorf("Expected only the hero ready, got %v", events)
	}
}

func TestSelectActionsAssignsTickets(t *testing.T) {
	s := newTestState(10, 10, 4, 10)
	s.Phase = ActionSelect
	rec := &Recorder{}

	next := SelectActions(&s, rec)

	if next != Executing {
		t.Fatalf("Expected Executing, got %s", next)
	}
	if s.Hero.Energy.Current != 0 || s.Hero.Move != 3 {
		t.Errorf("Hero = %+v, want drained with move 3", s.Hero)
	}
	if s.Enemies[0].Energy.Current != 0 || s.Enemies[0].Attack != 2 {
		t.Errorf("Enemy 0 = %+v, want drained with attack 2", s.Enemies[0])
	}
	if s.Enemies[1].Energy.Current != 4 || s.Enemies[1].Attack != 0 {
		t.Errorf("Enemy 1 should be untouched, got %+v", s.Enemies[1])
	}
	if s.Enemies[2].Attack != 2 {
		t.Errorf("Enemy 2 attack = %d, want 2", s.Enemies[2].Attack)
	}

	events := rec.Events()
	if len(events) != 3 {
		t.Fatalf("Expected 3 select events, got %v", events)
	}
	if events[0].Line() != "Frame [1]: Hero move [3]" {
		t.Errorf("Unexpected line %q", events[0].Line())
	}
	if events[2].Line() != "Frame [1]: Enemy 2 attack [2]" {
		t.Errorf("Unexpected line %q", events[2].Line())
	}
}

func TestSelectActionsSkipsBusyActors(t *testing.T) {
	s := newTestState(10, 10)
	s.Phase = ActionSelect
	s.Hero.Move = 1
	s.Enemies[0].Attack = 2

	next := SelectActions(&s, Discard)

	if next != Regenerating {
		t.Errorf("Expected Regenerating when nobody can be assigned, got %s", next)
	}
	if s.Hero.Energy.Current != 10 || s.Hero.Move != 1 {
		t.Errorf("Busy hero should keep its ticket and energy, got %+v", s.Hero)
	}
	if s.Enemies[0].Attack != 2 {
		t.Errorf("Busy enemy should keep its ticket, got %+v", s.Enemies[0])
	}
}

func TestExecuteResolvesAttacksInstantly(t *testing.T) {
	s := newTestState(0, 0, 0, 0)
	s.Phase = Executing
	s.Enemies[0].Attack = 2
	s.Enemies[2].Attack = 7
	rec := &Recorder{}

	next := Execute(&s, rec)

	if next != EndTurn {
		t.Errorf("Expected EndTurn without a hero move, got %s", next)
	}
	for i, e := range s.Enemies {
		if e.Attack != 0 {
			t.Errorf("Enemy %d attack = %d, want 0", i, e.Attack)
		}
	}
	if len(rec.Events()) != 2 {
		t.Errorf("Expected 2 attack events, got %v", rec.Events())
	}
}

func TestExecuteCountsDownMove(t *testing.T) {
	s := newTestState(0)
	s.Phase = Executing
	s.Hero.Move = 3

	for frame, want := range []Phase{Executing, Executing, EndTurn} {
		next := Execute(&s, Discard)
		if next != want {
			t.Fatalf("Execute #%d returned %s, want %s", frame+1, next, want)
		}
	}
	if s.Hero.Move != 0 {
		t.Errorf("Hero move = %d, want 0", s.Hero.Move)
	}
}

func TestCloseTurn(t *testing.T) {
	s := newTestState(3, 1)
	before := s.Clone()
	rec := &Recorder{}

	if next := CloseTurn(&s, rec); next != Regenerating {
		t.Errorf("Expected Regenerating, got %s", next)
	}
	if s.Hero != before.Hero || s.Enemies[0] != before.Enemies[0] {
		t.Error("CloseTurn should not modify actors")
	}
	if len(rec.Events()) != 0 {
		t.Errorf("CloseTurn should emit nothing, got %v", rec.Events())
	}
}
