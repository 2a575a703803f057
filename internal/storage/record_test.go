package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/vovakirdan/turnsim/internal/config"
	"github.com/vovakirdan/turnsim/internal/sim"
)

func runScenario(t *testing.T, sc config.Scenario) sim.Result {
	t.Helper()
	s, err := sim.New(sc)
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestNewRunRecordFromScheduler(t *testing.T) {
	sc := config.DefaultScenario()
	res := runScenario(t, sc)

	rec, err := NewRunRecord(sc, res)
	if err != nil {
		t.Fatalf("NewRunRecord() failed: %v", err)
	}

	if rec.ScenarioID != "classic" || rec.Frames != 31 || rec.FinalPhase != "Regenerating" {
		t.Errorf("Unexpected record %+v", rec)
	}
	if len(rec.Energies) != 6 || rec.Energies[0] != 1 {
		t.Errorf("Energies = %v, want hero at 1 first", rec.Energies)
	}
	if !strings.HasPrefix(rec.Trace, "Frame [1]: Regenerating\n") {
		t.Errorf("Unexpected trace start %q", rec.Trace[:40])
	}
	if rec.Digest != res.Digest {
		t.Error("Digest not carried over")
	}
	if rec.RosterKey != sc.Fingerprint() {
		t.Error("RosterKey should be the scenario fingerprint")
	}
}

func TestStoredScenarioReproducesRun(t *testing.T) {
	store := openTestStore(t)

	sc := config.DefaultScenario()
	sc.ID = "duel"
	sc.Hero.Energy = 3
	sc.Enemies = sc.Enemies[:2]
	res := runScenario(t, sc)

	rec, err := NewRunRecord(sc, res)
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.SaveRun(rec)
	if err != nil {
		t.Fatal(err)
	}

	run, err := store.Run(id)
	if err != nil {
		t.Fatal(err)
	}
	stored, ok, err := run.ScenarioConfig()
	if err != nil || !ok {
		t.Fatalf("ScenarioConfig() = %v, %v", ok, err)
	}
	if stored.ID != "duel" || stored.Hero != sc.Hero || len(stored.Enemies) != 2 {
		t.Errorf("Stored scenario %+v, want %+v", stored, sc)
	}
	if again := runScenario(t, stored); again.Digest != run.Digest {
		t.Errorf("Stored scenario replays to %s, recorded %s", again.Digest, run.Digest)
	}
}

func TestScenarioConfigMissing(t *testing.T) {
	_, ok, err := RunRecord{ScenarioID: "classic"}.ScenarioConfig()
	if ok || err != nil {
		t.Errorf("Expected no stored scenario, got %v, %v", ok, err)
	}
}

func TestDiverged(t *testing.T) {
	store := openTestStore(t)

	diverged, _, err := store.Diverged(sampleRun("classic", "abc"))
	if err != nil || diverged {
		t.Fatalf("Empty history should not diverge, got %v, %v", diverged, err)
	}

	store.SaveRun(sampleRun("classic", "abc"))

	if diverged, _, _ := store.Diverged(sampleRun("classic", "abc")); diverged {
		t.Error("Same digest reported as diverged")
	}
	diverged, prev, err := store.Diverged(sampleRun("classic", "xyz"))
	if err != nil {
		t.Fatal(err)
	}
	if !diverged || len(prev) != 1 || prev[0] != "abc" {
		t.Errorf("Expected divergence from [abc], got %v %v", diverged, prev)
	}
}

func TestDivergedIgnoresOtherRosters(t *testing.T) {
	store := openTestStore(t)

	builtin := config.DefaultScenario()
	custom := config.DefaultScenario()
	custom.Hero.Energy = 3

	rec, err := NewRunRecord(custom, runScenario(t, custom))
	if err != nil {
		t.Fatal(err)
	}
	store.SaveRun(rec)

	rec, err = NewRunRecord(builtin, runScenario(t, builtin))
	if err != nil {
		t.Fatal(err)
	}
	diverged, prev, err := store.Diverged(rec)
	if err != nil {
		t.Fatal(err)
	}
	if diverged || len(prev) != 0 {
		t.Errorf("A different roster under the same id caused divergence: %v %v", diverged, prev)
	}
}
