package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	flagFrames, flagLogLevel = 0, "info"
	flagDBPath = filepath.Join(t.TempDir(), "runs.db")
	flagConfig, flagFormat, flagRecord = "", "text", false
	flagLimit, flagBrowse, flagClear = 20, false, false
	flagVerify = false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func readGolden(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "sim", "testdata", "classic_31.txt"))
	if err != nil {
		t.Fatalf("cannot read golden trace: %v", err)
	}
	return string(data)
}

func TestRunPrintsClassicTrace(t *testing.T) {
	out, _, err := execute(t, "run")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != readGolden(t) {
		t.Errorf("run output differs from golden trace:\n%s", out)
	}
}

func TestRunFramesOverride(t *testing.T) {
	out, _, err := execute(t, "run", "classic", "--frames", "3")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := "Frame [1]: Regenerating\nFrame [1]: Hero rdy\nFrame [2]: Action select\nFrame [2]: Hero move [3]\nFrame [3]: Executing\nFrame [3]: Hero moving [2]\n"
	if out != want {
		t.Errorf("run --frames 3 =\n%s\nwant\n%s", out, want)
	}
}

func TestRunJSON(t *testing.T) {
	out, _, err := execute(t, "run", "--format", "json", "--frames", "1")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 JSON lines, got %d: %q", len(lines), out)
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("invalid JSON %q: %v", lines[1], err)
	}
	if ev["kind"] != "ready" {
		t.Errorf("kind = %v, want ready", ev["kind"])
	}
}

func TestRunErrors(t *testing.T) {
	tests := [][]string{
		{"run", "nope"},
		{"run", "--format", "xml"},
		{"run", "--frames", "-1"},
		{"run", "--config", "/does/not/exist.yaml"},
		{"run", "--log-level", "loud"},
	}
	for _, args := range tests {
		if _, _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestRunCustomConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel.yaml")
	doc := `
id: duel
frames: 2
hero: {energy: 9, max_energy: 10, move_ticks: 1}
enemies:
  - {energy: 0, max_energy: 10, attack_ticks: 1}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "run", "duel", "--config", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := "Frame [1]: Regenerating\nFrame [1]: Hero rdy\nFrame [2]: Action select\nFrame [2]: Hero move [1]\n"
	if out != want {
		t.Errorf("custom run =\n%s\nwant\n%s", out, want)
	}
}

func TestRecordHistoryReplay(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	if _, _, err := execute(t, "run", "--record", "--db", db); err != nil {
		t.Fatalf("run --record failed: %v", err)
	}
	_, stderr, err := execute(t, "run", "--record", "--db", db)
	if err != nil {
		t.Fatalf("second run --record failed: %v", err)
	}
	if strings.Contains(stderr, "differs") {
		t.Errorf("Identical runs reported a divergence: %s", stderr)
	}

	out, _, err := execute(t, "history", "classic", "--db", db)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if strings.Count(out, "classic") < 3 {
		t.Errorf("Expected two classic runs in history:\n%s", out)
	}
	if strings.Contains(out, "different traces") {
		t.Errorf("Unexpected divergence warning:\n%s", out)
	}

	runID := latestRunID(t, out, "classic")

	replayed, _, err := execute(t, "replay", runID, "--verify", "--db", db)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replayed != readGolden(t) {
		t.Errorf("replay output differs from golden trace:\n%s", replayed)
	}

	if _, _, err := execute(t, "history", "classic", "--clear", "--db", db); err != nil {
		t.Fatalf("history --clear failed: %v", err)
	}
	out, _, _ = execute(t, "history", "--db", db)
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Errorf("Expected empty history after clear:\n%s", out)
	}
}

// latestRunID returns the short ID of the newest run of scenario in a
// history listing.
func latestRunID(t *testing.T, history, scenario string) string {
	t.Helper()
	for _, line := range strings.Split(history, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 1 && fields[1] == scenario && len(fields[0]) == 8 {
			return fields[0]
		}
	}
	t.Fatalf("No %s run in history:\n%s", scenario, history)
	return ""
}

func writeScenario(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplayVerifiesCustomConfigRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	path := writeScenario(t, `
id: duel
frames: 12
hero: {energy: 9, max_energy: 10, move_ticks: 2}
enemies:
  - {energy: 5, max_energy: 6, attack_ticks: 1}
`)

	recorded, _, err := execute(t, "run", "duel", "--config", path, "--record", "--db", db)
	if err != nil {
		t.Fatalf("run --config --record failed: %v", err)
	}

	// The file is gone; replay must use the scenario stored with the run
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "history", "duel", "--db", db)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	runID := latestRunID(t, out, "duel")

	replayed, _, err := execute(t, "replay", runID, "--verify", "--db", db)
	if err != nil {
		t.Fatalf("replay --verify of a custom run failed: %v", err)
	}
	if replayed != recorded {
		t.Errorf("replay output differs from the recorded run:\n%s\nwant\n%s", replayed, recorded)
	}
}

func TestReplayVerifiesCustomRunSharingBuiltinID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	path := writeScenario(t, `
id: classic
hero: {energy: 3, max_energy: 10, move_ticks: 3}
enemies:
  - {energy: 0, max_energy: 10, attack_ticks: 2}
`)

	if _, _, err := execute(t, "run", "--config", path, "--record", "--db", db); err != nil {
		t.Fatalf("custom classic run failed: %v", err)
	}
	out, _, err := execute(t, "history", "classic", "--db", db)
	if err != nil {
		t.Fatal(err)
	}
	customID := latestRunID(t, out, "classic")

	// A builtin recording under the same id is not compared with the custom one
	_, stderr, err := execute(t, "run", "--record", "--db", db)
	if err != nil {
		t.Fatalf("builtin run --record failed: %v", err)
	}
	if strings.Contains(stderr, "differs") {
		t.Errorf("Builtin run compared against a custom roster: %s", stderr)
	}

	out, _, _ = execute(t, "history", "classic", "--db", db)
	if strings.Contains(out, "different traces") {
		t.Errorf("History mixed rosters in its divergence check:\n%s", out)
	}

	if _, _, err := execute(t, "replay", customID, "--verify", "--db", db); err != nil {
		t.Errorf("custom classic run should verify against its own scenario: %v", err)
	}
}

func TestReplayUnknown(t *testing.T) {
	if _, _, err := execute(t, "replay", "00000000"); err == nil {
		t.Error("Expected error for unknown run")
	}
}

func TestList(t *testing.T) {
	out, _, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, id := range []string{"classic", "ambush", "siege"} {
		if !strings.Contains(out, id) {
			t.Errorf("list output missing %s:\n%s", id, out)
		}
	}
}
