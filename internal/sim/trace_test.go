package sim

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestEventLines(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{Frame: 1, Phase: Regenerating, Kind: KindPhase}, "Frame [1]: Regenerating"},
		{Event{Frame: 2, Phase: ActionSelect, Kind: KindPhase}, "Frame [2]: Action select"},
		{Event{Frame: 6, Phase: EndTurn, Kind: KindPhase}, "Frame [6]: End turn"},
		{Event{Frame: 1, Kind: KindReady, Actor: HeroActor}, "Frame [1]: Hero rdy"},
		{Event{Frame: 11, Kind: KindReady, Actor: EnemyActor(4)}, "Frame [11]: Enemy 4 rdy"},
		{Event{Frame: 2, Kind: KindSelect, Actor: HeroActor, Value: 3}, "Frame [2]: Hero move [3]"},
		{Event{Frame: 12, Kind: KindSelect, Actor: EnemyActor(4), Value: 2}, "Frame [12]: Enemy 4 attack [2]"},
		{Event{Frame: 13, Kind: KindAttack, Actor: EnemyActor(4)}, "Frame [13]: Enemy 4 attacks"},
		{Event{Frame: 3, Kind: KindMove, Actor: HeroActor, Value: 2}, "Frame [3]: Hero moving [2]"},
	}

	for _, tt := range tests {
		if got := tt.ev.Line(); got != tt.want {
			t.Errorf("Line() = %q, want %q", got, tt.want)
		}
	}
}

func TestPhaseParseRoundTrip(t *testing.T) {
	for _, p := range Phases {
		got, err := ParsePhase(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePhase(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParsePhase("Sleeping"); err == nil {
		t.Error("Expected error for unknown phase")
	}
}

func TestWriterSinkText(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, FormatText)

	sink.Emit(Event{Frame: 1, Phase: Regenerating, Kind: KindPhase})
	sink.Emit(Event{Frame: 1, Phase: Regenerating, Kind: KindReady, Actor: HeroActor})

	want := "Frame [1]: Regenerating\nFrame [1]: Hero rdy\n"
	if buf.String() != want {
		t.Errorf("Output = %q, want %q", buf.String(), want)
	}
	if sink.Err() != nil {
		t.Errorf("Unexpected error: %v", sink.Err())
	}
}

func TestWriterSinkJSON(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, FormatJSON)

	sink.Emit(Event{Frame: 1, Phase: Regenerating, Kind: KindPhase})
	sink.Emit(Event{Frame: 12, Phase: ActionSelect, Kind: KindSelect, Actor: EnemyActor(4), Value: 2})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 JSON lines, got %d: %q", len(lines), buf.String())
	}
	if strings.Contains(lines[0], "actor") {
		t.Errorf("Phase event should omit actor: %s", lines[0])
	}

	var ev Event
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("Cannot decode %s: %v", lines[1], err)
	}
	if ev.Phase != ActionSelect || ev.Actor != EnemyActor(4) || ev.Value != 2 {
		t.Errorf("Decoded %+v", ev)
	}
	if !strings.Contains(lines[1], `"phase":"ActionSelect"`) || !strings.Contains(lines[1], `"role":"enemy"`) {
		t.Errorf("Expected readable phase and role names: %s", lines[1])
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("disk full")
}

func TestWriterSinkStopsAfterError(t *testing.T) {
	w := &failingWriter{}
	sink := NewWriterSink(w, FormatText)

	sink.Emit(Event{Frame: 1, Kind: KindPhase})
	sink.Emit(Event{Frame: 2, Kind: KindPhase})

	if sink.Err() == nil {
		t.Fatal("Expected write error")
	}
	if w.n != 1 {
		t.Errorf("Expected writes to stop after the first error, got %d writes", w.n)
	}
}

func TestTee(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	out := Tee(a, nil, b)
	out.Emit(Event{Frame: 3})

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Errorf("Expected both recorders to get the event, got %d and %d", len(a.Events()), len(b.Events()))
	}
}

func TestDigestDiffers(t *testing.T) {
	e1 := []Event{{Frame: 1, Kind: KindPhase}}
	e2 := []Event{{Frame: 2, Kind: KindPhase}}

	if Digest(e1) == Digest(e2) {
		t.Error("Different traces produced the same digest")
	}
	if Digest(e1) != Digest([]Event{{Frame: 1, Kind: KindPhase}}) {
		t.Error("Equal traces produced different digests")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("ParseFormat(\"\") = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("Expected error for xml")
	}
}
