package sim

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Kind classifies trace events.
type Kind string

const (
	KindPhase  Kind = "phase"  // Start of a frame, one per frame
	KindReady  Kind = "ready"  // Actor reached max energy
	KindSelect Kind = "select" // Actor drained and received a ticket
	KindAttack Kind = "attack" // Enemy attack resolved
	KindMove   Kind = "move"   // Hero move ticket decremented
)

// Event is one observable step of the simulation.
type Event struct {
	Frame int   `json:"frame"`
	Phase Phase `json:"phase"`
	Kind  Kind  `json:"kind"`
	Actor Actor `json:"actor,omitzero"`
	Value int   `json:"value,omitempty"` // Ticket size for select, remaining ticks for move
}

// Message returns the human-readable body of the trace line.
func (e Event) Message() string {
	switch e.Kind {
	case KindPhase:
		return e.Phase.Label()
	case KindReady:
		return e.Actor.String() + " rdy"
	case KindSelect:
		if e.Actor.Role == RoleHero {
			return fmt.Sprintf("Hero move [%d]", e.Value)
		}
		return fmt.Sprintf("%s attack [%d]", e.Actor, e.Value)
	case KindAttack:
		return e.Actor.String() + " attacks"
	case KindMove:
		return fmt.Sprintf("Hero moving [%d]", e.Value)
	default:
		return string(e.Kind)
	}
}

// Line renders the event as "Frame [<n>]: <message>".
func (e Event) Line() string {
	return fmt.Sprintf("Frame [%d]: %s", e.Frame, e.Message())
}

// Emitter receives trace events as they happen.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(ev Event) { f(ev) }

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(Event) {})

// Recorder keeps every event in order.
type Recorder struct {
	events []Event
}

func (r *Recorder) Emit(ev Event) {
	r.events = append(r.events, ev)
}

// Events returns the recorded events.
func (r *Recorder) Events() []Event {
	return r.events
}

// Reset forgets all recorded events.
func (r *Recorder) Reset() {
	r.events = r.events[:0]
}

type multiEmitter []Emitter

func (m multiEmitter) Emit(ev Event) {
	for _, e := range m {
		e.Emit(ev)
	}
}

// Tee fans events out to every non-nil emitter.
func Tee(emitters ...Emitter) Emitter {
	var m multiEmitter
	for _, e := range emitters {
		if e != nil {
			m = append(m, e)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

// Format selects how WriterSink encodes events.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates an output format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("sim: unknown format %q (want text or json)", s)
	}
}

// WriterSink writes each event to w as a trace line or a JSON object
// per line. The first write error is kept and later events are dropped.
type WriterSink struct {
	w      io.Writer
	format Format
	enc    *json.Encoder
	err    error
}

// NewWriterSink creates a sink writing in the given format.
func NewWriterSink(w io.Writer, format Format) *WriterSink {
	s := &WriterSink{w: w, format: format}
	if format == FormatJSON {
		s.enc = json.NewEncoder(w)
	}
	return s
}

func (s *WriterSink) Emit(ev Event) {
	if s.err != nil {
		return
	}
	if s.enc != nil {
		s.err = s.enc.Encode(ev)
		return
	}
	_, s.err = fmt.Fprintln(s.w, ev.Line())
}

// Err returns the first write error, if any.
func (s *WriterSink) Err() error {
	return s.err
}

// Text joins the trace lines of events with newlines.
func Text(events []Event) string {
	var sb strings.Builder
	for i, ev := range events {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(ev.Line())
	}
	return sb.String()
}

// Digest fingerprints a trace. Two runs with equal digests printed the
// same lines.
func Digest(events []Event) string {
	sum := sha256.Sum256([]byte(Text(events)))
	return hex.EncodeToString(sum[:])
}
