package tui

import (
	"fmt"
	"testing"

	"pentone/palette"
	"pentone/pattern"
	"pentone/sequencer"
)

type recordingSink struct {
	calls []string
}

func (s *recordingSink) OnEnter(id sequencer.SlotID, r sequencer.Region) {
	s.calls = append(s.calls, fmt.Sprintf("enter %s", r.Note))
}

func (s *recordingSink) OnChange(id sequencer.SlotID, r sequencer.Region) {
	s.calls = append(s.calls, fmt.Sprintf("change %s", r.Note))
}

func (s *recordingSink) OnLeave(id sequencer.SlotID) {
	s.calls = append(s.calls, "leave")
}

func (s *recordingSink) OnEnterSpecial(id sequencer.SlotID, kind pattern.SpecialKind) {
	s.calls = append(s.calls, fmt.Sprintf("special %s", kind))
}

func (s *recordingSink) OnLeaveSpecial(id sequencer.SlotID) {
	s.calls = append(s.calls, "leave special")
}

func (s *recordingSink) SpecialFor(id sequencer.SlotID) pattern.SpecialKind {
	return pattern.AmbientBass
}

func TestPenTransitions(t *testing.T) {
	strips := palette.Strips()
	black := len(strips) - 1
	sink := &recordingSink{}
	p := NewPen(0, strips, int(pattern.C))

	p.MoveTo(int(pattern.D), sink) // lifted, silent
	p.Drop(sink)
	p.Drop(sink)
	p.MoveTo(int(pattern.D), sink)
	p.MoveTo(int(pattern.E), sink)
	p.MoveTo(black, sink)
	p.MoveTo(black, sink)
	p.MoveTo(int(pattern.G), sink)
	p.Lift(sink)
	p.MoveTo(black, sink)
	p.Toggle(sink)
	p.Toggle(sink)

	want := []string{
		"enter D",
		"change E",
		fmt.Sprintf("special %s", pattern.AmbientBass),
		"leave special",
		"enter G",
		"leave",
		fmt.Sprintf("special %s", pattern.AmbientBass),
		"leave special",
	}
	if len(sink.calls) != len(want) {
		t.Fatalf("calls %v, want %v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, sink.calls[i], want[i])
		}
	}
}

func TestPenMoveClamps(t *testing.T) {
	strips := palette.Strips()
	sink := &recordingSink{}
	p := NewPen(1, strips, 99)
	if p.Pos() != 0 {
		t.Fatalf("out of range start should clamp to 0, got %d", p.Pos())
	}
	p.Move(-3, sink)
	if p.Pos() != 0 {
		t.Fatalf("pos %d", p.Pos())
	}
	p.Move(100, sink)
	if p.Pos() != len(strips)-1 || !p.Strip().Special {
		t.Fatalf("pos %d", p.Pos())
	}
	if len(sink.calls) != 0 {
		t.Fatalf("lifted pen emitted %v", sink.calls)
	}
}
