package tui

import (
	"pentone/palette"
	"pentone/pattern"
	"pentone/sequencer"
)

// Sink receives the region events a pen produces. *sequencer.Manager
// satisfies it.
type Sink interface {
	OnEnter(id sequencer.SlotID, r sequencer.Region)
	OnChange(id sequencer.SlotID, r sequencer.Region)
	OnLeave(id sequencer.SlotID)
	OnEnterSpecial(id sequencer.SlotID, kind pattern.SpecialKind)
	OnLeaveSpecial(id sequencer.SlotID)
	SpecialFor(id sequencer.SlotID) pattern.SpecialKind
}

// Pen is one slot's position over the strips. Moving a lifted pen is silent;
// a pen that is down turns every move into region events.
type Pen struct {
	Slot   sequencer.SlotID
	strips []palette.Strip
	pos    int
	down   bool
}

func NewPen(slot sequencer.SlotID, strips []palette.Strip, pos int) *Pen {
	if pos < 0 || pos >= len(strips) {
		pos = 0
	}
	return &Pen{Slot: slot, strips: strips, pos: pos}
}

func (p *Pen) Pos() int   { return p.pos }
func (p *Pen) Down() bool { return p.down }

// Strip returns the strip under the pen
func (p *Pen) Strip() palette.Strip {
	return p.strips[p.pos]
}

func stripRegion(s palette.Strip) sequencer.Region {
	return sequencer.Region{Note: s.Note, Hz: s.Note.Hz()}
}

// Drop puts the pen down on the strip under it
func (p *Pen) Drop(sink Sink) {
	if p.down {
		return
	}
	p.down = true
	s := p.Strip()
	if s.Special {
		sink.OnEnterSpecial(p.Slot, sink.SpecialFor(p.Slot))
		return
	}
	sink.OnEnter(p.Slot, stripRegion(s))
}

// Lift raises the pen off its strip
func (p *Pen) Lift(sink Sink) {
	if !p.down {
		return
	}
	p.down = false
	if p.Strip().Special {
		sink.OnLeaveSpecial(p.Slot)
		return
	}
	sink.OnLeave(p.Slot)
}

// Toggle drops a lifted pen or lifts a dropped one
func (p *Pen) Toggle(sink Sink) {
	if p.down {
		p.Lift(sink)
	} else {
		p.Drop(sink)
	}
}

// MoveTo moves the pen to strip i. Moving within the same note or between
// black strips emits nothing.
func (p *Pen) MoveTo(i int, sink Sink) {
	if i < 0 || i >= len(p.strips) || i == p.pos {
		return
	}
	from, to := p.strips[p.pos], p.strips[i]
	p.pos = i
	if !p.down {
		return
	}

	switch {
	case from.Special && to.Special:
	case to.Special:
		sink.OnEnterSpecial(p.Slot, sink.SpecialFor(p.Slot))
	case from.Special:
		sink.OnLeaveSpecial(p.Slot)
		sink.OnEnter(p.Slot, stripRegion(to))
	case from.Note != to.Note:
		sink.OnChange(p.Slot, stripRegion(to))
	}
}

// Move shifts the pen by delta strips, clamped to the row
func (p *Pen) Move(delta int, sink Sink) {
	i := p.pos + delta
	if i < 0 {
		i = 0
	}
	if i >= len(p.strips) {
		i = len(p.strips) - 1
	}
	p.MoveTo(i, sink)
}
