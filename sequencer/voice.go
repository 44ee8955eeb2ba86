package sequencer

import (
	"time"

	"pentone/clock"
	"pentone/debug"
	"pentone/pattern"
)

// State is a voice's position in its lifecycle
type State int

const (
	Idle     State = iota // no pattern, nothing scheduled
	Aligning              // pattern assigned, waiting for the first step
	Running               // emitting steps every tick
	Draining              // region left, finishing the current cycle
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Aligning:
		return "aligning"
	case Running:
		return "running"
	case Draining:
		return "draining"
	default:
		return "unknown"
	}
}

// Region is the color region a pen is over
type Region struct {
	Note pattern.Note
	Hz   float64
}

// Event is a sound committed to a time
type Event struct {
	At    time.Duration
	Sound Sound
}

const stepsPerMeasure = clock.StepsPerBeat * clock.BeatsPerMeasure

// Timing holds the windows that shape musical feel
type Timing struct {
	IdleTimeout   time.Duration // after Leave, force Idle so the next Enter starts fresh
	AlignEpsilon  time.Duration // Enter this soon after a measure boundary starts on it
	StartLead     time.Duration // otherwise start this far after Enter
	Lookahead     time.Duration // how far ahead steps are enqueued
	DispatchAhead time.Duration // how far ahead events are handed to the renderer
	TickInterval  time.Duration
	MaxPending    int           // queue cap per voice
	MaxLag        time.Duration // beyond this, skip whole cycles instead of compressing (0 = never)
}

// DefaultTiming returns the stock timing
func DefaultTiming() Timing {
	return Timing{
		IdleTimeout:   time.Second,
		AlignEpsilon:  100 * time.Millisecond,
		StartLead:     50 * time.Millisecond,
		Lookahead:     100 * time.Millisecond,
		DispatchAhead: 40 * time.Millisecond,
		TickInterval:  15 * time.Millisecond,
		MaxPending:    32,
		MaxLag:        5 * time.Second,
	}
}

// normalized replaces unusable values with defaults
func (t Timing) normalized() Timing {
	d := DefaultTiming()
	if t.IdleTimeout <= 0 {
		t.IdleTimeout = d.IdleTimeout
	}
	if t.AlignEpsilon < 0 {
		t.AlignEpsilon = 0
	}
	if t.StartLead < 0 {
		t.StartLead = 0
	}
	if t.Lookahead <= 0 {
		t.Lookahead = d.Lookahead
	}
	if t.DispatchAhead < 0 {
		t.DispatchAhead = 0
	}
	if t.TickInterval <= 0 {
		t.TickInterval = d.TickInterval
	}
	if t.MaxPending < 1 {
		t.MaxPending = d.MaxPending
	}
	if t.MaxLag < 0 {
		t.MaxLag = 0
	}
	return t
}

// Voice schedules one slot's instrument. It keeps a running step cursor
// phase-locked to the clock and a lookahead queue of committed events.
type Voice struct {
	slot   SlotID
	inst   Instrument
	timing Timing

	state     State
	region    Region
	hasRegion bool
	special   bool
	kind      pattern.SpecialKind

	pat        pattern.Pattern
	pending    *pattern.Pattern // hot swap applied on the next fill
	generation int

	cursor     int           // steps emitted since the voice started
	cycleBase  int           // measure-aligned cursor the pattern is read from
	cycleStart time.Duration // time of cycleBase
	next       time.Duration // time of the step at cursor
	bpm        float64       // tempo next was computed at
	lastAt     time.Duration // time of the latest enqueued event
	onGrid     bool          // cycle 0 started on a measure boundary
	drainAt    int           // Draining stops at this cursor
	leftAt     time.Duration

	chordN int // ambient chord notes emitted
	queue  []Event
}

// NewVoice creates an idle voice
func NewVoice(slot SlotID, inst Instrument, timing Timing) *Voice {
	return &Voice{slot: slot, inst: inst, timing: timing.normalized()}
}

func (v *Voice) Slot() SlotID           { return v.slot }
func (v *Voice) Instrument() Instrument { return v.inst }
func (v *Voice) State() State           { return v.state }
func (v *Voice) Cursor() int            { return v.cursor }
func (v *Voice) Special() bool          { return v.special }
func (v *Voice) Generation() int        { return v.generation }
func (v *Voice) Pending() int           { return len(v.queue) }

// CycleStart returns the start time of the current cycle. ok is false while
// the voice is idle.
func (v *Voice) CycleStart() (time.Duration, bool) {
	return v.cycleStart, v.state != Idle
}

// OnGrid reports whether the voice started on a measure boundary
func (v *Voice) OnGrid() bool { return v.onGrid }

// Region returns the last region the voice was given
func (v *Voice) Region() (Region, bool) { return v.region, v.hasRegion }

// Pattern returns the pattern the next fill will read
func (v *Voice) Pattern() pattern.Pattern {
	if v.pending != nil {
		return *v.pending
	}
	return v.pat
}

// SetInstrument swaps instrument parameters; an active voice picks up the
// new pattern without losing phase.
func (v *Voice) SetInstrument(inst Instrument) {
	v.inst = inst
	if v.state == Idle {
		return
	}
	if v.special {
		v.swap(pattern.Ambient(v.kind))
	} else if v.hasRegion {
		v.swap(inst.Pattern(v.region))
	}
}

// Enter starts the voice on a region, or retargets it if already active.
// Entering the region the voice already plays is a no-op. It reports
// whether a fresh cycle was started.
func (v *Voice) Enter(r Region, now time.Duration, g clock.Grid) bool {
	v.expire(now)
	if v.state == Idle {
		v.region, v.hasRegion = r, true
		v.special = false
		v.chordN = 0
		v.pat = v.inst.Pattern(r)
		v.pending = nil
		v.generation++
		v.start(now, g)
		debug.Log("voice", "slot=%d %s enter %s start=%v grid=%t", v.slot, v.inst.Kind, r.Note, v.cycleStart, v.onGrid)
		return true
	}
	if v.state == Draining {
		v.resume(now, g)
		debug.Log("voice", "slot=%d %s re-enter %s at cursor %d", v.slot, v.inst.Kind, r.Note, v.cursor)
	}
	v.retarget(r)
	return false
}

// Change hot-swaps the pattern for a new region without touching the cursor
// or cycle start. A change on an idle voice starts it like Enter.
func (v *Voice) Change(r Region, now time.Duration, g clock.Grid) bool {
	v.expire(now)
	if v.state == Idle {
		return v.Enter(r, now, g)
	}
	if v.state == Draining {
		v.resume(now, g)
	}
	v.retarget(r)
	return false
}

func (v *Voice) retarget(r Region) {
	same := v.hasRegion && !v.special && v.region.Note == r.Note
	v.region, v.hasRegion = r, true
	if same {
		return
	}
	v.special = false
	v.swap(v.inst.Pattern(r))
	debug.Log("voice", "slot=%d %s swap -> %s at cursor %d", v.slot, v.inst.Kind, r.Note, v.cursor)
}

// swap queues p as the next pattern; a later swap before the next fill
// replaces it.
func (v *Voice) swap(p pattern.Pattern) {
	v.pending = &p
	v.generation++
}

// EnterSpecial switches to the ambient behavior for kind, keeping phase if
// the voice is already running.
func (v *Voice) EnterSpecial(kind pattern.SpecialKind, now time.Duration, g clock.Grid) bool {
	v.expire(now)
	already := v.special && v.kind == kind
	v.special, v.kind = true, kind
	if !already {
		v.chordN = 0
	}

	switch v.state {
	case Idle:
		v.pat = pattern.Ambient(kind)
		v.pending = nil
		v.generation++
		v.start(now, g)
		debug.Log("voice", "slot=%d %s enter %s start=%v", v.slot, v.inst.Kind, kind, v.cycleStart)
		return true
	case Draining:
		v.resume(now, g)
	}
	if !already {
		v.swap(pattern.Ambient(kind))
		debug.Log("voice", "slot=%d %s -> %s at cursor %d", v.slot, v.inst.Kind, kind, v.cursor)
	}
	return false
}

// LeaveSpecial ends ambient behavior. The voice drains its ambient cycle;
// an Enter arriving meanwhile resumes with the region pattern in phase.
func (v *Voice) LeaveSpecial(now time.Duration) {
	if !v.special {
		return
	}
	v.Leave(now)
}

// Leave stops the voice after the current cycle. A voice that has not
// emitted anything yet goes straight back to idle.
func (v *Voice) Leave(now time.Duration) {
	switch v.state {
	case Idle, Draining:
		return
	case Aligning:
		v.reset("left before first step")
		return
	}
	v.applyPending()
	length := v.cycleLen()
	rel := v.cursor - v.cycleBase
	v.state = Draining
	v.leftAt = now
	// end of the pattern loop in progress
	v.drainAt = v.cycleBase + (rel+length-1)/length*length
	debug.Log("voice", "slot=%d %s draining until cursor %d", v.slot, v.inst.Kind, v.drainAt)
}

// Stop cancels all future enqueuing immediately. Events already queued stay.
func (v *Voice) Stop() {
	if v.state != Idle {
		v.reset("stopped")
	}
}

// resume takes a draining voice back to Running. Steps that passed while the
// voice was not being filled are skipped so it rejoins in phase instead of
// bursting.
func (v *Voice) resume(now time.Duration, g clock.Grid) {
	v.state = Running
	v.retime(g)
	step := g.Step()
	if v.next >= now || step <= 0 {
		return
	}
	missed := int((now - v.next + step - 1) / step)
	v.cursor += missed
	v.next += time.Duration(missed) * step
	v.rebase(step)
}

// retime maps the voice's future onto a new tempo. Times are scaled around
// the tempo change so the voice keeps its position in the measure; events
// already queued stay where they are.
func (v *Voice) retime(g clock.Grid) {
	if v.bpm == g.BPM {
		return
	}
	if v.bpm > 0 {
		v.next = g.Retime(v.next, v.bpm)
		v.cycleStart = g.Retime(v.cycleStart, v.bpm)
		debug.Log("voice", "slot=%d %s retimed %.1f -> %.1f bpm, next step %v", v.slot, v.inst.Kind, v.bpm, g.BPM, v.next)
	}
	v.bpm = g.BPM
}

func (v *Voice) applyPending() {
	if v.pending != nil {
		v.pat = *v.pending
		v.pending = nil
	}
}

// period is the number of steps after which the pattern and the measure
// grid line up again
func (v *Voice) period() int {
	a, b := v.cycleLen(), stepsPerMeasure
	for b != 0 {
		a, b = b, a%b
	}
	return v.cycleLen() / a * stepsPerMeasure
}

// rebase moves cycleBase forward by whole periods, so it always sits on a
// measure boundary and the step read from the pattern is unchanged.
func (v *Voice) rebase(step time.Duration) {
	rel := v.cursor - v.cycleBase
	p := v.period()
	if rel < p {
		return
	}
	v.cycleBase += rel / p * p
	v.cycleStart = v.next - time.Duration(v.cursor-v.cycleBase)*step
}

// expire forces idle once the idle timeout has passed since Leave
func (v *Voice) expire(now time.Duration) {
	if v.state == Draining && now-v.leftAt >= v.timing.IdleTimeout {
		v.reset("idle timeout")
	}
}

func (v *Voice) reset(reason string) {
	debug.Log("voice", "slot=%d %s idle (%s)", v.slot, v.inst.Kind, reason)
	v.state = Idle
	v.special = false
	v.pat = pattern.Pattern{}
	v.pending = nil
	v.cursor, v.cycleBase, v.drainAt = 0, 0, 0
	v.cycleStart, v.next = 0, 0
	v.bpm, v.lastAt = 0, 0
	v.onGrid = false
	v.chordN = 0
}

// start picks cycle 0's start: the latest measure boundary when now is just
// past it, otherwise a short lead from now.
func (v *Voice) start(now time.Duration, g clock.Grid) {
	if g.SinceMeasure(now) <= v.timing.AlignEpsilon {
		v.cycleStart = g.PrevMeasureBoundary(now)
		v.onGrid = true
	} else {
		v.cycleStart = now + v.timing.StartLead
		v.onGrid = false
	}
	v.cursor, v.cycleBase = 0, 0
	v.next = v.cycleStart
	v.bpm, v.lastAt = g.BPM, 0
	v.state = Aligning
}

func (v *Voice) cycleLen() int {
	if v.pat.Length < 1 {
		return 1
	}
	return v.pat.Length
}

// Fill enqueues every step due within the lookahead horizon. g must be the
// tick's single grid snapshot.
func (v *Voice) Fill(now time.Duration, g clock.Grid) {
	v.expire(now)
	v.applyPending()
	if v.state == Idle {
		return
	}
	if v.state == Draining && v.cursor >= v.drainAt {
		if len(v.queue) == 0 {
			v.reset("drained")
		}
		return
	}
	v.retime(g)

	step := g.Step()
	v.catchUp(now, step)

	horizon := now + v.timing.Lookahead
	for len(v.queue) < v.timing.MaxPending && v.next <= horizon {
		if v.state == Draining && v.cursor >= v.drainAt {
			break
		}
		v.rebase(step)
		pos := (v.cursor - v.cycleBase) % v.cycleLen()

		at := max(v.next, now, v.lastAt)
		for _, s := range v.pat.At(pos) {
			v.queue = append(v.queue, Event{At: at, Sound: v.sound(s)})
			v.lastAt = at
		}

		v.cursor++
		v.next += step
		if v.state == Aligning {
			v.state = Running
		}
	}
}

// catchUp skips whole cycles when the voice has fallen more than MaxLag
// behind, keeping the position within the cycle.
func (v *Voice) catchUp(now, step time.Duration) {
	if v.timing.MaxLag <= 0 || now-v.next <= v.timing.MaxLag {
		return
	}
	period := v.period()
	cycleDur := time.Duration(period) * step
	if cycleDur <= 0 {
		return
	}
	cycles := int((now - v.next - step) / cycleDur)
	if cycles < 1 {
		return
	}
	skip := cycles * period
	v.cursor += skip
	v.cycleBase += skip
	v.cycleStart += time.Duration(cycles) * cycleDur
	v.next += time.Duration(cycles) * cycleDur
	debug.Log("voice", "slot=%d %s behind by %v, skipped %d cycles", v.slot, v.inst.Kind, now-v.next, cycles)
}

func (v *Voice) sound(s pattern.Step) Sound {
	p := s.Payload
	if p.Kind == pattern.PayloadChord {
		p = pattern.ChordTones(pattern.AmbientChord(v.chordN).Tones())
		v.chordN++
	} else {
		p = pattern.Resolve(p, v.inst.rootHz(v.region), s.OctaveUp)
	}
	return Sound{Slot: v.slot, Kind: v.inst.Kind, Special: v.special, Accent: s.Accent, Payload: p}
}

// PeekNextEvent returns the earliest queued event without removing it
func (v *Voice) PeekNextEvent() *Event {
	if len(v.queue) == 0 {
		return nil
	}
	return &v.queue[0]
}

// PopNextEvent removes and returns the earliest queued event
func (v *Voice) PopNextEvent() *Event {
	if len(v.queue) == 0 {
		return nil
	}
	ev := v.queue[0]
	v.queue = v.queue[1:]
	return &ev
}

// PopDue removes and returns every queued event at or before until
func (v *Voice) PopDue(until time.Duration) []Event {
	n := 0
	for n < len(v.queue) && v.queue[n].At <= until {
		n++
	}
	if n == 0 {
		return nil
	}
	due := append([]Event(nil), v.queue[:n]...)
	v.queue = v.queue[n:]
	return due
}

// ClearQueue drops events not yet handed to the renderer
func (v *Voice) ClearQueue() {
	v.queue = nil
}
