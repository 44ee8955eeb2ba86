package sequencer

import (
	"testing"
	"time"

	"pentone/clock"
	"pentone/pattern"
)

type fakeTime struct {
	now time.Duration
}

func (f *fakeTime) source() clock.Source {
	return func() time.Duration { return f.now }
}

func newTestManager() (*Manager, *fakeTime) {
	ft := &fakeTime{}
	c := clock.New(ft.source(), 120)
	return NewManager(c, testTiming()), ft
}

func TestManagerLazyVoicesPerSlot(t *testing.T) {
	m, ft := newTestManager()
	ft.now = 20 * ms
	m.OnEnter(1, region(pattern.C))
	m.OnEnter(2, region(pattern.E))

	snap := m.Snapshot()
	if len(snap.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(snap.Slots))
	}
	for _, st := range snap.Slots {
		if st.State != Aligning || st.Mode != KindDrum || !st.Over {
			t.Fatalf("slot %d: %+v", st.Slot, st)
		}
	}
	if snap.Slot(2).Pattern != pattern.Drum(pattern.E).Name {
		t.Fatalf("slot 2 pattern %q", snap.Slot(2).Pattern)
	}
	if len(m.voices) != 2 {
		t.Fatalf("expected 2 voices, got %d", len(m.voices))
	}
}

func TestManagerSetModeSwapsVoice(t *testing.T) {
	m, ft := newTestManager()
	m.OnEnter(1, region(pattern.A))
	m.Fill(0, m.clock.Grid())

	ft.now = 300 * ms
	m.Fill(ft.now, m.clock.Grid())
	m.SetMode(1, KindBass)

	drum := m.voices[voiceKey{1, KindDrum}]
	bass := m.voices[voiceKey{1, KindBass}]
	if drum.State() != Draining {
		t.Fatalf("old voice %s, want draining", drum.State())
	}
	if bass == nil || bass.State() == Idle {
		t.Fatalf("new voice not started")
	}
	if r, _ := bass.Region(); r.Note != pattern.A {
		t.Fatalf("new voice region %v", r.Note)
	}
	if m.Mode(1) != KindBass {
		t.Fatalf("mode %s", m.Mode(1))
	}

	// only the active voice is filled
	cursor := drum.Cursor()
	m.Fill(900*ms, m.clock.Grid())
	if drum.Cursor() != cursor {
		t.Fatalf("inactive voice was filled")
	}
	if bass.Cursor() == 0 {
		t.Fatalf("active voice was not filled")
	}
}

func TestManagerSetModeSameIsNoop(t *testing.T) {
	m, _ := newTestManager()
	m.OnEnter(1, region(pattern.C))
	m.SetMode(1, KindDrum)
	m.SetMode(1, Kind(99))
	if v := m.voices[voiceKey{1, KindDrum}]; v.State() != Aligning {
		t.Fatalf("voice disturbed: %s", v.State())
	}
	if len(m.voices) != 1 {
		t.Fatalf("unexpected voices %d", len(m.voices))
	}
}

func TestManagerSetModeWithoutRegionOnlyRecordsMode(t *testing.T) {
	m, _ := newTestManager()
	m.SetMode(3, KindVibrato)
	if m.Mode(3) != KindVibrato {
		t.Fatalf("mode %s", m.Mode(3))
	}
	if len(m.voices) != 0 {
		t.Fatalf("voice created without a region")
	}
	m.OnEnter(3, region(pattern.G))
	if _, ok := m.voices[voiceKey{3, KindVibrato}]; !ok {
		t.Fatalf("enter did not use the recorded mode")
	}
}

func TestManagerSetModeWhileSpecial(t *testing.T) {
	m, _ := newTestManager()
	m.OnEnterSpecial(1, m.SpecialFor(1))
	if m.SpecialFor(1) != pattern.AmbientPercussive {
		t.Fatalf("drum special %s", m.SpecialFor(1))
	}

	m.SetMode(1, KindArpeggio)
	v := m.voices[voiceKey{1, KindArpeggio}]
	if v == nil || !v.Special() {
		t.Fatalf("new voice not special")
	}
	if v.Pattern().Length != pattern.AmbientMelodicSteps {
		t.Fatalf("expected melodic ambient, got length %d", v.Pattern().Length)
	}
	st := m.Snapshot().Slot(1)
	if !st.Special || st.Kind != pattern.AmbientMelodic {
		t.Fatalf("snapshot %+v", st)
	}
}

func TestManagerOriginResetsForFirstOffGridVoice(t *testing.T) {
	m, ft := newTestManager()
	ft.now = 500 * ms
	m.OnEnter(1, region(pattern.C))
	if got := m.clock.Origin(); got != 550*ms {
		t.Fatalf("origin %v, want 550ms", got)
	}

	// a second voice starting off-grid does not move the shared grid
	ft.now = 700 * ms
	m.OnEnter(2, region(pattern.D))
	if got := m.clock.Origin(); got != 550*ms {
		t.Fatalf("origin moved to %v", got)
	}

	// near the next boundary a voice snaps onto it
	ft.now = 2600 * ms
	m.OnEnter(3, region(pattern.E))
	v := m.voices[voiceKey{3, KindDrum}]
	if start, _ := v.CycleStart(); start != 2550*ms || !v.OnGrid() {
		t.Fatalf("start %v grid %t", start, v.OnGrid())
	}
}

func TestManagerPopDueFlushesInactiveVoices(t *testing.T) {
	m, ft := newTestManager()
	m.OnEnter(1, region(pattern.C))
	m.Fill(0, m.clock.Grid())

	ft.now = 10 * ms
	m.SetMode(1, KindBass)
	due := m.PopDue(50 * ms)
	drums := 0
	for i, ev := range due {
		if ev.Sound.Kind == KindDrum {
			drums++
		}
		if i > 0 && ev.At < due[i-1].At {
			t.Fatalf("events not ordered")
		}
	}
	if drums == 0 {
		t.Fatalf("committed drum events were dropped on mode switch")
	}
}

func TestManagerLeaveAndSpecialTransitions(t *testing.T) {
	m, ft := newTestManager()
	m.OnLeave(4) // unknown slot
	m.OnLeaveSpecial(4)

	m.OnEnter(1, region(pattern.C))
	m.Fill(0, m.clock.Grid())
	ft.now = 200 * ms
	m.Fill(ft.now, m.clock.Grid())

	m.OnEnterSpecial(1, pattern.SpecialKind(42))
	v := m.voices[voiceKey{1, KindDrum}]
	if !v.Special() || v.Pattern().Length != pattern.AmbientPercussiveSteps {
		t.Fatalf("unknown special kind should fall back to percussive")
	}
	m.OnLeaveSpecial(1)
	if v.State() != Draining {
		t.Fatalf("state %s", v.State())
	}
	m.OnChange(1, region(pattern.F))
	if v.State() != Running || v.Special() {
		t.Fatalf("change after special: %s special=%t", v.State(), v.Special())
	}
	m.OnLeave(1)
	if st := m.Snapshot().Slot(1); st.Over || st.State != Draining {
		t.Fatalf("snapshot after leave %+v", st)
	}
}

func TestManagerNotifiesOnEvents(t *testing.T) {
	m, _ := newTestManager()
	n := 0
	m.SetOnEvent(func() { n++ })
	m.OnEnter(1, region(pattern.C))
	m.OnChange(1, region(pattern.D))
	m.OnLeave(1)
	if n != 3 {
		t.Fatalf("expected 3 notifications, got %d", n)
	}
}

func TestManagerSetInstrumentRegenerates(t *testing.T) {
	m, _ := newTestManager()
	m.SetMode(1, KindArpeggio)
	m.OnEnter(1, region(pattern.C))
	before := m.Snapshot().Slot(1).Length

	m.SetInstrument(Instrument{Kind: KindArpeggio, Octaves: 3, Chord: true})
	v := m.voices[voiceKey{1, KindArpeggio}]
	if v.Pattern().Length == before {
		t.Fatalf("pattern length unchanged at %d", before)
	}
	if m.Instrument(KindArpeggio).Octaves != 3 {
		t.Fatalf("instrument not stored")
	}
}

func TestManagerStopSilences(t *testing.T) {
	m, _ := newTestManager()
	m.OnEnter(1, region(pattern.C))
	m.Fill(0, m.clock.Grid())
	m.Stop()
	if _, ok := m.NextEventAt(); ok {
		t.Fatalf("queue not cleared")
	}
	if st := m.Snapshot().Slot(1); st.State != Idle || st.Over {
		t.Fatalf("slot after stop %+v", st)
	}
}

func TestTempoChangeKeepsVoicesOnSharedGrid(t *testing.T) {
	m, ft := newTestManager()
	tick := func(from, to time.Duration) {
		for now := from; now <= to; now += 25 * ms {
			ft.now = now
			m.Fill(now, m.clock.Grid())
			m.PopDue(now + 40*ms)
		}
	}
	m.OnEnter(1, region(pattern.C))
	tick(0, 3*time.Second)

	ft.now = 3 * time.Second
	m.clock.SetBPM(60)
	g := m.clock.Grid()
	if g.Origin != time.Second {
		t.Fatalf("origin %v, want 1s", g.Origin)
	}
	tick(3025*ms, 5*time.Second)

	a := m.voices[voiceKey{1, KindDrum}]
	aStart, _ := a.CycleStart()
	if (aStart-g.Origin)%g.Measure() != 0 {
		t.Fatalf("running voice cycle start %v is off the new grid", aStart)
	}

	// a voice entering just after the next boundary lines up with the first
	ft.now = 5010 * ms
	m.OnEnter(2, region(pattern.D))
	b := m.voices[voiceKey{2, KindDrum}]
	bStart, _ := b.CycleStart()
	if !b.OnGrid() || bStart != aStart || bStart != 5*time.Second {
		t.Fatalf("second voice starts at %v (grid %t), first at %v", bStart, b.OnGrid(), aStart)
	}
	if m.clock.Origin() != time.Second {
		t.Fatalf("origin moved to %v", m.clock.Origin())
	}
}
