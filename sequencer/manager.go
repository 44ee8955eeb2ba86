package sequencer

import (
	"sort"
	"sync"
	"time"

	"pentone/clock"
	"pentone/debug"
	"pentone/pattern"
)

type voiceKey struct {
	slot SlotID
	mode Kind
}

// slot is what the manager remembers about one physical input
type slot struct {
	mode    Kind
	region  Region
	over    bool // pen is over a region (normal or special)
	special bool
	kind    pattern.SpecialKind
}

// Manager routes region events to voices keyed by (slot, mode). Only the
// voice of a slot's active mode is filled; every voice is drained.
type Manager struct {
	clock  *clock.Clock
	timing Timing

	mu          sync.Mutex
	instruments [NumKinds]Instrument
	defaultMode Kind
	slots       map[SlotID]*slot
	voices      map[voiceKey]*Voice

	onEvent func() // poked after every region event
}

// NewManager creates a manager scheduling against c
func NewManager(c *clock.Clock, timing Timing) *Manager {
	m := &Manager{
		clock:  c,
		timing: timing.normalized(),
		slots:  make(map[SlotID]*slot),
		voices: make(map[voiceKey]*Voice),
	}
	for k := Kind(0); k < NumKinds; k++ {
		m.instruments[k] = DefaultInstrument(k)
	}
	return m
}

// Clock returns the clock the manager schedules against
func (m *Manager) Clock() *clock.Clock { return m.clock }

// Timing returns the manager's timing windows
func (m *Manager) Timing() Timing { return m.timing }

// SetOnEvent registers a callback run after each region event
func (m *Manager) SetOnEvent(fn func()) {
	m.mu.Lock()
	m.onEvent = fn
	m.mu.Unlock()
}

// SetDefaultMode sets the mode slots start in
func (m *Manager) SetDefaultMode(k Kind) {
	if !k.Valid() {
		return
	}
	m.mu.Lock()
	m.defaultMode = k
	m.mu.Unlock()
}

// SetInstrument replaces the parameters for inst.Kind on every voice of
// that kind.
func (m *Manager) SetInstrument(inst Instrument) {
	if !inst.Kind.Valid() {
		return
	}
	m.mu.Lock()
	m.instruments[inst.Kind] = inst
	for key, v := range m.voices {
		if key.mode == inst.Kind {
			v.SetInstrument(inst)
		}
	}
	m.mu.Unlock()
	m.notify()
}

// Instrument returns the parameters for k
func (m *Manager) Instrument(k Kind) Instrument {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !k.Valid() {
		return DefaultInstrument(KindDrum)
	}
	return m.instruments[k]
}

func (m *Manager) slot(id SlotID) *slot {
	s, ok := m.slots[id]
	if !ok {
		s = &slot{mode: m.defaultMode}
		m.slots[id] = s
	}
	return s
}

// voice returns the voice for (id, mode), creating it on first use
func (m *Manager) voice(id SlotID, mode Kind) *Voice {
	key := voiceKey{id, mode}
	v, ok := m.voices[key]
	if !ok {
		v = NewVoice(id, m.instruments[mode], m.timing)
		m.voices[key] = v
		debug.Log("slot", "slot=%d new %s voice", id, mode)
	}
	return v
}

func (m *Manager) now() (time.Duration, clock.Grid) {
	return m.clock.Now(), m.clock.Grid()
}

func (m *Manager) notify() {
	m.mu.Lock()
	fn := m.onEvent
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// started re-anchors the measure grid on a voice that began off the grid
// while nothing else was playing.
func (m *Manager) started(v *Voice, now time.Duration) {
	if v.OnGrid() || m.otherLive(v, now) {
		return
	}
	at, _ := v.CycleStart()
	m.clock.ResetOrigin(at)
}

// otherLive reports whether any active voice besides v is playing
func (m *Manager) otherLive(v *Voice, now time.Duration) bool {
	for id, s := range m.slots {
		other, ok := m.voices[voiceKey{id, s.mode}]
		if !ok || other == v {
			continue
		}
		other.expire(now)
		if other.State() != Idle {
			return true
		}
	}
	return false
}

// OnEnter starts (or retargets) the slot's active voice on a region
func (m *Manager) OnEnter(id SlotID, r Region) {
	m.mu.Lock()
	now, g := m.now()
	s := m.slot(id)
	s.region, s.over, s.special = r, true, false
	v := m.voice(id, s.mode)
	if v.Enter(r, now, g) {
		m.started(v, now)
	}
	m.mu.Unlock()
	m.notify()
}

// OnChange hot-swaps the slot's pattern for a new region
func (m *Manager) OnChange(id SlotID, r Region) {
	m.mu.Lock()
	now, g := m.now()
	s := m.slot(id)
	s.region, s.over, s.special = r, true, false
	v := m.voice(id, s.mode)
	if v.Change(r, now, g) {
		m.started(v, now)
	}
	m.mu.Unlock()
	m.notify()
}

// OnLeave lets the slot's voice finish its cycle
func (m *Manager) OnLeave(id SlotID) {
	m.mu.Lock()
	now := m.clock.Now()
	s := m.slot(id)
	s.over, s.special = false, false
	if v, ok := m.voices[voiceKey{id, s.mode}]; ok {
		v.Leave(now)
	}
	m.mu.Unlock()
	m.notify()
}

// OnEnterSpecial switches the slot's voice to ambient behavior
func (m *Manager) OnEnterSpecial(id SlotID, kind pattern.SpecialKind) {
	if !kind.Valid() {
		kind = pattern.AmbientPercussive
	}
	m.mu.Lock()
	now, g := m.now()
	s := m.slot(id)
	s.over, s.special, s.kind = true, true, kind
	v := m.voice(id, s.mode)
	if v.EnterSpecial(kind, now, g) {
		m.started(v, now)
	}
	m.mu.Unlock()
	m.notify()
}

// OnLeaveSpecial ends ambient behavior on the slot
func (m *Manager) OnLeaveSpecial(id SlotID) {
	m.mu.Lock()
	now := m.clock.Now()
	s := m.slot(id)
	s.over, s.special = false, false
	if v, ok := m.voices[voiceKey{id, s.mode}]; ok {
		v.LeaveSpecial(now)
	}
	m.mu.Unlock()
	m.notify()
}

// SpecialFor returns the ambient flavor of the slot's active mode
func (m *Manager) SpecialFor(id SlotID) pattern.SpecialKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instruments[m.slot(id).mode].Special()
}

// Mode returns the slot's active mode
func (m *Manager) Mode(id SlotID) Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot(id).mode
}

// SetMode swaps the slot's instrument. If the slot is over a region, the old
// voice is driven through Leave and the new one entered with the same region.
func (m *Manager) SetMode(id SlotID, mode Kind) {
	if !mode.Valid() {
		return
	}
	m.mu.Lock()
	s := m.slot(id)
	if s.mode == mode {
		m.mu.Unlock()
		return
	}
	now, g := m.now()
	old := s.mode
	if v, ok := m.voices[voiceKey{id, old}]; ok {
		v.Leave(now)
	}
	s.mode = mode
	debug.Log("slot", "slot=%d mode %s -> %s", id, old, mode)

	if s.over {
		v := m.voice(id, mode)
		var fresh bool
		if s.special {
			s.kind = m.instruments[mode].Special()
			fresh = v.EnterSpecial(s.kind, now, g)
		} else {
			fresh = v.Enter(s.region, now, g)
		}
		if fresh {
			m.started(v, now)
		}
	}
	m.mu.Unlock()
	m.notify()
}

// Stop silences every voice. Events already handed out are not retracted.
func (m *Manager) Stop() {
	m.mu.Lock()
	for _, v := range m.voices {
		v.Stop()
		v.ClearQueue()
	}
	for _, s := range m.slots {
		s.over, s.special = false, false
	}
	m.mu.Unlock()
	debug.Log("slot", "all voices stopped")
}

// Fill tops up the queue of every slot's active voice
func (m *Manager) Fill(now time.Duration, g clock.Grid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.slots {
		if v, ok := m.voices[voiceKey{id, s.mode}]; ok {
			v.Fill(now, g)
		}
	}
}

// PopDue removes every event due at or before until from all voices,
// including voices that are no longer active, ordered by time.
func (m *Manager) PopDue(until time.Duration) []Event {
	m.mu.Lock()
	var due []Event
	for _, v := range m.voices {
		due = append(due, v.PopDue(until)...)
	}
	m.mu.Unlock()
	sort.SliceStable(due, func(i, j int) bool { return due[i].At < due[j].At })
	return due
}

// NextEventAt returns the time of the earliest queued event
func (m *Manager) NextEventAt() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var at time.Duration
	found := false
	for _, v := range m.voices {
		if ev := v.PeekNextEvent(); ev != nil && (!found || ev.At < at) {
			at, found = ev.At, true
		}
	}
	return at, found
}
