package sequencer

import (
	"sort"

	"pentone/pattern"
)

// SlotState is a read-only view of one slot for display
type SlotState struct {
	Slot    SlotID
	Mode    Kind
	State   State
	Over    bool
	Note    pattern.Note
	Special bool
	Kind    pattern.SpecialKind

	Pattern string
	Pos     int // step within the current cycle
	Length  int
	Pending int
}

// Snapshot is the manager state the UI renders from
type Snapshot struct {
	BPM   float64
	Slots []SlotState
}

// Slot returns the state of id, or a zero state in the default mode
func (s Snapshot) Slot(id SlotID) SlotState {
	for _, st := range s.Slots {
		if st.Slot == id {
			return st
		}
	}
	return SlotState{Slot: id}
}

// Snapshot captures every known slot, ordered by id
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{BPM: m.clock.BPM()}
	for id, s := range m.slots {
		st := SlotState{
			Slot:    id,
			Mode:    s.mode,
			Over:    s.over,
			Note:    s.region.Note,
			Special: s.special,
			Kind:    s.kind,
		}
		if v, ok := m.voices[voiceKey{id, s.mode}]; ok {
			st.State = v.State()
			p := v.Pattern()
			st.Pattern = p.Name
			st.Length = p.Length
			st.Pending = v.Pending()
			if st.State != Idle && p.Length > 0 {
				st.Pos = (v.Cursor() - v.cycleBase) % p.Length
			}
		}
		snap.Slots = append(snap.Slots, st)
	}
	sort.Slice(snap.Slots, func(i, j int) bool { return snap.Slots[i].Slot < snap.Slots[j].Slot })
	return snap
}
