package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"pentone/debug"
	"pentone/pattern"
	"pentone/sequencer"
)

// RegionSink receives region events. *sequencer.Manager satisfies it.
type RegionSink interface {
	OnEnter(id sequencer.SlotID, r sequencer.Region)
	OnChange(id sequencer.SlotID, r sequencer.Region)
	OnLeave(id sequencer.SlotID)
}

// Keyboard turns a MIDI keyboard into a region source for one slot. The most
// recently pressed held key is the current region.
type Keyboard struct {
	id   string
	slot sequencer.SlotID
	sink RegionSink

	mu       sync.Mutex
	held     []uint8
	stopFunc func()
}

// NewKeyboard creates a keyboard that is fed with HandleMessage
func NewKeyboard(id string, slot sequencer.SlotID, sink RegionSink) *Keyboard {
	return &Keyboard{id: id, slot: slot, sink: sink}
}

// ListenKeyboard opens inPort and drives slot from it
func ListenKeyboard(inPort drivers.In, slot sequencer.SlotID, sink RegionSink) (*Keyboard, error) {
	kb := NewKeyboard(inPort.String(), slot, sink)
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		kb.HandleMessage(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", inPort.String(), err)
	}
	kb.stopFunc = stop
	debug.Log("midi", "keyboard %s -> slot %d", inPort.String(), slot)
	return kb, nil
}

func (kb *Keyboard) ID() string {
	return kb.id
}

func keyRegion(key uint8) sequencer.Region {
	n, hz := pattern.NoteFromMIDI(key)
	return sequencer.Region{Note: n, Hz: hz}
}

// HandleMessage applies a note on or off
func (kb *Keyboard) HandleMessage(msg gomidi.Message) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		kb.press(key)
	case msg.GetNoteEnd(&channel, &key):
		kb.release(key)
	}
}

func (kb *Keyboard) press(key uint8) {
	kb.mu.Lock()
	first := len(kb.held) == 0
	kb.held = append(remove(kb.held, key), key)
	kb.mu.Unlock()

	if first {
		kb.sink.OnEnter(kb.slot, keyRegion(key))
	} else {
		kb.sink.OnChange(kb.slot, keyRegion(key))
	}
}

func (kb *Keyboard) release(key uint8) {
	kb.mu.Lock()
	if len(kb.held) == 0 {
		kb.mu.Unlock()
		return
	}
	top := kb.held[len(kb.held)-1]
	kb.held = remove(kb.held, key)
	var next uint8
	empty := len(kb.held) == 0
	if !empty {
		next = kb.held[len(kb.held)-1]
	}
	kb.mu.Unlock()

	switch {
	case empty:
		kb.sink.OnLeave(kb.slot)
	case key == top:
		// fall back to the key still held
		kb.sink.OnChange(kb.slot, keyRegion(next))
	}
}

func remove(keys []uint8, key uint8) []uint8 {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

// Close stops listening and leaves any held region
func (kb *Keyboard) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	kb.mu.Lock()
	held := len(kb.held) > 0
	kb.held = nil
	kb.mu.Unlock()
	if held {
		kb.sink.OnLeave(kb.slot)
	}
	return nil
}
