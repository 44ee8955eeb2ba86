package midi

import (
	"context"
	"io"
	"sync"
	"time"

	"pentone/debug"
	"pentone/sequencer"
)

// DeviceEvent is emitted when a keyboard connects or disconnects
type DeviceEvent struct {
	Type DeviceEventType
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager watches for the configured keyboard and connects it to a
// slot whenever it is plugged in.
type DeviceManager struct {
	want string
	slot sequencer.SlotID
	sink RegionSink

	keyboards map[string]io.Closer
	mu        sync.RWMutex
	events    chan DeviceEvent
	pollRate  time.Duration

	// port listing and opening, replaced in tests
	list func() []string
	open func(name string) (io.Closer, error)
}

// NewDeviceManager creates a manager for input ports matching want
func NewDeviceManager(want string, slot sequencer.SlotID, sink RegionSink) *DeviceManager {
	dm := &DeviceManager{
		want:      want,
		slot:      slot,
		sink:      sink,
		keyboards: make(map[string]io.Closer),
		events:    make(chan DeviceEvent, 16),
		pollRate:  time.Second,
		list:      InPortNames,
	}
	dm.open = dm.openPort
	return dm
}

func (dm *DeviceManager) openPort(name string) (io.Closer, error) {
	in, err := FindIn(name)
	if err != nil {
		return nil, err
	}
	return ListenKeyboard(in, dm.slot, dm.sink)
}

// Events returns a channel of connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Connected returns the ids of the connected keyboards
func (dm *DeviceManager) Connected() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	ids := make([]string, 0, len(dm.keyboards))
	for id := range dm.keyboards {
		ids = append(ids, id)
	}
	return ids
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
	}
}

func (dm *DeviceManager) scan() {
	seen := make(map[string]bool)
	for _, name := range dm.list() {
		if !matchPort(name, dm.want) {
			continue
		}
		seen[name] = true

		dm.mu.RLock()
		_, exists := dm.keyboards[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := dm.open(name)
		if err != nil {
			debug.Log("midi", "keyboard %s: %v", name, err)
			continue
		}
		dm.mu.Lock()
		dm.keyboards[name] = kb
		dm.mu.Unlock()
		dm.emit(DeviceEvent{Type: DeviceConnected, ID: name})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id, kb := range dm.keyboards {
		if !seen[id] {
			kb.Close()
			delete(dm.keyboards, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()
	for _, id := range gone {
		debug.Log("midi", "keyboard %s disconnected", id)
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, kb := range dm.keyboards {
		kb.Close()
	}
	dm.keyboards = make(map[string]io.Closer)
}
