package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrTimeout is returned when the MIDI system does not answer a port query
var ErrTimeout = errors.New("midi port query timed out")

// portQueryTimeout guards against CoreMIDI hanging
const portQueryTimeout = 3 * time.Second

// Ports lists input and output ports, giving up after a few seconds
func Ports() (ins []drivers.In, outs []drivers.Out, err error) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, nil
	case <-time.After(portQueryTimeout):
		return nil, nil, ErrTimeout
	}
}

// InPortNames returns the names of all input ports
func InPortNames() []string {
	ins, _, err := Ports()
	if err != nil {
		return nil
	}
	names := make([]string, len(ins))
	for i, p := range ins {
		names[i] = p.String()
	}
	return names
}

// matchPort reports whether a port name matches the configured name. Empty
// matches nothing; otherwise a case-insensitive substring is enough.
func matchPort(portName, want string) bool {
	if want == "" {
		return false
	}
	return strings.Contains(strings.ToLower(portName), strings.ToLower(want))
}

// FindOut returns the first output port matching name. An empty name picks
// the first port.
func FindOut(name string) (drivers.Out, error) {
	_, outs, err := Ports()
	if err != nil {
		return nil, err
	}
	for _, p := range outs {
		if name == "" || matchPort(p.String(), name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no midi output matching %q", name)
}

// FindIn returns the first input port matching name
func FindIn(name string) (drivers.In, error) {
	ins, _, err := Ports()
	if err != nil {
		return nil, err
	}
	for _, p := range ins {
		if matchPort(p.String(), name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no midi input matching %q", name)
}
