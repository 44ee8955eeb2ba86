package midi

import (
	"fmt"
	"math"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"pentone/clock"
	"pentone/debug"
	"pentone/pattern"
	"pentone/sequencer"
)

// DrumChannel is GM channel 10
const DrumChannel uint8 = 9

// Modulation wheel controller, used for the vibrato voice
const ccModulation uint8 = 1

// ccAllNotesOff silences a channel
const ccAllNotesOff uint8 = 123

// Sender transmits one MIDI message
type Sender func(gomidi.Message) error

// OutputOptions configure an Output
type OutputOptions struct {
	Kit     string // drum kit name, see Kits
	Channel uint8  // 0-based channel of the first pitched instrument
}

// Output renders sounds as MIDI. Hits go to the drum channel, pitched
// instruments each get their own channel starting at Channel.
type Output struct {
	send    Sender
	now     clock.Source
	kit     DrumKit
	channel uint8
	after   func(time.Duration, func())

	mu   sync.Mutex
	used map[uint8]bool
	errs int
}

// NewOutput creates an output writing to send
func NewOutput(send Sender, now clock.Source, opts OutputOptions) *Output {
	if now == nil {
		now = clock.Monotonic()
	}
	ch := opts.Channel
	if int(ch)+int(sequencer.NumKinds) > 16 {
		ch = 0
	}
	return &Output{
		send:    send,
		now:     now,
		kit:     GetKit(opts.Kit),
		channel: ch,
		after:   func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		used:    make(map[uint8]bool),
	}
}

// Open connects to the output port matching portName
func Open(portName string, now clock.Source, opts OutputOptions) (*Output, error) {
	port, err := FindOut(portName)
	if err != nil {
		return nil, fmt.Errorf("open midi output: %w", err)
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open midi output %s: %w", port.String(), err)
	}
	debug.Log("midi", "output %s kit=%s ch=%d", port.String(), opts.Kit, opts.Channel+1)
	return NewOutput(send, now, opts), nil
}

// FreqToNote returns the nearest MIDI note for hz
func FreqToNote(hz float64) uint8 {
	if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return 60
	}
	n := math.Round(69 + 12*math.Log2(hz/440))
	return uint8(math.Max(0, math.Min(127, n)))
}

func velocity(accent bool) uint8 {
	if accent {
		return 120
	}
	return 90
}

// gate returns how long a pitched note is held
func gate(s sequencer.Sound) time.Duration {
	switch {
	case s.Payload.Kind == pattern.PayloadChord:
		return 3 * time.Second
	case s.Special:
		return 2 * time.Second
	case s.Kind == sequencer.KindBass:
		return 200 * time.Millisecond
	case s.Kind == sequencer.KindVibrato:
		return 1500 * time.Millisecond
	default:
		return 150 * time.Millisecond
	}
}

// Play schedules s at clock time at. Send errors are counted and logged,
// never returned.
func (o *Output) Play(s sequencer.Sound, at time.Duration) {
	delay := at - o.now()
	if delay < 0 {
		delay = 0
	}

	var ch uint8
	var notes []uint8
	hold := 50 * time.Millisecond
	switch s.Payload.Kind {
	case pattern.PayloadHit:
		ch = DrumChannel
		snd := s.Payload.Sound
		if snd >= pattern.NumSounds {
			snd = pattern.Kick
		}
		notes = []uint8{o.kit.Notes[snd]}
	case pattern.PayloadFreq:
		ch = o.channel + uint8(s.Kind)
		notes = []uint8{FreqToNote(s.Payload.Hz)}
		hold = gate(s)
	case pattern.PayloadChord:
		ch = o.channel + uint8(s.Kind)
		for _, hz := range s.Payload.Tones {
			notes = append(notes, FreqToNote(hz))
		}
		hold = gate(s)
	default:
		return
	}
	vib := s.Kind == sequencer.KindVibrato && s.Payload.Kind == pattern.PayloadFreq
	vel := velocity(s.Accent)

	o.after(delay, func() {
		if vib {
			o.write(gomidi.ControlChange(ch, ccModulation, 64))
		}
		for _, n := range notes {
			o.write(gomidi.NoteOn(ch, n, vel))
		}
		o.after(hold, func() {
			for _, n := range notes {
				o.write(gomidi.NoteOff(ch, n))
			}
			if vib {
				o.write(gomidi.ControlChange(ch, ccModulation, 0))
			}
		})
	})
}

func (o *Output) write(msg gomidi.Message) {
	var ch uint8
	msg.GetChannel(&ch)

	o.mu.Lock()
	o.used[ch] = true
	o.mu.Unlock()

	if err := o.send(msg); err != nil {
		o.mu.Lock()
		o.errs++
		n := o.errs
		o.mu.Unlock()
		if n == 1 || n%100 == 0 {
			debug.Log("midi", "send %s failed (%d errors): %v", msg, n, err)
		}
	}
}

// Errors returns how many sends have failed
func (o *Output) Errors() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errs
}

// Close silences every channel the output has used
func (o *Output) Close() error {
	o.mu.Lock()
	var chans []uint8
	for ch := range o.used {
		chans = append(chans, ch)
	}
	o.mu.Unlock()
	for _, ch := range chans {
		if err := o.send(gomidi.ControlChange(ch, ccAllNotesOff, 0)); err != nil {
			return fmt.Errorf("all notes off on channel %d: %w", ch+1, err)
		}
	}
	return nil
}
