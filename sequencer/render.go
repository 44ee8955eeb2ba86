package sequencer

import (
	"fmt"
	"time"

	"pentone/pattern"
)

// SlotID addresses one physical input (a pen)
type SlotID int

// Sound is what a renderer is asked to play
type Sound struct {
	Slot    SlotID
	Kind    Kind
	Special bool
	Accent  bool
	Payload pattern.Payload
}

func (s Sound) String() string {
	return fmt.Sprintf("slot=%d %s %s", s.Slot, s.Kind, s.Payload)
}

// Renderer turns a scheduled sound into audible output. Play is
// fire-and-forget: it must not block the scheduler and must absorb its own
// failures. at is a clock timestamp, possibly slightly in the future.
type Renderer interface {
	Play(s Sound, at time.Duration)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(s Sound, at time.Duration)

func (f RendererFunc) Play(s Sound, at time.Duration) { f(s, at) }

// Nop is the renderer used when no output is available. Scheduling keeps
// running; nothing is heard.
type Nop struct{}

func (Nop) Play(Sound, time.Duration) {}

// Multi fans a sound out to several renderers
type Multi []Renderer

func (m Multi) Play(s Sound, at time.Duration) {
	for _, r := range m {
		if r != nil {
			r.Play(s, at)
		}
	}
}
