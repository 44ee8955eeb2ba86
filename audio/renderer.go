package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/faiface/beep"

	"pentone/clock"
	"pentone/debug"
	"pentone/sequencer"
)

// SampleRate of the output device
const SampleRate = beep.SampleRate(44100)

// 10ms of stereo float32
const bufferSizeBytes10ms = 44100 / 100 * 8

// Renderer synthesizes sounds and plays them on the default audio device.
// If the device cannot be opened the renderer keeps accepting sounds and
// drops them.
type Renderer struct {
	now    clock.Source
	sr     beep.SampleRate
	mixer  *Mixer
	player *oto.Player
	live   bool
}

func newRenderer(now clock.Source) *Renderer {
	if now == nil {
		now = clock.Monotonic()
	}
	return &Renderer{now: now, sr: SampleRate, mixer: &Mixer{}}
}

// New opens the audio device. now must be the scheduler's clock source so
// timestamps line up. The returned renderer is always usable; on error it
// is silent.
func New(now clock.Source) (*Renderer, error) {
	r := newRenderer(now)
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(r.sr),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   20 * time.Millisecond,
	})
	if err != nil {
		debug.Log("audio", "no audio device: %v", err)
		return r, fmt.Errorf("open audio context: %w", err)
	}
	<-ready

	p := ctx.NewPlayer(r.mixer)
	p.SetBufferSize(bufferSizeBytes10ms)
	p.Play()
	r.player = p
	r.live = true
	debug.Log("audio", "output %dHz stereo", int(r.sr))
	return r, nil
}

// Available reports whether sound reaches a device
func (r *Renderer) Available() bool { return r.live }

// Play schedules s to start at clock time at
func (r *Renderer) Play(s sequencer.Sound, at time.Duration) {
	if !r.live {
		return
	}
	delay := at - r.now()
	if delay < 0 {
		delay = 0
	}
	r.mixer.Schedule(Voice(s, r.sr), r.sr.N(delay))
	debug.LogEvery(100, "audio", "%s in %v, %d playing", s, delay, r.mixer.Active())
}

// Close stops output
func (r *Renderer) Close() error {
	r.live = false
	r.mixer.Clear()
	if r.player == nil {
		return nil
	}
	if err := r.player.Close(); err != nil {
		return fmt.Errorf("close audio player: %w", err)
	}
	return nil
}
