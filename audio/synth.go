package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"

	"pentone/pattern"
	"pentone/sequencer"
)

type shape int

const (
	sine shape = iota
	triangle
	noise
)

// tone is a single decaying oscillator rendered as a beep.Streamer
type tone struct {
	sr    float64
	i, n  int
	hz    float64
	fall  float64 // fraction the pitch drops by over the note
	shape shape
	decay float64 // exponential decay over the note
	gain  float64
	vib   *vibrato
	phase float64
	seed  uint32
}

// attack ramp length in samples, avoids clicks
const attack = 64

func newTone(sr beep.SampleRate, sh shape, hz float64, dur time.Duration, decay, gain float64) *tone {
	n := sr.N(dur)
	if n < 1 {
		n = 1
	}
	return &tone{sr: float64(sr), n: n, hz: hz, shape: sh, decay: decay, gain: gain, seed: 0x9e3779b9}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	if t.i >= t.n {
		return 0, false
	}
	k := 0
	for ; k < len(samples) && t.i < t.n; k++ {
		pos := float64(t.i) / float64(t.n)
		freq := t.hz * (1 - t.fall*pos)
		if t.vib != nil {
			freq *= math.Exp2(t.vib.sample(t.sr) / 12)
		}
		t.phase += freq / t.sr
		t.phase -= math.Floor(t.phase)

		var v float64
		switch t.shape {
		case triangle:
			v = 4*math.Abs(t.phase-0.5) - 1
		case noise:
			// xorshift32
			t.seed ^= t.seed << 13
			t.seed ^= t.seed >> 17
			t.seed ^= t.seed << 5
			v = float64(t.seed)/math.MaxUint32*2 - 1
		default:
			v = math.Sin(2 * math.Pi * t.phase)
		}

		env := math.Exp(-t.decay * pos)
		if t.i < attack {
			env *= float64(t.i) / attack
		}
		out := v * env * t.gain
		samples[k] = [2]float64{out, out}
		t.i++
	}
	return k, true
}

func (t *tone) Err() error { return nil }

// vibrato is a triangle LFO in semitones
type vibrato struct {
	depth  float64
	rateHz float64
	phase  float64
}

func (l *vibrato) sample(sampleRate float64) float64 {
	var v float64
	if l.phase < 0.5 {
		v = 4*l.phase - 1
	} else {
		v = 3 - 4*l.phase
	}
	l.phase += l.rateHz / sampleRate
	for l.phase >= 1 {
		l.phase -= 1
	}
	return v * l.depth
}

// hit describes how a percussive sound is synthesized
type hit struct {
	shape shape
	hz    float64
	fall  float64
	decay float64
	dur   time.Duration
	gain  float64
	body  float64 // pitched layer under a noise hit, 0 for none
}

var hits = [pattern.NumSounds]hit{
	pattern.Kick:      {sine, 150, 0.66, 5, 250 * time.Millisecond, 0.9, 0},
	pattern.Snare:     {noise, 0, 0, 8, 180 * time.Millisecond, 0.45, 180},
	pattern.ClosedHat: {noise, 0, 0, 30, 60 * time.Millisecond, 0.25, 0},
	pattern.OpenHat:   {noise, 0, 0, 6, 300 * time.Millisecond, 0.25, 0},
	pattern.Clap:      {noise, 0, 0, 12, 150 * time.Millisecond, 0.4, 0},
	pattern.Rim:       {triangle, 800, 0, 30, 40 * time.Millisecond, 0.4, 0},
	pattern.LowTom:    {sine, 110, 0.3, 5, 300 * time.Millisecond, 0.7, 0},
	pattern.HighTom:   {sine, 180, 0.3, 5, 250 * time.Millisecond, 0.6, 0},
	pattern.Cowbell:   {triangle, 560, 0, 10, 200 * time.Millisecond, 0.3, 845},
	pattern.Shaker:    {noise, 0, 0, 20, 80 * time.Millisecond, 0.15, 0},
	pattern.Ride:      {noise, 0, 0, 3, 600 * time.Millisecond, 0.15, 0},
	pattern.Crash:     {noise, 0, 0, 2, 1200 * time.Millisecond, 0.2, 0},
}

func hitStreamer(s pattern.Sound, sr beep.SampleRate) beep.Streamer {
	if s >= pattern.NumSounds {
		s = pattern.Kick
	}
	h := hits[s]
	t := newTone(sr, h.shape, h.hz, h.dur, h.decay, h.gain)
	t.fall = h.fall
	if h.body == 0 {
		return t
	}
	return beep.Mix(t, newTone(sr, sine, h.body, h.dur/2, h.decay, h.gain/2))
}

func pitchedStreamer(s sequencer.Sound, sr beep.SampleRate) beep.Streamer {
	hz := s.Payload.Hz
	switch s.Kind {
	case sequencer.KindBass:
		if s.Special {
			return newTone(sr, triangle, hz, 2*time.Second, 1.5, 0.6)
		}
		return newTone(sr, triangle, hz, 250*time.Millisecond, 4, 0.6)
	case sequencer.KindVibrato:
		t := newTone(sr, sine, hz, 1600*time.Millisecond, 1.5, 0.4)
		t.vib = &vibrato{depth: 0.3, rateHz: 5.5}
		return t
	default:
		return newTone(sr, sine, hz, 200*time.Millisecond, 6, 0.35)
	}
}

func chordStreamer(tones []float64, sr beep.SampleRate) beep.Streamer {
	if len(tones) == 0 {
		return beep.Silence(0)
	}
	parts := make([]beep.Streamer, len(tones))
	for i, hz := range tones {
		parts[i] = newTone(sr, sine, hz, 3*time.Second, 1, 0.5/float64(len(tones)))
	}
	return beep.Mix(parts...)
}

// Voice returns the streamer that renders one scheduled sound
func Voice(s sequencer.Sound, sr beep.SampleRate) beep.Streamer {
	var st beep.Streamer
	switch s.Payload.Kind {
	case pattern.PayloadHit:
		st = hitStreamer(s.Payload.Sound, sr)
	case pattern.PayloadChord:
		st = chordStreamer(s.Payload.Tones, sr)
	case pattern.PayloadFreq:
		st = pitchedStreamer(s, sr)
	default:
		return beep.Silence(0)
	}
	if s.Accent {
		return st
	}
	return &effects.Volume{Streamer: st, Base: 2, Volume: -0.6}
}
