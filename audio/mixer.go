package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/faiface/beep"
)

// Mixer sums scheduled streamers into one stereo stream. Read produces
// little-endian float32 frames for oto.
type Mixer struct {
	mu    sync.Mutex
	mixer beep.Mixer
	buf   [][2]float64
	pos   int // frames produced so far
}

// Schedule starts s after delay frames
func (m *Mixer) Schedule(s beep.Streamer, delay int) {
	if delay > 0 {
		s = beep.Seq(beep.Silence(delay), s)
	}
	m.mu.Lock()
	m.mixer.Add(s)
	m.mu.Unlock()
}

// Active returns the number of streamers still playing
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Len()
}

// Position returns the number of frames read so far
func (m *Mixer) Position() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// Clear drops everything scheduled
func (m *Mixer) Clear() {
	m.mu.Lock()
	m.mixer.Clear()
	m.mu.Unlock()
}

func (m *Mixer) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}

	m.mu.Lock()
	if cap(m.buf) < frames {
		m.buf = make([][2]float64, frames)
	}
	buf := m.buf[:frames]
	for i := range buf {
		buf[i] = [2]float64{}
	}
	m.mixer.Stream(buf)
	m.pos += frames
	m.mu.Unlock()

	for i, f := range buf {
		for c := 0; c < 2; c++ {
			v := math.Max(-1, math.Min(1, f[c]))
			binary.LittleEndian.PutUint32(p[i*8+c*4:], math.Float32bits(float32(v)))
		}
	}
	return frames * 8, nil
}
