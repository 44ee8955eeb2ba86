package clock

import (
	"math"
	"sync"
	"time"

	"pentone/debug"
)

// Source returns the current time as an offset on a free-running monotonic clock.
type Source func() time.Duration

// Monotonic returns a Source backed by Go's monotonic clock, so wall-clock
// adjustments never move musical time.
func Monotonic() Source {
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}

// DefaultBPM is used when a clock is created with an invalid tempo
const DefaultBPM = 120.0

// BeatsPerMeasure is fixed at 4/4
const BeatsPerMeasure = 4

// StepsPerBeat is the sixteenth-note grid
const StepsPerBeat = 4

// Clock is the shared musical clock. Tempo and origin are written by a single
// control path and read by every voice once per tick via Grid.
type Clock struct {
	src    Source
	mu     sync.RWMutex
	origin time.Duration
	pivot  time.Duration // time of the last tempo change
	bpm    float64
}

// New creates a clock on src. An invalid bpm falls back to DefaultBPM.
func New(src Source, bpm float64) *Clock {
	if src == nil {
		src = Monotonic()
	}
	if !validBPM(bpm) {
		bpm = DefaultBPM
	}
	return &Clock{src: src, bpm: bpm, origin: src()}
}

func validBPM(bpm float64) bool {
	return bpm > 0 && !math.IsNaN(bpm) && !math.IsInf(bpm, 0)
}

// Now returns the current timestamp
func (c *Clock) Now() time.Duration {
	return c.src()
}

// BPM returns the current tempo
func (c *Clock) BPM() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bpm
}

// SetBPM changes the tempo for future scheduling. Non-positive values are
// rejected and the previous tempo is kept. The origin is moved so the current
// instant keeps its position within the measure.
func (c *Clock) SetBPM(bpm float64) bool {
	if !validBPM(bpm) {
		debug.Log("clock", "rejected bpm %v", bpm)
		return false
	}
	now := c.src()
	c.mu.Lock()
	if bpm != c.bpm {
		old := Grid{Origin: c.origin, BPM: c.bpm, Pivot: c.pivot}
		next := Grid{BPM: bpm, Pivot: now}
		c.origin = next.Retime(old.PrevMeasureBoundary(now), c.bpm)
		c.pivot = now
		c.bpm = bpm
	}
	origin := c.origin
	c.mu.Unlock()
	debug.Log("clock", "bpm=%.1f origin=%v", bpm, origin)
	return true
}

// Origin returns the timestamp measure boundaries are counted from
func (c *Clock) Origin() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.origin
}

// ResetOrigin re-anchors the measure grid at at.
func (c *Clock) ResetOrigin(at time.Duration) {
	c.mu.Lock()
	c.origin = at
	c.mu.Unlock()
	debug.Log("clock", "origin reset to %v", at)
}

// Grid returns a consistent snapshot of origin and tempo.
func (c *Clock) Grid() Grid {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Grid{Origin: c.origin, BPM: c.bpm, Pivot: c.pivot}
}

// NextMeasureBoundary returns the first measure boundary at or after from,
// counting from origin at the current tempo.
func (c *Clock) NextMeasureBoundary(from, origin time.Duration) time.Duration {
	return Grid{Origin: origin, BPM: c.BPM()}.NextMeasureBoundary(from)
}
