package clock

import (
	"math"
	"time"
)

// Grid is an immutable view of the clock used for all calculations within a
// single tick.
type Grid struct {
	Origin time.Duration
	BPM    float64
	Pivot  time.Duration // time of the last tempo change
}

// Beat returns the duration of one quarter note
func (g Grid) Beat() time.Duration {
	bpm := g.BPM
	if !validBPM(bpm) {
		bpm = DefaultBPM
	}
	return time.Duration(float64(time.Minute) / bpm)
}

// Measure returns the duration of one 4/4 measure
func (g Grid) Measure() time.Duration {
	return g.Beat() * BeatsPerMeasure
}

// Step returns the duration of one sixteenth-note step
func (g Grid) Step() time.Duration {
	return g.Beat() / StepsPerBeat
}

// PrevMeasureBoundary returns the latest measure boundary at or before t.
func (g Grid) PrevMeasureBoundary(t time.Duration) time.Duration {
	m := g.Measure()
	rel := t - g.Origin
	n := rel / m
	if rel < 0 && rel%m != 0 {
		n--
	}
	return g.Origin + n*m
}

// NextMeasureBoundary returns the earliest measure boundary at or after t.
func (g Grid) NextMeasureBoundary(t time.Duration) time.Duration {
	prev := g.PrevMeasureBoundary(t)
	if prev == t {
		return t
	}
	return prev + g.Measure()
}

// SinceMeasure returns how far t lies past the latest measure boundary
func (g Grid) SinceMeasure(t time.Duration) time.Duration {
	return t - g.PrevMeasureBoundary(t)
}

// Retime maps t, computed on a grid running at oldBPM, onto g's tempo. Times
// are scaled around the tempo change so a point one beat after it stays one
// beat after it.
func (g Grid) Retime(t time.Duration, oldBPM float64) time.Duration {
	if !validBPM(oldBPM) || !validBPM(g.BPM) || oldBPM == g.BPM {
		return t
	}
	return g.Pivot + time.Duration(math.Round(float64(t-g.Pivot)*oldBPM/g.BPM))
}
