package pattern

import (
	"fmt"
	"math"
)

// SpecialKind is the flavor of black-region behavior, one per instrument family
type SpecialKind int

const (
	AmbientPercussive SpecialKind = iota
	AmbientBass
	AmbientMelodic
)

func (k SpecialKind) String() string {
	switch k {
	case AmbientPercussive:
		return "ambient-perc"
	case AmbientBass:
		return "ambient-bass"
	case AmbientMelodic:
		return "ambient-melodic"
	default:
		return "ambient-?"
	}
}

// Valid reports whether k is a known kind
func (k SpecialKind) Valid() bool {
	return k >= AmbientPercussive && k <= AmbientMelodic
}

// Ambient cycle lengths in steps
const (
	AmbientPercussiveSteps = 16
	AmbientBassSteps       = 48
	AmbientMelodicSteps    = 64
)

// Ambient returns the single-hit pattern for a special kind. Unknown kinds
// fall back to the percussive flavor.
func Ambient(kind SpecialKind) Pattern {
	switch kind {
	case AmbientBass:
		return newPattern(kind.String(), AmbientBassSteps, []Step{
			{Offset: 0, Payload: Freq(C.Hz() / 4), Accent: true},
		})
	case AmbientMelodic:
		return newPattern(kind.String(), AmbientMelodicSteps, []Step{
			{Offset: 0, Payload: Payload{Kind: PayloadChord}},
		})
	default:
		return newPattern(AmbientPercussive.String(), AmbientPercussiveSteps, []Step{
			{Offset: 0, Payload: Hit(Ride)},
		})
	}
}

// Chord is a named set of semitone offsets from C4
type Chord struct {
	Name      string
	Semitones []int
}

// Tones returns the chord's frequencies
func (c Chord) Tones() []float64 {
	tones := make([]float64, len(c.Semitones))
	for i, s := range c.Semitones {
		tones[i] = C.Hz() * math.Pow(2, float64(s)/12)
	}
	return tones
}

func (c Chord) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Semitones)
}

// progression is I maj7, vi min7, IV maj7, V7sus4 in C
var progression = []Chord{
	{Name: "Cmaj7", Semitones: []int{0, 4, 7, 11}},
	{Name: "Am7", Semitones: []int{-3, 0, 4, 7}},
	{Name: "Fmaj7", Semitones: []int{5, 9, 12, 16}},
	{Name: "G7sus4", Semitones: []int{7, 12, 14, 17}},
}

// ChordsPerRotation is how many ambient notes play each chord before the
// progression advances.
const ChordsPerRotation = 8

// Progression returns a copy of the ambient chord progression
func Progression() []Chord {
	return append([]Chord(nil), progression...)
}

// ChordIndex returns which chord the n-th emitted ambient note plays
func ChordIndex(n int) int {
	if n < 0 {
		n = 0
	}
	return (n / ChordsPerRotation) % len(progression)
}

// AmbientChord returns the chord for the n-th emitted ambient note
func AmbientChord(n int) Chord {
	return progression[ChordIndex(n)]
}
