package pattern

import (
	"fmt"
	"math"
)

// ArpSpacing is the number of steps between arpeggio notes (eighth notes)
const ArpSpacing = 2

// Major triad intervals in semitones
var triad = [3]int{0, 4, 7}

// ArpeggioFreqs returns the frequency sequence of an arpeggio rooted at n.
//
// With chordOn the sequence climbs a major triad through climbOctaves
// octaves and then descends it again, so it has 6*climbOctaves entries.
// Without it, it climbs plain octaves from the root to climbOctaves up and
// back down, skipping the repeated top and bottom notes.
func ArpeggioFreqs(n Note, climbOctaves int, chordOn bool) []float64 {
	if !n.Valid() {
		n = C
	}
	if climbOctaves < 1 {
		climbOctaves = 1
	}
	root := n.Hz()

	var freqs []float64
	if chordOn {
		for o := 0; o < climbOctaves; o++ {
			scale := math.Pow(2, float64(o))
			for _, iv := range triad {
				freqs = append(freqs, n.ShiftedHz(iv)*scale)
			}
		}
		for o := climbOctaves - 1; o >= 0; o-- {
			scale := math.Pow(2, float64(o))
			for i := len(triad) - 1; i >= 0; i-- {
				freqs = append(freqs, n.ShiftedHz(triad[i])*scale)
			}
		}
		return freqs
	}

	for o := 0; o <= climbOctaves; o++ {
		freqs = append(freqs, root*math.Pow(2, float64(o)))
	}
	for o := climbOctaves - 1; o >= 1; o-- {
		freqs = append(freqs, root*math.Pow(2, float64(o)))
	}
	return freqs
}

// Arpeggio returns the arpeggio pattern for a note, one note every
// ArpSpacing steps.
func Arpeggio(n Note, climbOctaves int, chordOn bool) Pattern {
	freqs := ArpeggioFreqs(n, climbOctaves, chordOn)
	steps := make([]Step, len(freqs))
	for i, f := range freqs {
		steps[i] = Step{Offset: i * ArpSpacing, Payload: Freq(f), Accent: i == 0}
	}
	mode := "oct"
	if chordOn {
		mode = "triad"
	}
	if !n.Valid() {
		n = C
	}
	return newPattern(fmt.Sprintf("arp %s %s x%d", n, mode, max(climbOctaves, 1)), len(freqs)*ArpSpacing, steps)
}

// BassSteps is the two-measure bass cycle
const BassSteps = 32

// bass is the constant bass line; PayloadRoot steps take the region pitch
var bass = []Step{
	{Offset: 0, Payload: Root(), Accent: true},
	{Offset: 3, Payload: Root()},
	{Offset: 6, Payload: Root()},
	{Offset: 10, Payload: Root()},
	{Offset: 12, Payload: Root()},
	{Offset: 16, Payload: Root(), Accent: true},
	{Offset: 19, Payload: Root()},
	{Offset: 22, Payload: Root()},
	{Offset: 26, Payload: Root()},
	{Offset: 28, Payload: Root(), OctaveUp: true, Accent: true},
}

// Bass returns the bass pattern. It does not depend on the region; the
// scheduler resolves its root payloads against the region pitch.
func Bass() Pattern {
	return newPattern("bass", BassSteps, append([]Step(nil), bass...))
}

// VibratoSteps is the cycle of the sustained vibrato voice
const VibratoSteps = 16

// Vibrato returns a single sustained note per measure at the region pitch
func Vibrato() Pattern {
	return newPattern("vibrato", VibratoSteps, []Step{{Offset: 0, Payload: Root(), Accent: true}})
}

// Resolve turns a root payload into a concrete frequency for rootHz and
// applies the octave flag. Other payloads pass through, with OctaveUp
// doubling fixed frequencies.
func Resolve(p Payload, rootHz float64, octaveUp bool) Payload {
	switch p.Kind {
	case PayloadRoot:
		p = Freq(rootHz)
	case PayloadFreq:
	default:
		return p
	}
	if octaveUp {
		p.Hz *= 2
	}
	return p
}
