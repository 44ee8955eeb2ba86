package pattern

import (
	"fmt"
	"sort"
)

// PayloadKind tags what a step plays
type PayloadKind uint8

const (
	PayloadHit   PayloadKind = iota // percussive hit, see Sound
	PayloadFreq                     // fixed frequency in Hz
	PayloadRoot                     // the current region's pitch, resolved at emission
	PayloadChord                    // chord tones, resolved from the ambient progression
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadHit:
		return "hit"
	case PayloadFreq:
		return "freq"
	case PayloadRoot:
		return "root"
	case PayloadChord:
		return "chord"
	default:
		return "unknown"
	}
}

// Payload is the sound a step asks for
type Payload struct {
	Kind  PayloadKind
	Sound Sound     // PayloadHit
	Hz    float64   // PayloadFreq
	Tones []float64 // PayloadChord, once resolved
}

// Hit returns a percussive payload
func Hit(s Sound) Payload { return Payload{Kind: PayloadHit, Sound: s} }

// Freq returns a pitched payload
func Freq(hz float64) Payload { return Payload{Kind: PayloadFreq, Hz: hz} }

// Root returns a payload that takes the region's pitch
func Root() Payload { return Payload{Kind: PayloadRoot} }

// ChordTones returns a chord payload
func ChordTones(tones []float64) Payload { return Payload{Kind: PayloadChord, Tones: tones} }

func (p Payload) String() string {
	switch p.Kind {
	case PayloadHit:
		return p.Sound.String()
	case PayloadFreq:
		return fmt.Sprintf("%.1fHz", p.Hz)
	case PayloadChord:
		return fmt.Sprintf("chord%v", p.Tones)
	default:
		return p.Kind.String()
	}
}

// Step is one hit positioned on the step grid
type Step struct {
	Offset   int
	Payload  Payload
	OctaveUp bool
	Accent   bool
}

// Pattern is an ordered set of steps over a cycle of Length sixteenth steps.
// Patterns are built fresh by the library functions and never mutated.
type Pattern struct {
	Name   string
	Steps  []Step
	Length int
}

func newPattern(name string, length int, steps []Step) Pattern {
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Offset < steps[j].Offset })
	return Pattern{Name: name, Steps: steps, Length: length}
}

// At returns the steps positioned at cycle position pos
func (p Pattern) At(pos int) []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Offset == pos {
			out = append(out, s)
		} else if s.Offset > pos {
			break
		}
	}
	return out
}

// Hits returns how many steps the pattern plays per cycle
func (p Pattern) Hits() int {
	return len(p.Steps)
}
