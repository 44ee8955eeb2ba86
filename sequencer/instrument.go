package sequencer

import (
	"strings"

	"pentone/pattern"
)

// Kind identifies an instrument family. It doubles as a slot's mode.
type Kind int

const (
	KindDrum Kind = iota
	KindBass
	KindArpeggio
	KindVibrato
	NumKinds
)

var kindNames = [NumKinds]string{"drum", "bass", "arpeggio", "vibrato"}

func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k names a known instrument
func (k Kind) Valid() bool {
	return k >= 0 && k < NumKinds
}

// Next returns the following mode in cycling order
func (k Kind) Next() Kind {
	if !k.Valid() {
		return KindDrum
	}
	return (k + 1) % NumKinds
}

// ParseKind parses an instrument name (case insensitive)
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindDrum, false
}

// Instrument is the parameter set of one instrument family. Only the fields
// relevant to Kind are read.
type Instrument struct {
	Kind Kind

	// Arpeggio
	Octaves int
	Chord   bool
}

// DefaultInstrument returns the stock parameters for k
func DefaultInstrument(k Kind) Instrument {
	switch k {
	case KindArpeggio:
		return Instrument{Kind: k, Octaves: 2, Chord: true}
	default:
		return Instrument{Kind: k}
	}
}

// Pattern returns the normal-mode pattern for a region
func (in Instrument) Pattern(r Region) pattern.Pattern {
	switch in.Kind {
	case KindBass:
		return pattern.Bass()
	case KindArpeggio:
		return pattern.Arpeggio(r.Note, in.Octaves, in.Chord)
	case KindVibrato:
		return pattern.Vibrato()
	default:
		return pattern.Drum(r.Note)
	}
}

// Special returns the black-region flavor of the instrument's family
func (in Instrument) Special() pattern.SpecialKind {
	switch in.Kind {
	case KindDrum:
		return pattern.AmbientPercussive
	case KindBass:
		return pattern.AmbientBass
	default:
		return pattern.AmbientMelodic
	}
}

// rootHz is the pitch root payloads resolve to. Bass sounds two octaves
// below the region.
func (in Instrument) rootHz(r Region) float64 {
	hz := r.Hz
	if hz <= 0 {
		hz = r.Note.Hz()
	}
	if in.Kind == KindBass {
		hz /= 4
	}
	return hz
}
