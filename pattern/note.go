package pattern

import "math"

// Note is a pitch class: the discrete identity of a color region.
type Note int

const (
	C Note = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// NumNotes is the number of pitch classes
const NumNotes = 12

var noteNames = [NumNotes]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Valid reports whether n is one of the 12 pitch classes
func (n Note) Valid() bool {
	return n >= 0 && n < NumNotes
}

func (n Note) String() string {
	if !n.Valid() {
		return "?"
	}
	return noteNames[n]
}

// Hz returns the frequency of the note in octave 4 (A4 = 440Hz).
// Invalid notes fall back to C.
func (n Note) Hz() float64 {
	if !n.Valid() {
		n = C
	}
	return 440 * math.Pow(2, float64(int(n)-int(A))/12)
}

// Shift moves n by semitones and returns the resulting pitch class plus how
// many octaves the raw index crossed.
func (n Note) Shift(semitones int) (Note, int) {
	raw := int(n) + semitones
	oct := raw / NumNotes
	if raw < 0 && raw%NumNotes != 0 {
		oct--
	}
	return Note(raw - oct*NumNotes), oct
}

// ShiftedHz returns the frequency of n moved by semitones, bumping an octave
// for every time the raw index wraps.
func (n Note) ShiftedHz(semitones int) float64 {
	pc, oct := n.Shift(semitones)
	return pc.Hz() * math.Pow(2, float64(oct))
}

// NoteFromMIDI returns the pitch class and frequency for a MIDI note number
func NoteFromMIDI(key uint8) (Note, float64) {
	return Note(int(key) % NumNotes), 440 * math.Pow(2, (float64(key)-69)/12)
}

// ParseNote parses a note name such as "C#". ok is false for unknown names.
func ParseNote(s string) (Note, bool) {
	for i, name := range noteNames {
		if name == s {
			return Note(i), true
		}
	}
	return C, false
}
