// Package palette maps colors to musical regions. The canvas is a row of
// twelve hue strips, one per pitch class, plus a black strip that triggers
// the ambient behavior.
package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"pentone/pattern"
)

// BlackThreshold is the HSL lightness below which a color counts as black
const BlackThreshold = 0.15

// HueStep is the hue distance between adjacent notes
const HueStep = 360.0 / pattern.NumNotes

// Strip is one colored region of the canvas
type Strip struct {
	Color   colorful.Color
	Note    pattern.Note
	Special bool
}

// Name returns the note name, or "black" for the special strip
func (s Strip) Name() string {
	if s.Special {
		return "black"
	}
	return s.Note.String()
}

// Strips returns the twelve hue strips in note order followed by the black
// strip.
func Strips() []Strip {
	out := make([]Strip, 0, pattern.NumNotes+1)
	for n := pattern.C; n < pattern.NumNotes; n++ {
		out = append(out, Strip{Color: NoteColor(n), Note: n})
	}
	return append(out, Strip{Color: colorful.Color{}, Special: true})
}

// NoteColor returns the strip color of a note
func NoteColor(n pattern.Note) colorful.Color {
	if !n.Valid() {
		n = pattern.C
	}
	return colorful.Hsl(float64(n)*HueStep, 0.8, 0.5)
}

// Classify maps a color to the region it belongs to: dark colors are the
// special region, everything else takes the note of the nearest hue strip.
func Classify(c colorful.Color) (pattern.Note, bool) {
	h, _, l := c.Clamped().Hsl()
	if l < BlackThreshold {
		return pattern.C, true
	}
	if math.IsNaN(h) {
		h = 0
	}
	n := int(math.Round(h/HueStep)) % pattern.NumNotes
	return pattern.Note(n), false
}

// Parse classifies a hex color such as "#ff8800"
func Parse(hex string) (pattern.Note, bool, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return pattern.C, false, err
	}
	n, special := Classify(c)
	return n, special, nil
}
