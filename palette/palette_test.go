package palette

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"pentone/pattern"
)

func TestStripsRoundTrip(t *testing.T) {
	strips := Strips()
	if len(strips) != pattern.NumNotes+1 {
		t.Fatalf("expected %d strips, got %d", pattern.NumNotes+1, len(strips))
	}
	for i, s := range strips {
		n, special := Classify(s.Color)
		if special != s.Special {
			t.Fatalf("strip %d special=%t", i, special)
		}
		if !special && n != s.Note {
			t.Fatalf("strip %s classified as %s", s.Name(), n)
		}
	}
	if strips[len(strips)-1].Name() != "black" {
		t.Fatalf("last strip %q", strips[len(strips)-1].Name())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		hex     string
		note    pattern.Note
		special bool
	}{
		{"#ff0000", pattern.C, false},
		{"#ffff00", pattern.DSharp, false}, // hue 60
		{"#00ff00", pattern.E, false},      // hue 120
		{"#0000ff", pattern.GSharp, false}, // hue 240
		{"#ff0010", pattern.C, false},      // just below 360 wraps to C
		{"#000000", pattern.C, true},
		{"#101010", pattern.C, true},
		{"#808080", pattern.C, false}, // gray has no hue
	}
	for _, tt := range tests {
		n, special, err := Parse(tt.hex)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.hex, err)
		}
		if special != tt.special || (!special && n != tt.note) {
			t.Fatalf("%s = %s special=%t, want %s special=%t", tt.hex, n, special, tt.note, tt.special)
		}
	}
	if _, _, err := Parse("not a color"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNoteColorInvalid(t *testing.T) {
	if NoteColor(pattern.Note(77)) != NoteColor(pattern.C) {
		t.Fatalf("invalid note should use C's color")
	}
	if c := NoteColor(pattern.A); !c.IsValid() {
		t.Fatalf("invalid color %v", colorful.Color(c))
	}
}
