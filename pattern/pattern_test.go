package pattern

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestNoteFrequencies(t *testing.T) {
	if !near(A.Hz(), 440) {
		t.Fatalf("A4 = %v", A.Hz())
	}
	if !near(C.Hz(), 261.6255653005986) {
		t.Fatalf("C4 = %v", C.Hz())
	}
	if !near(Note(42).Hz(), C.Hz()) {
		t.Fatalf("invalid note should fall back to C")
	}
	pc, oct := A.Shift(4)
	if pc != CSharp || oct != 1 {
		t.Fatalf("A+4 = %v oct %d", pc, oct)
	}
	if !near(A.ShiftedHz(4), CSharp.Hz()*2) {
		t.Fatalf("A+4 should bump an octave")
	}
	pc, oct = C.Shift(-3)
	if pc != A || oct != -1 {
		t.Fatalf("C-3 = %v oct %d", pc, oct)
	}
}

func TestArpeggioTriadClimb(t *testing.T) {
	c, e, g := C.Hz(), E.Hz(), G.Hz()
	want := []float64{c, e, g, 2 * c, 2 * e, 2 * g, 2 * g, 2 * e, 2 * c, g, e, c}
	got := ArpeggioFreqs(C, 2, true)
	if len(got) != len(want) {
		t.Fatalf("expected %d notes, got %d", len(want), len(got))
	}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("note %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestArpeggioLengthIsSixPerOctave(t *testing.T) {
	for n := C; n <= B; n++ {
		for oct := 1; oct <= 4; oct++ {
			got := ArpeggioFreqs(n, oct, true)
			if len(got) != 6*oct {
				t.Fatalf("%v x%d: len %d", n, oct, len(got))
			}
			for i := range got {
				if !near(got[i], got[len(got)-1-i]) {
					t.Fatalf("%v x%d is not a palindrome at %d", n, oct, i)
				}
			}
			// ascending half must be strictly rising
			for i := 1; i < len(got)/2; i++ {
				if got[i] <= got[i-1] {
					t.Fatalf("%v x%d not rising at %d", n, oct, i)
				}
			}
		}
	}
}

func TestArpeggioThirdWrapsOctave(t *testing.T) {
	// A major: A, C#, E with C# and E crossing the pitch-class wrap
	got := ArpeggioFreqs(A, 1, true)
	want := []float64{A.Hz(), CSharp.Hz() * 2, E.Hz() * 2}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("note %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestArpeggioOctavesWithoutChord(t *testing.T) {
	r := D.Hz()
	got := ArpeggioFreqs(D, 2, false)
	want := []float64{r, 2 * r, 4 * r, 2 * r}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("note %d = %v, want %v", i, got[i], want[i])
		}
	}
	if got := ArpeggioFreqs(D, 0, false); len(got) != 2 {
		t.Fatalf("climb 0 should clamp to 1 octave, got %v", got)
	}
}

func TestArpeggioPatternSpacing(t *testing.T) {
	p := Arpeggio(E, 2, true)
	if p.Length != 12*ArpSpacing {
		t.Fatalf("length = %d", p.Length)
	}
	for i, s := range p.Steps {
		if s.Offset != i*ArpSpacing || s.Payload.Kind != PayloadFreq {
			t.Fatalf("step %d = %+v", i, s)
		}
	}
	if len(p.At(1)) != 0 || len(p.At(2)) != 1 {
		t.Fatalf("unexpected steps at odd/even positions")
	}
}

func TestDrumKitSelection(t *testing.T) {
	tests := []struct {
		note      Note
		kit, vari int
	}{
		{C, 0, 0},
		{CSharp, 0, 1},
		{D, 1, 0},
		{F, 2, 1},
		{B, 5, 1},
		{Note(-1), 0, 0},
		{Note(99), 0, 0},
	}
	for _, tt := range tests {
		k, v := KitFor(tt.note)
		if k != tt.kit || v != tt.vari {
			t.Fatalf("KitFor(%d) = %d,%d want %d,%d", tt.note, k, v, tt.kit, tt.vari)
		}
	}
}

func TestDrumPatterns(t *testing.T) {
	for n := C; n <= B; n++ {
		p := Drum(n)
		if p.Length != DrumSteps {
			t.Fatalf("%v length %d", n, p.Length)
		}
		if p.Hits() == 0 {
			t.Fatalf("%v has no hits", n)
		}
		for i := 1; i < len(p.Steps); i++ {
			if p.Steps[i].Offset < p.Steps[i-1].Offset {
				t.Fatalf("%v steps not ordered", n)
			}
		}
	}
	// the second variation adds lanes on top of the base groove
	if Drum(CSharp).Hits() <= Drum(C).Hits() {
		t.Fatalf("variation should add hits")
	}
	if Drum(Note(50)).Name != Drum(C).Name {
		t.Fatalf("invalid note should use the first kit")
	}
}

func TestBassIsConstant(t *testing.T) {
	p := Bass()
	if p.Length != BassSteps {
		t.Fatalf("length = %d", p.Length)
	}
	first := p.At(0)
	if len(first) != 1 || !first[0].Accent {
		t.Fatalf("expected accented downbeat, got %+v", first)
	}
	ups := 0
	for _, s := range p.Steps {
		if s.OctaveUp {
			ups++
			if s.Offset < BassSteps-4 {
				t.Fatalf("octave accent at %d is not in the last eighth", s.Offset)
			}
		}
	}
	if ups != 1 {
		t.Fatalf("expected one octave-up accent, got %d", ups)
	}
	// callers cannot corrupt the shared table
	p.Steps[0].Offset = 5
	if Bass().Steps[0].Offset != 0 {
		t.Fatalf("Bass() returned shared storage")
	}
}

func TestResolve(t *testing.T) {
	got := Resolve(Root(), 110, true)
	if got.Kind != PayloadFreq || !near(got.Hz, 220) {
		t.Fatalf("resolve root = %+v", got)
	}
	got = Resolve(Freq(300), 110, false)
	if !near(got.Hz, 300) {
		t.Fatalf("resolve freq = %+v", got)
	}
	hit := Resolve(Hit(Kick), 110, true)
	if hit.Kind != PayloadHit || hit.Sound != Kick {
		t.Fatalf("resolve hit = %+v", hit)
	}
}

func TestAmbientCycleLengths(t *testing.T) {
	tests := []struct {
		kind   SpecialKind
		length int
		pk     PayloadKind
	}{
		{AmbientPercussive, 16, PayloadHit},
		{AmbientBass, 48, PayloadFreq},
		{AmbientMelodic, 64, PayloadChord},
		{SpecialKind(7), 16, PayloadHit},
	}
	for _, tt := range tests {
		p := Ambient(tt.kind)
		if p.Length != tt.length {
			t.Fatalf("%v length %d", tt.kind, p.Length)
		}
		if len(p.Steps) != 1 || p.Steps[0].Offset != 0 || p.Steps[0].Payload.Kind != tt.pk {
			t.Fatalf("%v steps %+v", tt.kind, p.Steps)
		}
	}
}

func TestAmbientChordRotation(t *testing.T) {
	prog := Progression()
	if len(prog) != 4 {
		t.Fatalf("expected 4 chords, got %d", len(prog))
	}
	for n := 0; n < 80; n++ {
		want := (n / 8) % 4
		if ChordIndex(n) != want {
			t.Fatalf("note %d -> chord %d, want %d", n, ChordIndex(n), want)
		}
		if AmbientChord(n).Name != prog[want].Name {
			t.Fatalf("note %d chord %s", n, AmbientChord(n).Name)
		}
	}
	tones := prog[0].Tones()
	if len(tones) != 4 || !near(tones[0], C.Hz()) {
		t.Fatalf("Cmaj7 tones %v", tones)
	}
}
