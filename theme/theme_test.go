package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"pentone/palette"
)

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	data := "GIMP Palette\nName: Test\nColumns: 2\n# comment\n255 0 0 red\n0 0 255\nbad line\n300 0 0 out of range\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadGPL(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "Test" || len(p.Colors) != 2 {
		t.Fatalf("palette %q with %d colors", p.Name, len(p.Colors))
	}
	if p.Index(0).Hex() != "#ff0000" || p.Index(5).Hex() != "#0000ff" {
		t.Fatalf("colors %s %s", p.Index(0).Hex(), p.Index(5).Hex())
	}
}

func TestLoadGPLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	if err := os.WriteFile(path, []byte("GIMP Palette\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGPL(path); err == nil {
		t.Fatalf("expected error for empty palette")
	}
	p, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.gpl"))
	if err == nil || p.Name != "plasma" {
		t.Fatalf("expected default palette and error, got %v %v", p.Name, err)
	}
}

func TestLookupEnds(t *testing.T) {
	p := Default()
	if p.Lookup(-1) != p.Colors[0] || p.Lookup(2) != p.Colors[len(p.Colors)-1] {
		t.Fatalf("lookup should clamp to the ends")
	}
	mid := p.Lookup(0.5)
	if !mid.IsValid() {
		t.Fatalf("blended color out of gamut: %v", mid)
	}
}

func TestStripColors(t *testing.T) {
	th := New(nil)
	strips := palette.Strips()
	red, _ := colorful.Hex(string(th.Strip(strips[0])))
	if n, special := palette.Classify(red); special || n != strips[0].Note {
		t.Fatalf("rendered strip color does not classify back")
	}
	if th.Strip(strips[len(strips)-1]) == th.Strip(strips[0]) {
		t.Fatalf("black strip should differ")
	}
}
