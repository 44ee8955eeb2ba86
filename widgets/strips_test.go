package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestHitTest(t *testing.T) {
	tests := []struct {
		x    int
		want int
		ok   bool
	}{
		{0, 0, true},
		{StripWidth - 1, 0, true},
		{StripWidth, 1, true},
		{StripWidth*13 - 1, 12, true},
		{StripWidth * 13, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		got, ok := HitTest(tt.x, 13)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("HitTest(%d) = %d %t, want %d %t", tt.x, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRenderStripRowWidth(t *testing.T) {
	row := RenderStripRow([]Swatch{{Color: "#ff0000", Label: "C"}, {Color: "#00ff00", Label: "E"}}, '█', 3, "#ffffff")
	if w := lipgloss.Width(row); w != 2*StripWidth {
		t.Fatalf("row width %d", w)
	}
	if h := lipgloss.Height(row); h != 4 {
		t.Fatalf("row height %d", h)
	}
}

func TestRenderMarkers(t *testing.T) {
	line := RenderMarkers(3, []Marker{{Strip: 1, Symbol: "1"}, {Strip: 7, Symbol: "x"}})
	if lipgloss.Width(line) != 3*StripWidth {
		t.Fatalf("marker line width %d", lipgloss.Width(line))
	}
	if strings.Contains(line, "x") || !strings.Contains(line, "1") {
		t.Fatalf("markers %q", line)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Pens", Keys: []KeyBinding{{"1-4", "select pen"}}}})
	if !strings.Contains(out, "select pen") || !strings.HasPrefix(out, "Pens") {
		t.Fatalf("help %q", out)
	}
}
