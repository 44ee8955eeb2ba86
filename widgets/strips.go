package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StripWidth is the number of terminal columns per strip, gap included
const StripWidth = 4

// Swatch is one strip of the row
type Swatch struct {
	Color lipgloss.Color
	Label string
}

// RenderSwatch renders a strip body of the given height
func RenderSwatch(color lipgloss.Color, body rune, height int) string {
	style := lipgloss.NewStyle().Foreground(color)
	cell := strings.Repeat(string(body), StripWidth-1)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = style.Render(cell)
	}
	return strings.Join(lines, "\n")
}

// RenderStripRow renders swatches side by side with their labels underneath
func RenderStripRow(swatches []Swatch, body rune, height int, labelColor lipgloss.Color) string {
	labelStyle := lipgloss.NewStyle().Foreground(labelColor).Width(StripWidth)
	cols := make([]string, 0, len(swatches))
	for _, s := range swatches {
		col := lipgloss.JoinVertical(lipgloss.Left,
			RenderSwatch(s.Color, body, height)+" ",
			labelStyle.Render(truncate(s.Label, StripWidth-1)),
		)
		cols = append(cols, col)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

// Marker is a symbol drawn above one strip
type Marker struct {
	Strip  int
	Symbol string
	Color  lipgloss.Color
}

// RenderMarkers renders a line of markers aligned with a strip row. Later
// markers on the same strip replace earlier ones.
func RenderMarkers(n int, markers []Marker) string {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = strings.Repeat(" ", StripWidth)
	}
	for _, m := range markers {
		if m.Strip < 0 || m.Strip >= n {
			continue
		}
		style := lipgloss.NewStyle().Foreground(m.Color).Width(StripWidth)
		cells[m.Strip] = style.Render(m.Symbol)
	}
	return strings.Join(cells, "")
}

// HitTest returns the strip under column x of a row of n strips
func HitTest(x, n int) (int, bool) {
	if x < 0 {
		return 0, false
	}
	i := x / StripWidth
	if i >= n {
		return 0, false
	}
	return i, true
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
