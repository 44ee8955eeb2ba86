package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"pentone/palette"
	"pentone/pattern"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Strip rune // █ strip body

	PenDown   rune // ▼ pen touching a strip
	PenLifted rune // ▽ pen above a strip

	StepEmpty    rune // · step of the cycle
	StepPlayhead rune // ● current step
}

func New(p *Palette) *Theme {
	if p == nil {
		p = Default()
	}
	return &Theme{
		Palette: p,
		Symbols: Symbols{
			Strip:        '█',
			PenDown:      '▼',
			PenLifted:    '▽',
			StepEmpty:    '·',
			StepPlayhead: '●',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleAccent  = 0.5
	RoleCursor  = 0.6
	RoleActive  = 0.7
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) BG() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return toLipgloss(t.Palette.Lookup(norm))
}

// Strip returns the display color of a strip. The black strip is drawn with
// the palette surface so it stays visible on dark terminals.
func (t *Theme) Strip(s palette.Strip) lipgloss.Color {
	if s.Special {
		return toLipgloss(t.Palette.Lookup(RoleSurface))
	}
	return toLipgloss(s.Color)
}

// Note returns the strip color of a pitch class
func (t *Theme) Note(n pattern.Note) lipgloss.Color {
	return toLipgloss(palette.NoteColor(n))
}

func toLipgloss(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}
