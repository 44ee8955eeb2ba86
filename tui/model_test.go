package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pentone/clock"
	"pentone/pattern"
	"pentone/sequencer"
	"pentone/theme"
	"pentone/widgets"
)

func newTestModel(pens int) Model {
	now := 10 * time.Millisecond
	c := clock.New(func() time.Duration { return now }, 120)
	m := sequencer.NewManager(c, sequencer.DefaultTiming())
	return NewModel(sequencer.NewEngine(m, nil), nil, theme.New(nil), pens)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestModelKeys(t *testing.T) {
	m := newTestModel(2)
	mgr := m.Engine.Manager()

	m = press(m, " ")
	st := mgr.Snapshot().Slot(0)
	if !st.Over || st.Note != pattern.C || st.State != sequencer.Aligning {
		t.Fatalf("after drop: %+v", st)
	}

	m = press(m, "l")
	if st := mgr.Snapshot().Slot(0); st.Note != pattern.CSharp {
		t.Fatalf("after move: %+v", st)
	}

	m = press(m, "m")
	if mgr.Mode(0) != sequencer.KindBass {
		t.Fatalf("mode %s", mgr.Mode(0))
	}

	m = press(m, "2", " ")
	if m.current != 1 || !m.pens[1].Down() {
		t.Fatalf("second pen not selected and down")
	}
	if st := mgr.Snapshot().Slot(1); st.Note != pattern.E {
		t.Fatalf("second pen starts on E: %+v", st)
	}

	m = press(m, "9")
	if m.current != 1 {
		t.Fatalf("selecting a missing pen changed selection")
	}

	m = press(m, "+", "+", "-")
	if m.Engine.Tempo() != 125 {
		t.Fatalf("tempo %v", m.Engine.Tempo())
	}

	m = press(m, "s")
	for _, p := range m.pens {
		if p.Down() {
			t.Fatalf("stop should lift all pens")
		}
	}
	if st := mgr.Snapshot().Slot(0); st.State != sequencer.Idle {
		t.Fatalf("stop left slot 0 %s", st.State)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(1)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if next.(Model).View() != "" {
		t.Fatalf("quitting model should render nothing")
	}
}

func TestModelMouseDraws(t *testing.T) {
	m := newTestModel(1)
	m.View() // computes layout
	top := m.bounds.stripTop
	mgr := m.Engine.Manager()

	x := int(pattern.E)*widgets.StripWidth + 1
	next, _ := m.Update(tea.MouseMsg{X: x, Y: top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	if st := mgr.Snapshot().Slot(0); !st.Over || st.Note != pattern.E {
		t.Fatalf("press should drop on E: %+v", st)
	}

	x = (len(m.strips)-1)*widgets.StripWidth + 1
	next, _ = m.Update(tea.MouseMsg{X: x, Y: top + 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = next.(Model)
	if st := mgr.Snapshot().Slot(0); !st.Special {
		t.Fatalf("drag onto black should go special: %+v", st)
	}

	next, _ = m.Update(tea.MouseMsg{X: x, Y: top, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = next.(Model)
	if m.pen().Down() || mgr.Snapshot().Slot(0).Over {
		t.Fatalf("release should lift the pen")
	}

	// outside the strips nothing happens
	next, _ = m.Update(tea.MouseMsg{X: 1, Y: top + stripHeight + 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	if m.pen().Down() {
		t.Fatalf("press outside strips dropped the pen")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(2)
	m = press(m, " ")
	view := m.View()
	for _, want := range []string{"pentone", "120bpm", "drum", "aligning", "C#", "bla"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
