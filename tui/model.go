package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pentone/debug"
	"pentone/midi"
	"pentone/palette"
	"pentone/sequencer"
	"pentone/theme"
	"pentone/widgets"
)

const (
	stripHeight = 4
	tempoStep   = 5
	progressLen = 16
)

// layoutBounds holds cached layout info
type layoutBounds struct {
	stripTop    int
	stripHeight int
}

type Model struct {
	Engine    *sequencer.Engine
	DeviceMgr *midi.DeviceManager // may be nil
	Theme     *theme.Theme
	Output    string // renderer description for the header

	strips    []palette.Strip
	pens      []*Pen
	current   int
	status    string
	quitting  bool
	mouseDown bool
	bounds    *layoutBounds
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// NewModel creates a model with n pens spread over the strips
func NewModel(engine *sequencer.Engine, deviceMgr *midi.DeviceManager, th *theme.Theme, n int) Model {
	if n < 1 {
		n = 1
	}
	strips := palette.Strips()
	pens := make([]*Pen, n)
	for i := range pens {
		pens[i] = NewPen(sequencer.SlotID(i), strips, (i*4)%(len(strips)-1))
	}
	return Model{
		Engine:    engine,
		DeviceMgr: deviceMgr,
		Theme:     th,
		strips:    strips,
		pens:      pens,
		bounds:    &layoutBounds{},
	}
}

func ListenForUpdates(engine *sequencer.Engine) tea.Cmd {
	return func() tea.Msg {
		<-engine.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Engine),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) manager() *sequencer.Manager {
	return m.Engine.Manager()
}

func (m Model) pen() *Pen {
	return m.pens[m.current]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.liftAll()
			m.manager().Stop()
			return m, tea.Quit

		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			idx := int(msg.String()[0] - '1')
			if idx < len(m.pens) {
				m.current = idx
			}

		case "h", "left":
			m.pen().Move(-1, m.manager())

		case "l", "right":
			m.pen().Move(1, m.manager())

		case " ", "enter":
			m.pen().Toggle(m.manager())

		case "m":
			slot := m.pen().Slot
			m.manager().SetMode(slot, m.manager().Mode(slot).Next())

		case "+", "=":
			m.Engine.SetTempo(m.Engine.Tempo() + tempoStep)

		case "-", "_":
			m.Engine.SetTempo(m.Engine.Tempo() - tempoStep)

		case "s":
			// panic button
			m.liftAll()
			m.manager().Stop()
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.Engine)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.status = "keyboard connected: " + event.ID
		case midi.DeviceDisconnected:
			m.status = "keyboard disconnected: " + event.ID
		}
		debug.Log("tui", "%s", m.status)
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m *Model) liftAll() {
	for _, p := range m.pens {
		p.Lift(m.manager())
	}
}

// handleMouse drags the current pen: press drops it, motion moves it and
// release lifts it.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	i, hit := m.hitTest(msg.X, msg.Y)
	p := m.pen()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !hit {
			return
		}
		m.mouseDown = true
		p.MoveTo(i, m.manager())
		p.Drop(m.manager())
	case tea.MouseActionMotion:
		if m.mouseDown && hit {
			p.MoveTo(i, m.manager())
		}
	case tea.MouseActionRelease:
		if m.mouseDown {
			m.mouseDown = false
			p.Lift(m.manager())
		}
	}
}

func (m Model) hitTest(x, y int) (int, bool) {
	if y < m.bounds.stripTop || y >= m.bounds.stripTop+m.bounds.stripHeight {
		return 0, false
	}
	return widgets.HitTest(x, len(m.strips))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.manager().Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	out := m.Output
	if out == "" {
		out = "silent"
	}
	header := headerStyle.Render(fmt.Sprintf("pentone  %3.0fbpm  %s", snap.BPM, out))

	// Pen markers above the strips, current pen drawn last
	markers := make([]widgets.Marker, 0, len(m.pens))
	for i, p := range m.pens {
		if i == m.current {
			continue
		}
		markers = append(markers, m.marker(i, p, m.Theme.FG()))
	}
	markers = append(markers, m.marker(m.current, m.pen(), m.Theme.Cursor()))
	markerLine := widgets.RenderMarkers(len(m.strips), markers)

	swatches := make([]widgets.Swatch, len(m.strips))
	for i, s := range m.strips {
		swatches[i] = widgets.Swatch{Color: m.Theme.Strip(s), Label: s.Name()}
	}
	stripView := widgets.RenderStripRow(swatches, m.Theme.Symbols.Strip, stripHeight, m.Theme.FG())

	var slots []string
	for i, p := range m.pens {
		slots = append(slots, m.slotLine(i, p, snap.Slot(p.Slot)))
	}

	help := dimStyle.Render("1-9:pen  h/l:move  space:draw  m:mode  +/-:tempo  s:stop  q:quit")

	// header, blank line, markers, then the strips
	headerHeight := lipgloss.Height(header)
	m.bounds.stripTop = headerHeight + 1 + lipgloss.Height(markerLine)
	m.bounds.stripHeight = stripHeight

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(markerLine)
	b.WriteString("\n")
	b.WriteString(stripView)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(slots, "\n"))
	b.WriteString("\n\n")
	b.WriteString(help)

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}

	return b.String()
}

func (m Model) marker(i int, p *Pen, color lipgloss.Color) widgets.Marker {
	sym := m.Theme.Symbols.PenLifted
	if p.Down() {
		sym = m.Theme.Symbols.PenDown
	}
	return widgets.Marker{Strip: p.Pos(), Symbol: fmt.Sprintf("%c%d", sym, i+1), Color: color}
}

func (m Model) slotLine(i int, p *Pen, st sequencer.SlotState) string {
	style := lipgloss.NewStyle().Foreground(m.Theme.FG())
	if i == m.current {
		style = style.Foreground(m.Theme.Cursor())
	}

	region := "-"
	switch {
	case st.Over && st.Special:
		region = st.Kind.String()
	case st.Over:
		region = st.Note.String()
	}

	line := fmt.Sprintf("%d %-8s %-8s %-18s %s", i+1, st.Mode, st.State, region, m.progress(st))
	if st.Pending > 0 {
		line += fmt.Sprintf("  %d queued", st.Pending)
	}
	return style.Render(line)
}

// progress draws the cycle position compressed to a fixed width
func (m Model) progress(st sequencer.SlotState) string {
	cells := []rune(strings.Repeat(string(m.Theme.Symbols.StepEmpty), progressLen))
	if st.State != sequencer.Idle && st.Length > 0 {
		if i := st.Pos * progressLen / st.Length; i >= 0 && i < progressLen {
			cells[i] = m.Theme.Symbols.StepPlayhead
		}
	}
	return string(cells)
}
