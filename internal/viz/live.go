package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/overshoot/internal/experiment"
	"github.com/san-kum/overshoot/internal/looper"
	"github.com/san-kum/overshoot/internal/physics"
)

const (
	historyCapacity = 240
	gaugeWidth      = 30
	graphWidth      = 60
	graphHeight     = 10
)

type kickMsg struct{}

// Model is the live view of an experiment driven by a Tea frame source.
type Model struct {
	exp      *experiment.Experiment
	src      *looper.Tea
	keys     keyMap
	help     help.Model
	theme    Theme
	styles   Styles
	history  map[string][]float64
	scale    float64
	selected int
	overlay  bool
	width    int
	err      error
}

// NewModel builds the view. exp must have been created with src as its
// frame source.
func NewModel(exp *experiment.Experiment, src *looper.Tea) Model {
	return Model{
		exp:     exp,
		src:     src,
		keys:    defaultKeyMap(),
		help:    help.New(),
		theme:   CurrentTheme,
		styles:  NewStyles(CurrentTheme),
		history: make(map[string][]float64),
		scale:   1,
	}
}

// CurrentTheme is the theme new models start with.
var CurrentTheme = ThemeCyberpunk

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return kickMsg{} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case kickMsg:
		m.err = m.exp.Kick()
		return m, m.src.Pending()

	case looper.FrameMsg:
		cmd := m.src.Handle(msg)
		m.sample()
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.KickAll):
			m.err = m.exp.Kick()
		case key.Matches(msg, m.keys.Kick):
			if inst := m.current(); inst != nil {
				m.err = inst.Kick()
			}
		case key.Matches(msg, m.keys.Next):
			m.move(1)
		case key.Matches(msg, m.keys.Prev):
			m.move(-1)
		case key.Matches(msg, m.keys.Stiffer):
			m.scaleDecay(1.1)
		case key.Matches(msg, m.keys.Looser):
			m.scaleDecay(1 / 1.1)
		case key.Matches(msg, m.keys.Overlay):
			m.overlay = !m.overlay
		case key.Matches(msg, m.keys.Theme):
			m.theme = nextTheme(m.theme)
			m.styles = NewStyles(m.theme)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, m.src.Pending()
	}
	return m, nil
}

func (m *Model) current() *experiment.Instance {
	insts := m.exp.Instances()
	if len(insts) == 0 {
		return nil
	}
	return insts[m.selected]
}

func (m *Model) move(dir int) {
	n := len(m.exp.Instances())
	if n == 0 {
		return
	}
	m.selected = (m.selected + dir + n) % n
}

// scaleDecay changes the decay of the selected overshoot oscillator. The
// new value applies from the next frame.
func (m *Model) scaleDecay(factor float64) {
	inst := m.current()
	if inst == nil {
		return
	}
	if o, ok := inst.Oscillator.(*physics.Overshoot); ok {
		o.Config().Decay *= factor
	}
}

// displacement maps the overshoot rest marker to zero.
func displacement(v float64) float64 {
	if v == physics.RestingValue {
		return 0
	}
	return v
}

func (m *Model) sample() {
	// history is shared between model copies; bubbletea only keeps the
	// latest one.
	for _, inst := range m.exp.Instances() {
		id := inst.Oscillator.ID()
		v := displacement(inst.Oscillator.Value())
		h := append(m.history[id], v)
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[id] = h
		if a := abs(v); a > m.scale {
			m.scale = a
		}
	}
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	engine := m.exp.Engine()
	status := s.Idle.Render("IDLE")
	if !engine.IsIdle() {
		status = s.Running.Render("RUNNING")
	}
	b.WriteString(GradientText("OVERSHOOT", m.theme.Primary, m.theme.Secondary) + "  " + status + "\n\n")

	b.WriteString(s.Label.Render("Frames") + s.Value.Render(fmt.Sprintf("%d", engine.Frames())) + "\n")
	b.WriteString(s.Label.Render("Time") + s.Value.Render(fmt.Sprintf("%.2fs", engine.ElapsedMillis()/1000)) + "\n")
	b.WriteString(s.Label.Render("Active") + s.Value.Render(fmt.Sprintf("%d/%d", engine.ActiveCount(), len(m.exp.Instances()))) + "\n\n")

	b.WriteString(s.Header.Render("OSCILLATORS") + "\n")
	for i, inst := range m.exp.Instances() {
		v := displacement(inst.Oscillator.Value())
		name := fmt.Sprintf("%-10s %-9s %+8.4f", truncate(inst.Name, 10), inst.Kind, v)
		line := s.Gauge(v, m.scale, gaugeWidth) + " " + name
		if i == m.selected {
			b.WriteString(s.Selected.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if inst := m.current(); inst != nil {
		if o, ok := inst.Oscillator.(*physics.Overshoot); ok {
			cfg := o.Config()
			b.WriteString(s.Subtle.Render(fmt.Sprintf("\nv=%.2f amp=%.2f freq=%.2fHz decay=%.2f",
				cfg.Velocity, cfg.Amplitude, cfg.Frequency, cfg.Decay)) + "\n")
		}
		b.WriteString(m.traceView(inst.Oscillator.ID()) + "\n")
	}

	if m.err != nil {
		b.WriteString(s.Negative.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(s.HelpStyle.Render(m.help.View(m.keys)))

	return s.Panel.Render(b.String())
}

func (m Model) traceView(id string) string {
	if m.overlay {
		c := NewCanvas(graphWidth/2, graphHeight/2)
		for _, inst := range m.exp.Instances() {
			c.PlotSeries(m.history[inst.Oscillator.ID()], -m.scale, m.scale)
		}
		return m.styles.Graph.Render(c.String())
	}

	h := m.history[id]
	if len(h) < 2 {
		return m.styles.Subtle.Render(Sparkline(h, graphWidth))
	}
	chart := asciigraph.Plot(h,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(id),
	)
	return m.styles.Graph.Render(chart)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Run starts the live view full screen and blocks until the user quits.
func Run(exp *experiment.Experiment, src *looper.Tea) error {
	_, err := tea.NewProgram(NewModel(exp, src), tea.WithAltScreen()).Run()
	return err
}
