package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
)

const (
	defaultWidth    = 80
	defaultHeight   = 30
	panelWidth      = 46
	historyCapacity = 300
	trailLength     = 120
	listedBodies    = 9
)

// Options configure the live view.
type Options struct {
	Title  string
	FPS    int
	Zoom   float64
	ViewAU float64
	// Autostart begins stepping without waiting for space.
	Autostart bool
}

type TickMsg time.Time

type point struct{ x, y float64 }

// Model renders an Engine and forwards key presses to it. All engine access
// happens inside Update.
type Model struct {
	engine  *sim.Engine
	spawner *sim.Spawner
	opts    Options

	width, height int
	canvas        *Canvas
	running       bool
	zoom          float64
	trails        [][]point
	driftHistory  []float64
	e0            float64
	e0Dim         int
	message       string
}

func NewModel(engine *sim.Engine, spawner *sim.Spawner, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Zoom <= 0 {
		opts.Zoom = 0.5
	}
	if opts.ViewAU <= 0 {
		opts.ViewAU = 16
	}
	if opts.Title == "" {
		opts.Title = "orrery"
	}

	m := Model{
		engine:       engine,
		spawner:      spawner,
		opts:         opts,
		width:        defaultWidth,
		height:       defaultHeight,
		canvas:       NewCanvas(defaultWidth, defaultHeight),
		running:      opts.Autostart,
		zoom:         opts.Zoom,
		driftHistory: make([]float64, 0, historyCapacity),
	}
	m.rebaseEnergy()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// tick schedules the next frame. Speed scales the frame rate, so one
// simulated timestep passes per frame.
func (m Model) tick() tea.Cmd {
	rate := float64(m.opts.FPS) * m.engine.Speed()
	return tea.Tick(time.Duration(float64(time.Second)/rate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "a":
			m.setSpeed(m.engine.Speed() + 0.1)
		case "d":
			m.setSpeed(math.Max(sim.MinSpeed, m.engine.Speed()-0.1))
		case "w":
			m.setG(m.engine.GravitationalConstant() * 1.1)
		case "s":
			m.setG(m.engine.GravitationalConstant() / 1.1)
		case "n":
			m.addBody()
		case "+", "=":
			m.zoom /= 0.5
		case "-":
			m.zoom *= 0.5
		case "t":
			NextTheme()
		case "c":
			m.trails = nil
		case "r":
			if !m.engine.Successful() {
				m.engine.Resume()
				m.message = "resumed"
			}
		}
	case TickMsg:
		if m.running && m.engine.Successful() {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw := max(20, w-panelWidth-4)
	ch := max(10, h-2)
	if cw == m.width && ch == m.height {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

func (m *Model) setSpeed(s float64) {
	// keep one decimal so repeated presses land on round values
	s = math.Round(s*10) / 10
	if err := m.engine.SetSpeed(s); err != nil {
		m.message = err.Error()
	}
}

func (m *Model) setG(g float64) {
	if err := m.engine.SetGravitationalConstant(g); err != nil {
		m.message = err.Error()
		return
	}
	m.rebaseEnergy()
}

func (m *Model) addBody() {
	if m.spawner == nil {
		return
	}
	idx, err := m.engine.AddRandomBody(m.spawner)
	if err != nil {
		m.message = err.Error()
		return
	}
	s, _ := m.engine.Snapshot(idx)
	m.message = "added " + s.Name
	m.rebaseEnergy()
}

func (m *Model) step() {
	if err := m.engine.StepOnce(); err != nil {
		m.message = err.Error()
		return
	}

	for i, s := range m.engine.Snapshots() {
		if i >= len(m.trails) {
			m.trails = append(m.trails, nil)
		}
		m.trails[i] = append(m.trails[i], point{s.X, s.Y})
		if len(m.trails[i]) > trailLength {
			m.trails[i] = m.trails[i][1:]
		}
	}

	f := m.engine.Field()
	x := m.engine.State()
	if len(x) != m.e0Dim {
		m.rebaseEnergy()
	}
	drift := 0.0
	if m.e0 != 0 {
		drift = 1e6 * (f.Energy(x) - m.e0) / math.Abs(m.e0)
	}
	m.driftHistory = append(m.driftHistory, drift)
	if len(m.driftHistory) > historyCapacity {
		m.driftHistory = m.driftHistory[1:]
	}
}

// rebaseEnergy takes a new energy reference after anything that changes the
// total energy on purpose.
func (m *Model) rebaseEnergy() {
	x := m.engine.State()
	m.e0 = m.engine.Field().Energy(x)
	m.e0Dim = len(x)
	m.driftHistory = m.driftHistory[:0]
}

// scale is dots per metre.
func (m *Model) scale() float64 {
	half := m.opts.ViewAU * physics.AU / m.zoom
	return float64(m.canvas.SubWidth()) / 2 / half
}

func (m *Model) project(x, y float64) (int, int) {
	s := m.scale()
	cx, cy := m.canvas.SubWidth()/2, m.canvas.SubHeight()/2
	return cx + int(math.Round(x*s)), cy - int(math.Round(y*s))
}

func (m *Model) draw() {
	m.canvas.Clear()
	snaps := m.engine.Snapshots()

	for i, trail := range m.trails {
		if i >= len(snaps) {
			break
		}
		for _, p := range trail {
			px, py := m.project(p.x, p.y)
			m.canvas.SetColor(px, py, snaps[i].Color)
		}
	}

	for _, s := range snaps {
		px, py := m.project(s.X, s.Y)
		m.canvas.FillCircle(px, py, int(s.Radius/3), s.Color)
	}
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(0, n-3)]) + "..."
}

func (m Model) View() string {
	m.draw()
	canvasView := lipgloss.NewStyle().Padding(0, 1).Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(GradientText(strings.ToUpper(m.opts.Title), CurrentTheme.Primary, CurrentTheme.Secondary)) + "\n")

	switch {
	case !m.engine.Successful():
		s.WriteString(StatusHalted.Render("HALTED") + KeyHint.Render("  r to retry") + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + KeyHint.Render("  space to start") + "\n\n")
	}

	days := m.engine.Time() / physics.Day
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.0f d (%.2f yr)", days, days/365.25))
	row("G", fmt.Sprintf("%.4e", m.engine.GravitationalConstant()))
	row("Speed", fmt.Sprintf("%.1fx", m.engine.Speed()))
	row("Zoom", fmt.Sprintf("%.3g (%.1f AU)", m.zoom, m.opts.ViewAU/m.zoom))
	row("Bodies", fmt.Sprintf("%d", m.engine.Count()))

	if len(m.driftHistory) > 1 {
		chart := asciigraph.Plot(m.driftHistory,
			asciigraph.Height(4),
			asciigraph.Width(panelWidth-14),
			asciigraph.Precision(1),
			asciigraph.Caption("energy drift (ppm)"))
		s.WriteString("\n" + GraphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n")
	for i, b := range m.engine.Snapshots() {
		if i == listedBodies {
			s.WriteString(KeyHint.Render(fmt.Sprintf("  +%d more", m.engine.Count()-listedBodies)) + "\n")
			break
		}
		s.WriteString(Swatch(b.Color) + " " + MetricValue.Render(b.Name) + "\n")
	}

	if m.message != "" {
		s.WriteString("\n" + KeyHint.Render(truncate(m.message, panelWidth-6)) + "\n")
	}

	s.WriteString("\n" + Separator(panelWidth-6) + "\n")
	s.WriteString(KeyHint.Render("SP:Start  A/D:Speed  W/S:G\nN:Body  +/-:Zoom  T:Theme\nC:Trails  ESC:Quit"))

	panel := GlassPanel.Width(panelWidth).Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
}
