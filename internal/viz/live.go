package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/model"
)

const (
	width           = 64
	height          = 20
	historyCapacity = 600
	stepsPerTick    = 20
)

type TickMsg time.Time

// LiveModel integrates the full model and traces it in the (x2, x4)
// plane on log axes, with the known steady states marked.
type LiveModel struct {
	sys          *model.Apoptosis
	integrator   dynamo.Integrator
	state        dynamo.State
	initialState dynamo.State
	initialPar   model.Params
	t, dt        float64
	axes         Axes
	canvas       *Canvas
	pathX2       []float64
	pathX4       []float64
	x4History    []float64
	steady       []analysis.Point
	running      bool
	selected     int
	showHelp     bool
	lastErr      error
}

func NewLiveModel(sys *model.Apoptosis, integ dynamo.Integrator, start dynamo.State, dt float64, steady []analysis.Point) LiveModel {
	return LiveModel{
		sys:          sys,
		integrator:   integ,
		state:        start.Clone(),
		initialState: start.Clone(),
		initialPar:   sys.Params(),
		dt:           dt,
		axes:         Axes{XMin: 1e-2, XMax: 2e4, YMin: 1e-2, YMax: 2e4, LogX: true, LogY: true},
		canvas:       NewCanvas(width, height),
		steady:       steady,
		running:      true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd { return tick() }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % model.NumParams
		case "up", "k":
			m.adjustParam(1.1)
		case "down", "j":
			m.adjustParam(1 / 1.1)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		}
	case TickMsg:
		if m.running {
			for i := 0; i < stepsPerTick && m.lastErr == nil; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *LiveModel) adjustParam(factor float64) {
	name := model.Names()[m.selected]
	v, _ := m.sys.Params().Get(name)
	if err := m.sys.SetParam(name, v*factor); err != nil {
		m.lastErr = err
	}
}

func (m *LiveModel) step() {
	if adaptive, ok := m.integrator.(dynamo.AdaptiveIntegrator); ok {
		next, taken, suggested, err := adaptive.StepAdaptive(m.sys, m.state, m.t, m.dt, 1e-6)
		if err != nil {
			m.lastErr = err
			return
		}
		m.state = next
		m.t += taken
		m.dt = math.Min(suggested, 50)
	} else {
		m.state = m.integrator.Step(m.sys, m.state, m.t, m.dt)
		m.t += m.dt
	}
	if !m.state.IsValid() {
		m.lastErr = dynamo.SimError{Time: m.t, Message: "state became NaN or Inf"}
		return
	}

	m.pathX2 = appendBounded(m.pathX2, m.state[1])
	m.pathX4 = appendBounded(m.pathX4, m.state[3])
	m.x4History = appendBounded(m.x4History, m.state[3])
}

func appendBounded(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *LiveModel) reset() {
	m.t = 0
	m.state = m.initialState.Clone()
	m.pathX2, m.pathX4, m.x4History = nil, nil, nil
	m.lastErr = nil
	for _, name := range model.Names() {
		v, _ := m.initialPar.Get(name)
		_ = m.sys.SetParam(name, v)
	}
}

func (m *LiveModel) draw() string {
	m.canvas.Clear()
	m.canvas.PlotPath(m.axes, m.pathX2, m.pathX4)
	lines := strings.Split(strings.TrimRight(m.canvas.String(), "\n"), "\n")
	for _, p := range m.steady {
		x, y, ok := m.canvas.Project(m.axes, p.X2, p.X4)
		if !ok {
			continue
		}
		row := []rune(lines[y/4])
		row[x/2] = '*'
		lines[y/4] = string(row)
	}
	return strings.Join(lines, "\n")
}

func (m LiveModel) View() string {
	canvasView := Panel.Render(Subtle.Render("x4 ↑  (log)") + "\n" + m.draw() + "\n" + Subtle.Render("x2 → (log)   * steady state"))

	var s strings.Builder
	s.WriteString(HeaderStyle.Render("APOPTOSIS") + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if m.lastErr != nil {
		status = "STOPPED: " + m.lastErr.Error()
	}
	s.WriteString(status + "\n\n")
	if len(m.x4History) > 1 {
		s.WriteString(asciigraph.Plot(m.x4History, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("x4(t)")) + "\n\n")
	}
	s.WriteString(Metric("t", fmt.Sprintf("%.1f", m.t)) + "\n")
	s.WriteString(Metric("dt", fmt.Sprintf("%.3g", m.dt)) + "\n")
	for _, i := range []int{1, 3} {
		s.WriteString(Metric(model.StateNames()[i], fmt.Sprintf("%.4g", m.state[i])) + "\n")
	}

	s.WriteString("\n" + m.sys.Params().Format(2, model.Names()[m.selected]) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause R:Reset Q:Quit Tab/↑↓:Tune T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, lipgloss.NewStyle().Padding(0, 2).Render(s.String()))
	if m.showHelp {
		return Panel.Render(`Space  pause or resume
R      reset state and parameters
Tab    select next rate constant
↑ / ↓  scale it by ±10%
T      cycle themes
Q      quit`) + "\n" + mainView
	}
	return mainView
}

// RunLive starts the live view and blocks until the user quits.
func RunLive(m LiveModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
