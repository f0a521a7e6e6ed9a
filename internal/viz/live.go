package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/sim"
	"github.com/san-kum/smoothdyn/internal/tracker"
)

const (
	canvasWidth     = 60
	canvasHeight    = 16
	historyCapacity = 600
	steerStep       = 0.5
	slopeWindow     = 30.0
)

// Sample is one recorded frame for replay.
type Sample struct {
	Time   float64
	Target float64
	State  dynamo.State
}

type TickMsg time.Time

var paramNames = [3]string{"f", "z", "r"}

// Model steps a tracker once per frame toward either a target signal or,
// in steer mode, a value moved with the arrow keys.
type Model struct {
	name     string
	raw      curve.Raw
	initRaw  curve.Raw
	tr       *tracker.SecondOrder
	initial  dynamo.State
	target   dynamo.TargetFunc
	steer    float64
	t, dt    float64
	running  bool
	history  []Sample
	playHead int
	selected int
	showHelp bool
	theme    Theme
	canvas   *Canvas
	err      error
	// rInert is set when the tracker cannot see the target's slope, so
	// tuning r does almost nothing.
	rInert   bool
}

// NewModel builds a live view. A nil target switches to steer mode.
func NewModel(name string, p curve.Params, target dynamo.TargetFunc, initial dynamo.State, dt float64) Model {
	return Model{
		name:     name,
		raw:      p.Raw,
		initRaw:  p.Raw,
		tr:       tracker.New(p, initial),
		initial:  initial,
		target:   target,
		dt:       dt,
		running:  true,
		history:  make([]Sample, 0, historyCapacity),
		playHead: -1,
		theme:    Themes[0],
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		rInert:   target == nil || !sim.SlopeResolved(target, sim.Config{Dt: dt, Duration: slopeWindow}),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.selected = (m.selected + 1) % len(paramNames)
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "left", "h":
			m.steer -= steerStep
		case "right", "l":
			m.steer += steerStep
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) targetAt(t float64) float64 {
	if m.target == nil {
		return m.steer
	}
	return m.target(t)
}

func (m *Model) step() {
	now := m.t
	s := m.tr.Update(m.dt, func(e float64) float64 { return m.targetAt(now + e) })
	m.t += m.dt

	m.history = append(m.history, Sample{Time: m.t, Target: m.targetAt(m.t), State: s})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// adjustParam nudges the selected coefficient: f scales by 5%, z and r
// move by 0.05. Rejected values leave the tracker untouched.
func (m *Model) adjustParam(dir float64) {
	raw := m.raw
	switch m.selected {
	case 0:
		raw.F *= 1 + 0.05*dir
	case 1:
		raw.Z = math.Max(0, raw.Z+0.05*dir)
	case 2:
		raw.R += 0.05 * dir
	}
	m.retune(raw)
}

func (m *Model) retune(raw curve.Raw) {
	p, err := curve.New(curve.Custom{F: raw.F, Z: raw.Z, R: raw.R})
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.raw = raw
	m.tr = tracker.New(p, m.tr.State())
}

func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) reset() {
	m.t = 0
	m.steer = 0
	m.history = m.history[:0]
	m.playHead = -1
	m.retune(m.initRaw)
	m.tr.Reset(m.initial)
}

// visible returns the frames up to the play head.
func (m Model) visible() []Sample {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[:m.playHead+1]
	}
	return m.history
}

func (m Model) draw(frames []Sample) {
	m.canvas.Clear()
	if len(frames) == 0 {
		return
	}
	w, _ := m.canvas.Dots()
	if len(frames) > w {
		frames = frames[len(frames)-w:]
	}

	targets := make([]float64, len(frames))
	pos := make([]float64, len(frames))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, f := range frames {
		targets[i], pos[i] = f.Target, f.State.Position.X
		lo = math.Min(lo, math.Min(targets[i], pos[i]))
		hi = math.Max(hi, math.Max(targets[i], pos[i]))
	}
	pad := 0.1 * (hi - lo)
	m.canvas.Trace(targets, lo-pad, hi+pad)
	m.canvas.Trace(pos, lo-pad, hi+pad)
}

func (m Model) View() string {
	frames := m.visible()
	m.draw(frames)

	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Secondary)
	plot := lipgloss.NewStyle().Foreground(m.theme.Primary).Padding(1, 2)
	panel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(m.theme.Muted).
		Padding(1, 2).
		Width(40)
	active := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)

	var s strings.Builder
	s.WriteString(title.Render(strings.ToUpper(m.name)) + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.playHead != -1 && len(m.history) > 0:
		back := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		status = StatusPaused.Render(fmt.Sprintf("REPLAY (%.1fs)", back))
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	var cur Sample
	if len(frames) > 0 {
		cur = frames[len(frames)-1]
	}
	mode := "signal"
	if m.target == nil {
		mode = "steer"
	}
	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.2fs", cur.Time)) + "\n")
	s.WriteString(MetricLabel.Render("Mode") + MetricValue.Render(mode) + "\n")
	s.WriteString(MetricLabel.Render("Target") + MetricValue.Render(fmt.Sprintf("%+.3f", cur.Target)) + "\n")
	s.WriteString(MetricLabel.Render("Position") + MetricValue.Render(fmt.Sprintf("%+.3f", cur.State.Position.X)) + "\n")
	s.WriteString(MetricLabel.Render("Error") + MetricValue.Render(fmt.Sprintf("%+.3f", cur.Target-cur.State.Position.X)) + "\n")

	vel := make([]float64, len(frames))
	for i, f := range frames {
		vel[i] = f.State.Velocity.X
	}
	s.WriteString("\n" + MetricLabel.Render("Velocity") + Sparkline(vel, 24) + "\n")

	s.WriteString("\nPARAMETERS\n")
	vals := [3]float64{m.raw.F, m.raw.Z, m.raw.R}
	inits := [3]float64{m.initRaw.F, m.initRaw.Z, m.initRaw.R}
	for i, name := range paramNames {
		ratio := 0.5
		if inits[i] != 0 {
			ratio = vals[i] / (2 * inits[i])
		}
		line := fmt.Sprintf("%-3s %s %+.3f", name, Bar(ratio, 10), vals[i])
		if i == m.selected {
			s.WriteString(active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Warning).Render(m.err.Error()) + "\n")
	} else if m.selected == 2 && m.rInert {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Warning).Render(rInertNote) + "\n")
	}

	s.WriteString("\n" + Separator(21) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause R:Reset Q:Quit\nTab:Param ↑↓:Tune ←→:Steer\n[ ]:Replay T:Theme ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, plot.Render(m.canvas.String()), panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

const rInertNote = "r inert: target slope unseen"

const helpText = `
  Space    pause or resume
  R        reset state and tuning
  Tab      select f, z or r
  Up/K     increase selected parameter
  Down/J   decrease selected parameter
  Left/H   move steer target down
  Right/L  move steer target up
  [ ]      step through recent frames
  T        cycle themes
  ?        toggle this help
  Q        quit`

// Run starts the live view on the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
