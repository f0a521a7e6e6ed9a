package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/smoothdyn/internal/config"
	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
)

var (
	menuTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const steerEntry = "steer"

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type app struct {
	state, cursor int
	entries       []string
	selected      string
	values        map[string]float64
	fields        []string
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	live          Model
}

// NewInteractiveApp lists the presets plus a free steer mode.
func NewInteractiveApp() *app {
	return &app{
		state:   stateMenu,
		entries: append(config.ListPresets(), steerEntry),
		fields:  []string{"f", "z", "r", "dt"},
		values:  map[string]float64{},
	}
}

func (a app) Init() tea.Cmd { return nil }

func (a app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch a.state {
		case stateMenu:
			return a.menuKey(key)
		case stateConfig:
			return a.configKey(key)
		}
	}
	if a.state == stateSim {
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}
	return a, nil
}

func (a app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.selected = a.entries[a.cursor]
		a.state, a.fieldCursor, a.err = stateConfig, 0, nil
		a.loadValues()
	}
	return a, nil
}

func (a app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	field := a.fields[a.fieldCursor]
	if a.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(a.editBuf, "%g", &val); err == nil {
				a.values[field] = val
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					a.editBuf += s
				}
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.fieldCursor > 0 {
			a.fieldCursor--
		}
	case "down", "j":
		if a.fieldCursor < len(a.fields)-1 {
			a.fieldCursor++
		}
	case "enter", " ":
		a.editing, a.editBuf = true, fmt.Sprintf("%g", a.values[field])
	case "left", "h":
		a.values[field] -= 0.1
	case "right", "l":
		a.values[field] += 0.1
	case "s":
		cmd := a.start()
		return a, cmd
	}
	return a, nil
}

// loadValues seeds the editable fields from the resolved preset so that
// fixed styles show their actual coefficients.
func (a *app) loadValues() {
	cfg := config.DefaultConfig()
	if p := config.GetPreset(a.selected); p != nil {
		cfg = p
	}
	raw := curve.Raw{F: config.DefaultF, Z: config.DefaultZ, R: config.DefaultR}
	if p, err := cfg.Params(); err == nil {
		raw = p.Raw
	}
	a.values = map[string]float64{"f": raw.F, "z": raw.Z, "r": raw.R, "dt": cfg.Dt}
}

func (a *app) start() tea.Cmd {
	p, err := curve.New(curve.Custom{F: a.values["f"], Z: a.values["z"], R: a.values["r"]})
	if err != nil {
		a.err = err
		return nil
	}
	dt := a.values["dt"]
	if dt <= 0 {
		a.err = fmt.Errorf("%w, got %g", dynamo.ErrNonPositiveStep, dt)
		return nil
	}

	var target dynamo.TargetFunc
	var initial dynamo.State
	if cfg := config.GetPreset(a.selected); cfg != nil {
		if target, err = cfg.Signal(); err != nil {
			a.err = err
			return nil
		}
		initial = cfg.InitState()
	}

	a.err = nil
	a.live = NewModel(a.selected, p, target, initial, dt)
	a.state = stateSim
	return a.live.Init()
}

func (a app) View() string {
	switch a.state {
	case stateMenu:
		return a.viewMenu()
	case stateConfig:
		return a.viewConfig()
	case stateSim:
		return a.live.View()
	}
	return ""
}

func describe(name string) string {
	if name == steerEntry {
		return "arrow keys move the target"
	}
	cfg := config.GetPreset(name)
	return fmt.Sprintf("%s on %s", cfg.Style.Name, cfg.Target.Kind)
}

func hints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuIdle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (a app) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("SMOOTHDYN") + "\n    " + menuSub.Render("second-order motion tracking") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range a.entries {
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-12s", name)), menuDesc.Render(describe(name))))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-12s", name)), menuSub.Render(describe(name))))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (a app) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(a.selected)) + "\n    " + menuSub.Render(describe(a.selected)) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range a.fields {
		valStr := fmt.Sprintf("%8.4f", a.values[name])
		if a.editing && i == a.fieldCursor {
			valStr = fmt.Sprintf("%8s", a.editBuf+"_")
		}
		if i == a.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-6s", name)), menuDesc.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", menuIdle.Render(fmt.Sprintf("%-6s", name)), menuSub.Render(valStr)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + StatusPaused.Render(a.err.Error()) + "\n")
	}
	b.WriteString(hints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back"))
	return b.String()
}

func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
