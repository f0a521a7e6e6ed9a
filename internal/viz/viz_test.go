package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/signal"
	"github.com/san-kum/smoothdyn/internal/sim"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != brailleBlank|0x1 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != brailleBlank|0x80 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("expected blank canvas after clear")
	}
}

func TestCanvasTrace(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Trace([]float64{0, 1}, 0, 1)

	w, h := c.Dots()
	// A rising line touches the bottom-left and top-right cells.
	if c.Grid[h/4-1][0] == brailleBlank {
		t.Error("expected bottom-left dot")
	}
	if c.Grid[0][(w-1)/2] == brailleBlank {
		t.Error("expected top-right dot")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 5); got != "─────" {
		t.Errorf("expected rule for empty input, got %q", got)
	}
	out := Sparkline([]float64{0, 1, 2, 3}, 2)
	if strings.Count(out, "█") != 1 {
		t.Errorf("expected one full block, got %q", out)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "[----]"},
		{0.5, "[==--]"},
		{2, "[====]"},
		{-1, "[----]"},
	}
	for _, tt := range tests {
		if got := Bar(tt.ratio, 4); got != tt.want {
			t.Errorf("Bar(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}

func TestPlotTrace(t *testing.T) {
	if PlotTrace(nil, 0, 40, 5, "x") != "" {
		t.Error("expected empty plot for nil result")
	}
	res := &sim.Result{
		Targets: []float64{1, 1, 1},
		States:  []dynamo.State{{}, {Position: dynamo.Uniform(0.5)}, {Position: dynamo.Uniform(0.9)}},
	}
	out := PlotTrace(res, 0, 40, 5, "smooth trace")
	if !strings.Contains(out, "smooth trace") {
		t.Errorf("expected caption in plot:\n%s", out)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != Themes[0].Name {
		t.Error("expected fallback theme")
	}
	cur := Themes[len(Themes)-1]
	if NextTheme(cur).Name != Themes[0].Name {
		t.Error("expected wrap around")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names mismatch")
	}
}

func tickN(m Model, n int) Model {
	for i := 0; i < n; i++ {
		next, _ := m.Update(TickMsg{})
		m = next.(Model)
	}
	return m
}

func key(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestLiveModelTracksSignal(t *testing.T) {
	p := curve.MustNew(curve.SmoothDamped{})
	m := NewModel("smooth", p, signal.Constant(1), dynamo.State{}, 1.0/60)

	m = tickN(m, 300)
	if len(m.history) != 300 {
		t.Fatalf("expected 300 frames, got %d", len(m.history))
	}
	if math.Abs(m.t-5) > 1e-9 {
		t.Errorf("expected t=5, got %f", m.t)
	}
	last := m.history[len(m.history)-1]
	if math.Abs(last.State.Position.X-1) > 1e-3 {
		t.Errorf("expected position near 1, got %f", last.State.Position.X)
	}
	if !strings.Contains(m.View(), "SMOOTH") {
		t.Error("expected title in view")
	}
}

func TestLiveModelPauseAndReplay(t *testing.T) {
	m := NewModel("x", curve.MustNew(curve.SmoothDamped{}), signal.Constant(1), dynamo.State{}, 0.01)
	m = tickN(m, 10)

	m = key(m, " ")
	m = tickN(m, 5)
	if len(m.history) != 10 {
		t.Errorf("expected paused model to hold 10 frames, got %d", len(m.history))
	}

	m = key(m, "[")
	if m.playHead != 8 {
		t.Errorf("expected play head 8, got %d", m.playHead)
	}
	if got := len(m.visible()); got != 9 {
		t.Errorf("expected 9 visible frames, got %d", got)
	}

	m = key(m, "r")
	if len(m.history) != 0 || m.t != 0 || m.playHead != -1 {
		t.Error("expected reset to clear history")
	}
}

func TestLiveModelTuneAndSteer(t *testing.T) {
	p := curve.MustNew(curve.Custom{F: 2, Z: 0.5, R: 0})
	m := NewModel("steer", p, nil, dynamo.State{}, 0.01)

	m = key(m, "k")
	if math.Abs(m.raw.F-2.1) > 1e-12 {
		t.Errorf("expected f=2.1, got %f", m.raw.F)
	}
	m = key(m, "tab")
	for i := 0; i < 20; i++ {
		m = key(m, "j")
	}
	if m.raw.Z != 0 {
		t.Errorf("expected z clamped at 0, got %f", m.raw.Z)
	}

	m = key(m, "right")
	m = key(m, "right")
	if m.steer != 2*steerStep {
		t.Errorf("expected steer %f, got %f", 2*steerStep, m.steer)
	}
	m = tickN(m, 1)
	if m.history[0].Target != 2*steerStep {
		t.Errorf("expected target to follow steer, got %f", m.history[0].Target)
	}

	m = key(m, "r")
	if m.raw != p.Raw || m.steer != 0 {
		t.Errorf("expected reset tuning, got %+v steer %f", m.raw, m.steer)
	}
}

func TestInteractiveAppStart(t *testing.T) {
	a := NewInteractiveApp()
	if a.entries[len(a.entries)-1] != steerEntry {
		t.Fatal("expected steer entry last")
	}

	next, _ := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	ap := next.(app)
	if ap.state != stateConfig || ap.selected != a.entries[0] {
		t.Fatalf("expected config for %s, got state %d", a.entries[0], ap.state)
	}
	if ap.values["f"] <= 0 || ap.values["dt"] <= 0 {
		t.Errorf("expected resolved values, got %v", ap.values)
	}

	next, cmd := ap.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	ap = next.(app)
	if ap.state != stateSim || cmd == nil {
		t.Errorf("expected live view to start, err %v", ap.err)
	}
}

func TestLiveModelFlagsInertResponse(t *testing.T) {
	p := curve.MustNew(curve.Custom{F: 1, Z: 0.5, R: 1})

	tests := []struct {
		name   string
		target dynamo.TargetFunc
		inert  bool
	}{
		{"constant", signal.Constant(1), false},
		{"ramp", signal.Ramp(0, 0, 1), true},
		{"sine", signal.Sine(0, 1, 0.5), true},
		{"steer", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(tt.name, p, tt.target, dynamo.State{}, 1.0/60)
			if m.rInert != tt.inert {
				t.Fatalf("expected rInert %v, got %v", tt.inert, m.rInert)
			}
			if strings.Contains(m.View(), rInertNote) {
				t.Error("note shown before r is selected")
			}

			m = key(m, "tab")
			m = key(m, "tab")
			if got := strings.Contains(m.View(), rInertNote); got != tt.inert {
				t.Errorf("expected note %v with r selected, got %v", tt.inert, got)
			}
		})
	}
}
