package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/waddington/internal/conditions"
	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/experiment"
	"github.com/san-kum/waddington/internal/metrics"
	"github.com/san-kum/waddington/internal/viz"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(model)
	}
	return m, cmd
}

func newTestViewer() model {
	base := experiment.Plan{
		Source:     "custom",
		Mode:       dynamo.Mode1D,
		Params:     dynamo.Params{Width: 1.5, Depth: 1.5, Noise: 0.5},
		Quartic:    0.02,
		Integrator: "euler-maruyama",
		Run:        dynamo.Config{Dt: 0.05, Steps: 200, Seed: 42},
		Thresholds: metrics.DefaultThresholds(),
	}
	return *NewViewer(nil, base, conditions.Physiological, viz.ThemeNeon)
}

func TestMenuListsEveryMappingAndCustom(t *testing.T) {
	m := newTestViewer()
	if len(m.entries) != len(conditions.All())+1 {
		t.Fatalf("menu has %d entries", len(m.entries))
	}
	if last := m.entries[len(m.entries)-1]; last.name != "custom" || last.mapping != nil {
		t.Errorf("last entry = %+v, want custom", last)
	}
	for i, e := range m.entries[:len(m.entries)-1] {
		if e.mapping == nil {
			t.Fatalf("entry %d has no mapping", i)
		}
		if i > 0 && e.mapping == m.entries[i-1].mapping {
			t.Fatal("entries share a mapping")
		}
	}
}

func TestMenuNavigation(t *testing.T) {
	m := newTestViewer()
	m, _ = press(t, m, "k")
	if m.cursor != 0 {
		t.Errorf("cursor moved above the first entry: %d", m.cursor)
	}
	for range m.entries {
		m, _ = press(t, m, "j")
	}
	if m.cursor != len(m.entries)-1 {
		t.Errorf("cursor = %d, want last entry", m.cursor)
	}
}

func TestConfigLoadsMappingParams(t *testing.T) {
	m := newTestViewer()
	m, _ = press(t, m, "j", "enter")
	if m.state != stateConfig {
		t.Fatalf("state = %v, want config", m.state)
	}
	want := m.entries[1].mapping.Params
	if m.params["width"] != want.Width || m.params["depth"] != want.Depth || m.params["noise"] != want.Noise {
		t.Errorf("params %v, want %v", m.params, want)
	}
	if m.params["steps"] != 200 || m.params["seed"] != 42 {
		t.Errorf("run settings not carried over: %v", m.params)
	}
}

func TestConfigAdjustClamps(t *testing.T) {
	m := newTestViewer()
	m, _ = press(t, m, "enter")
	for i := 0; i < 100; i++ {
		m, _ = press(t, m, "l")
	}
	if m.params["width"] != 6 {
		t.Errorf("width = %v, want clamped to 6", m.params["width"])
	}
	for i := 0; i < 100; i++ {
		m, _ = press(t, m, "h")
	}
	if m.params["width"] != 0.1 {
		t.Errorf("width = %v, want clamped to 0.1", m.params["width"])
	}
}

func TestConfigEditField(t *testing.T) {
	m := newTestViewer()
	m, _ = press(t, m, "enter", "j", "enter")
	if !m.editing {
		t.Fatal("enter did not start editing")
	}
	m.editBuf = ""
	m, _ = press(t, m, "2", ".", "5", "x", "enter")
	if m.editing {
		t.Error("still editing after enter")
	}
	if m.params["depth"] != 2.5 {
		t.Errorf("depth = %v, want 2.5", m.params["depth"])
	}
}

func TestStartRunsWholeTrajectory(t *testing.T) {
	m := newTestViewer()
	m, cmd := press(t, m, "enter", "s")
	if m.state != stateSim {
		t.Fatalf("state = %v, want sim", m.state)
	}
	if cmd == nil {
		t.Error("start should schedule a tick")
	}
	if m.outcome == nil || m.runErr != nil {
		t.Fatalf("run failed: %v", m.runErr)
	}
	if got := len(m.outcome.Result.Trajectory); got != 201 {
		t.Errorf("trajectory has %d samples, want 201", got)
	}
	if m.lastFrame() != 200 || m.frame != 0 {
		t.Errorf("frame %d of %d", m.frame, m.lastFrame())
	}
}

func TestTickAdvancesUntilDone(t *testing.T) {
	m := newTestViewer()
	m, _ = press(t, m, "enter", "s")

	next, cmd := m.Update(tickMsg{})
	m = next.(model)
	if m.frame != m.speed || cmd == nil {
		t.Fatalf("after one tick frame=%d, cmd=%v", m.frame, cmd)
	}

	for i := 0; i < 1000 && !m.paused; i++ {
		next, _ = m.Update(tickMsg{})
		m = next.(model)
	}
	if !m.paused || m.frame != m.lastFrame() {
		t.Errorf("playback did not stop at the end: frame %d, paused %v", m.frame, m.paused)
	}
	if _, cmd = m.Update(tickMsg{}); cmd != nil {
		t.Error("finished playback should not keep ticking")
	}
	if v := m.View(); !strings.Contains(v, string(m.outcome.Summary.Band)) {
		t.Error("finished view should show the band")
	}
}

func TestScrubAndPause(t *testing.T) {
	m := newTestViewer()
	m, _ = press(t, m, "enter", "s", "right", "right")
	if !m.paused || m.frame != 2*scrubStep {
		t.Errorf("frame %d, paused %v", m.frame, m.paused)
	}
	m, _ = press(t, m, "left")
	if m.frame != scrubStep {
		t.Errorf("frame %d, want %d", m.frame, scrubStep)
	}
	m, cmd := press(t, m, "space")
	if m.paused || cmd == nil {
		t.Error("space should resume playback")
	}
	m, _ = press(t, m, "G")
	if m.frame != m.lastFrame() {
		t.Errorf("G moved to %d", m.frame)
	}
}

func TestReseedChangesPath(t *testing.T) {
	m := newTestViewer()
	m, _ = press(t, m, "enter", "s")
	first := m.outcome.Result.Trajectory.Final()[0]
	m, _ = press(t, m, "r")
	if m.params["seed"] != 43 || m.outcome.Plan.Run.Seed != 43 {
		t.Errorf("seed = %v", m.params["seed"])
	}
	if m.outcome.Result.Trajectory.Final()[0] == first {
		t.Error("reseeded run ended at the same point")
	}
}

func TestSpeedAndTheme(t *testing.T) {
	m := newTestViewer()
	m, _ = press(t, m, "enter", "s", "+", "+", "+", "+", "+")
	if m.speed != maxSpeed {
		t.Errorf("speed = %d, want %d", m.speed, maxSpeed)
	}
	m, _ = press(t, m, "-", "-", "-", "-", "-", "-", "-", "-")
	if m.speed != 1 {
		t.Errorf("speed = %d, want 1", m.speed)
	}
	m, _ = press(t, m, "t")
	if m.theme.Name != viz.ThemeMinimal.Name {
		t.Errorf("theme = %s", m.theme.Name)
	}
}

func TestBackAndQuit(t *testing.T) {
	m := newTestViewer()
	m, _ = press(t, m, "enter", "s", "c")
	if m.state != stateConfig || m.outcome != nil {
		t.Errorf("c should return to config and drop the run")
	}
	m, _ = press(t, m, "esc")
	if m.state != stateMenu {
		t.Errorf("esc should return to menu, got %v", m.state)
	}

	_, cmd := press(t, m, "ctrl+c")
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestPlanarView(t *testing.T) {
	m := newTestViewer()
	m.base.Mode = dynamo.ModeRadial
	m, _ = press(t, m, "enter", "s", "G")
	if m.runErr != nil {
		t.Fatal(m.runErr)
	}
	if v := m.View(); !strings.Contains(v, "plane") {
		t.Error("planar run should draw the plane")
	}
}
