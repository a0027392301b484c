package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/waddington/internal/conditions"
	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/experiment"
	"github.com/san-kum/waddington/internal/metrics"
	"github.com/san-kum/waddington/internal/viz"
)

type state int

const (
	stateMenu state = iota
	stateConfig
	stateSim
)

const (
	scrubStep = 10
	maxSpeed  = 64
	// planar paths are drawn on [-planeExtent, planeExtent]².
	planeExtent = 4.0
)

// entry is one line of the menu: a mapped profile/condition or the custom
// landscape passed in by the caller.
type entry struct {
	name    string
	desc    string
	mapping *conditions.Mapping
}

type param struct {
	name     string
	step     float64
	lo, hi   float64
	integral bool
}

var paramDefs = []param{
	{name: "width", step: 0.1, lo: 0.1, hi: 6},
	{name: "depth", step: 0.1, lo: 0, hi: 6},
	{name: "noise", step: 0.05, lo: 0, hi: 3},
	{name: "steps", step: 100, lo: 100, hi: 2000, integral: true},
	{name: "seed", step: 1, lo: 0, hi: math.MaxInt32, integral: true},
}

type model struct {
	exp   *experiment.Experiment
	base  experiment.Plan
	vocab conditions.Vocabulary
	theme viz.Theme

	state   state
	cursor  int
	entries []entry
	chosen  entry

	params      map[string]float64
	paramCursor int
	editing     bool
	editBuf     string

	outcome *experiment.Outcome
	runErr  error
	frame   int
	speed   int
	paused  bool

	width  int
	height int
}

// NewViewer builds the interactive viewer. base supplies everything the
// menu does not choose: mode, dt, start, thresholds and the custom landscape.
func NewViewer(exp *experiment.Experiment, base experiment.Plan, vocab conditions.Vocabulary, theme viz.Theme) *model {
	if exp == nil {
		exp = experiment.New(nil)
	}
	entries := make([]entry, 0, 10)
	for _, m := range conditions.All() {
		entries = append(entries, entry{
			name:    m.Profile.String() + "/" + m.Condition.String(),
			desc:    m.Tag,
			mapping: &m,
		})
	}
	entries = append(entries, entry{name: "custom", desc: base.Params.String()})

	return &model{
		exp:     exp,
		base:    base,
		vocab:   vocab,
		theme:   theme,
		state:   stateMenu,
		entries: entries,
		params:  make(map[string]float64),
		speed:   4,
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim || m.outcome == nil || m.paused {
			return m, nil
		}
		m.advance(m.speed)
		if m.paused {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "t":
		m.theme = viz.NextTheme(m.theme)
	case "enter", " ":
		m.chosen = m.entries[m.cursor]
		m.state = stateConfig
		m.paramCursor = 0
		m.loadParams()
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	p := paramDefs[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				m.setParam(p, val)
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(paramDefs)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = formatParam(p, m.params[p.name])
	case "left", "h":
		m.setParam(p, m.params[p.name]-p.step)
	case "right", "l":
		m.setParam(p, m.params[p.name]+p.step)
	case "t":
		m.theme = viz.NextTheme(m.theme)
	case "s":
		m.start()
		m.state = stateSim
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
		m.reset()
		return m, tea.ClearScreen
	case "c":
		m.state = stateConfig
		m.reset()
		return m, tea.ClearScreen
	case " ", "p":
		if m.outcome == nil {
			return m, nil
		}
		m.paused = !m.paused
		if !m.paused {
			if m.frame >= m.lastFrame() {
				m.frame = 0
			}
			return m, tick()
		}
	case "left", "h":
		m.paused = true
		m.frame = max(m.frame-scrubStep, 0)
	case "right", "l":
		m.paused = true
		m.frame = min(m.frame+scrubStep, m.lastFrame())
	case "g", "home":
		m.paused = true
		m.frame = 0
	case "G", "end":
		m.paused = true
		m.frame = m.lastFrame()
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeed)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "r":
		m.params["seed"]++
		m.start()
		return m, tea.Batch(tea.ClearScreen, tick())
	case "t":
		m.theme = viz.NextTheme(m.theme)
	}
	return m, nil
}

// loadParams seeds the config screen from the chosen entry.
func (m *model) loadParams() {
	p := m.base.Params
	if m.chosen.mapping != nil {
		p = m.chosen.mapping.Params
	}
	m.params["width"] = p.Width
	m.params["depth"] = p.Depth
	m.params["noise"] = p.Noise
	m.params["steps"] = float64(clampInt(m.base.Run.Steps, 100, 2000))
	m.params["seed"] = float64(m.base.Run.Seed)
}

func (m *model) setParam(p param, v float64) {
	v = math.Max(p.lo, math.Min(p.hi, v))
	if p.integral {
		v = math.Round(v)
	}
	m.params[p.name] = v
}

func formatParam(p param, v float64) string {
	if p.integral {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func (m model) plan() experiment.Plan {
	plan := m.base
	if m.chosen.mapping != nil {
		plan = plan.ForMapping(*m.chosen.mapping)
	}
	plan.Params = dynamo.Params{
		Width: m.params["width"],
		Depth: m.params["depth"],
		Noise: m.params["noise"],
	}
	plan.Run.Steps = int(m.params["steps"])
	plan.Run.Seed = int64(m.params["seed"])
	return plan
}

// start runs the whole simulation up front; playback only moves a cursor
// through the finished trajectory.
func (m *model) start() {
	out, err := m.exp.Run(context.Background(), m.plan())
	m.outcome = out
	m.runErr = err
	m.frame = 0
	m.paused = out == nil
}

func (m *model) reset() {
	m.outcome = nil
	m.runErr = nil
	m.frame = 0
	m.paused = false
}

func (m model) lastFrame() int {
	if m.outcome == nil || m.outcome.Result == nil {
		return 0
	}
	return max(len(m.outcome.Result.Trajectory)-1, 0)
}

func (m *model) advance(n int) {
	m.frame += n
	if m.frame >= m.lastFrame() {
		m.frame = m.lastFrame()
		m.paused = true
	}
}

// window is the part of the trajectory played so far.
func (m model) window() dynamo.Trajectory {
	if m.outcome == nil || m.outcome.Result == nil {
		return nil
	}
	traj := m.outcome.Result.Trajectory
	end := min(m.frame+1, len(traj))
	return traj[:end]
}

type palette struct {
	primary, accent, text, muted, dim, good, warn, bad lipgloss.Style
}

func (m model) palette() palette {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return palette{
		primary: fg(m.theme.Primary),
		accent:  fg(m.theme.Accent),
		text:    fg(lipgloss.Color("255")),
		muted:   fg(m.theme.Muted),
		dim:     fg(lipgloss.Color("238")),
		good:    fg(m.theme.Good),
		warn:    fg(m.theme.Warn),
		bad:     fg(m.theme.Bad),
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	pal := m.palette()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(pal.dim.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + pal.primary.Render("w a d d i n g t o n") + "\n")
	b.WriteString(pal.dim.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, e := range m.entries {
		if i == m.cursor {
			b.WriteString("      " + pal.primary.Render("▸ ") + pal.text.Render(fmt.Sprintf("%-28s", e.name)) + pal.muted.Render(e.desc) + "\n")
		} else {
			b.WriteString("        " + pal.muted.Render(fmt.Sprintf("%-28s", e.name)) + pal.dim.Render(e.desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(pal.muted.Render(fmt.Sprintf("      ↑↓ select   enter configure   t theme (%s)   q quit", m.theme.Name)) + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	pal := m.palette()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + pal.primary.Render(m.chosen.name) + "  " + pal.muted.Render(m.chosen.desc) + "\n")
	if m.chosen.mapping != nil {
		b.WriteString("      " + pal.dim.Render(m.chosen.mapping.Profile.Note()) + "\n")
	}
	b.WriteString(pal.dim.Render("      "+strings.Repeat("─", 36)) + "\n\n")

	for i, p := range paramDefs {
		val := fmt.Sprintf("%8s", formatParam(p, m.params[p.name]))
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + pal.primary.Render("▸ ") + pal.text.Render(fmt.Sprintf("%-10s", p.name)) + pal.accent.Render(val) + "\n")
		} else {
			b.WriteString("        " + pal.muted.Render(fmt.Sprintf("%-10s", p.name)) + pal.muted.Render(val) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(pal.muted.Render("      ↑↓ select  ←→ adjust  enter edit  s start  esc back") + "\n")
	return b.String()
}

func (m model) viewSim() string {
	pal := m.palette()
	var b strings.Builder

	if m.outcome == nil {
		b.WriteString("\n   " + pal.bad.Render("run failed: ") + fmt.Sprint(m.runErr) + "\n")
		b.WriteString("\n" + pal.muted.Render("   c config  q menu") + "\n")
		return b.String()
	}

	out := m.outcome
	statusIcon, statusText := pal.good.Render("●"), pal.good.Render("playing")
	switch {
	case out.Diverged() && m.frame >= m.lastFrame():
		statusIcon, statusText = pal.bad.Render("✕"), pal.bad.Render("diverged")
	case m.frame >= m.lastFrame():
		statusIcon, statusText = pal.muted.Render("■"), pal.muted.Render("done")
	case m.paused:
		statusIcon, statusText = pal.warn.Render("○"), pal.warn.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n", statusIcon, pal.primary.Render(out.Plan.Source), statusText, pal.dim.Render(out.Plan.Params.String())))

	barWidth := 36
	progress := 0.0
	if last := m.lastFrame(); last > 0 {
		progress = float64(m.frame) / float64(last)
	}
	filled := int(progress * float64(barWidth))
	t := float64(m.frame) * out.Plan.Run.Dt
	bar := pal.primary.Render(strings.Repeat("━", filled)) + pal.dim.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar,
		pal.muted.Render(fmt.Sprintf("t=%.2f step %d/%d", t, m.frame, out.Plan.Run.Steps)),
		pal.muted.Render(fmt.Sprintf("x%d", m.speed))))

	gw := max(m.width-16, 40)
	gh := max(m.height-18, 8)
	b.WriteString(m.viewPath(gw, gh, pal))
	b.WriteString("\n")
	b.WriteString(m.viewStats(pal))
	b.WriteString("\n" + pal.muted.Render("   space play/pause  ←→ scrub  ±speed  r reseed  t theme  c config  q menu") + "\n")
	return b.String()
}

func (m model) viewPath(w, h int, pal palette) string {
	win := m.window()
	if len(win) == 0 {
		return ""
	}

	if len(win[0]) == 1 {
		series := win.Axis(0)
		if len(series) < 2 {
			series = append(series, series[0])
		}
		graph := asciigraph.Plot(series,
			asciigraph.Height(h),
			asciigraph.Width(w),
			asciigraph.LowerBound(-metrics.ComfortRadius),
			asciigraph.UpperBound(metrics.ComfortRadius),
			asciigraph.Caption("deviation x(t)"),
		)
		return indent(pal.primary.Render(graph))
	}

	c := viz.NewCanvas(w/2, h/2)
	c.PlotPath(win.Axis(0), win.Axis(1), -planeExtent, planeExtent)
	cur := win.Final()
	c.Mark(cur[0], cur[1], -planeExtent, planeExtent)
	return indent(pal.primary.Render(c.String())) + pal.muted.Render(fmt.Sprintf("   plane [%g, %g]², current (%.2f, %.2f)", -planeExtent, planeExtent, cur[0], cur[1])) + "\n"
}

func (m model) viewStats(pal palette) string {
	win := m.window()
	if len(win) == 0 {
		return ""
	}
	devs := win.Deviations()
	sum, comfort, spike := 0.0, 0, 0
	for _, d := range devs {
		sum += d
		if d < metrics.ComfortRadius {
			comfort++
		}
		if d > metrics.SpikeRadius {
			spike++
		}
	}
	n := float64(len(devs))
	mad := sum / n

	var b strings.Builder
	b.WriteString(fmt.Sprintf("   %s %s  %s %s\n",
		pal.muted.Render("|x| now"), pal.text.Render(fmt.Sprintf("%.3f", devs[len(devs)-1])),
		pal.muted.Render("mean so far"), pal.text.Render(fmt.Sprintf("%.3f", mad))))
	b.WriteString(fmt.Sprintf("   %s %s  %s %s\n",
		pal.muted.Render("comfort"), viz.ProgressBar(float64(comfort)/n, 16, false),
		pal.muted.Render("spike"), viz.ProgressBar(float64(spike)/n, 16, true)))
	b.WriteString("   " + pal.muted.Render("|x|") + " " + viz.Sparkline(devs, 32) + "\n")

	out := m.outcome
	if m.frame < m.lastFrame() || out.Diverged() {
		return b.String()
	}

	s := out.Summary
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n",
		pal.muted.Render("band"), viz.BandStyle(s.Band).Render(string(s.Band)), pal.dim.Render(s.Band.Description())))
	if mp := out.Plan.Mapping; mp != nil {
		b.WriteString("   " + pal.accent.Render(mp.Tag) + "\n")
		for _, r := range mp.Sensors(m.vocab) {
			b.WriteString(fmt.Sprintf("     %s %s\n", pal.muted.Render(fmt.Sprintf("%-24s", r.Channel)), r.Label))
		}
	}
	return b.String()
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "   " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// Run starts the viewer on the alternate screen and blocks until it quits.
func Run(exp *experiment.Experiment, base experiment.Plan, vocab conditions.Vocabulary, theme viz.Theme) error {
	p := tea.NewProgram(NewViewer(exp, base, vocab, theme), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
