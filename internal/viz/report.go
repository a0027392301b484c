package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/waddington/internal/conditions"
	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/experiment"
	"github.com/san-kum/waddington/internal/physics"
)

// LandscapeGraph plots U(x) over the sampled domain.
func LandscapeGraph(samples []physics.Sample, width, height int) string {
	if len(samples) == 0 {
		return ""
	}
	u := make([]float64, len(samples))
	for i, s := range samples {
		u[i] = s.U
	}
	caption := fmt.Sprintf("U(x), x in [%.1f, %.1f]", samples[0].X, samples[len(samples)-1].X)
	return asciigraph.Plot(u,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// TrajectoryGraph plots every axis of the path against step index.
func TrajectoryGraph(traj dynamo.Trajectory, width, height int) string {
	if len(traj) == 0 {
		return ""
	}
	dim := len(traj[0])
	if dim == 1 {
		return asciigraph.Plot(traj.Axis(0),
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption("deviation x(t)"),
		)
	}

	series := make([][]float64, dim)
	for i := range series {
		series[i] = traj.Axis(i)
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
		asciigraph.Caption("x0 (cyan), x1 (magenta)"),
	)
}

// DeviationGraph plots |x| so planar runs read like 1-D ones.
func DeviationGraph(traj dynamo.Trajectory, width, height int) string {
	if len(traj) == 0 {
		return ""
	}
	return asciigraph.Plot(traj.Deviations(),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("distance from centre |x|"),
	)
}

func row(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-16s", label)) + value
}

// SummaryPanel is the styled report of one run.
func SummaryPanel(out *experiment.Outcome, vocab conditions.Vocabulary) string {
	var lines []string
	lines = append(lines, Title.Render(out.Plan.Source))
	lines = append(lines, Subtle.Render(fmt.Sprintf("%s  mode=%s  c4=%g", out.Plan.Params, out.Plan.Mode, out.Plan.Quartic)))
	lines = append(lines, "")

	lines = append(lines, row("regime", fmt.Sprintf("%s (canalization %.2f)", out.Regime, out.Canalization)))
	if out.Result != nil {
		lines = append(lines, row("steps", fmt.Sprintf("%d of %d, dt=%g, seed=%d", out.Result.StepsTaken, out.Plan.Run.Steps, out.Plan.Run.Dt, out.Plan.Run.Seed)))
	}

	if out.Diverged() {
		lines = append(lines, row("status", SparkLow.Bold(true).Render("diverged")))
	} else {
		s := out.Summary
		lines = append(lines,
			row("mean deviation", MetricValue.Render(fmt.Sprintf("%.3f", s.MeanDeviation))),
			row("band", BandStyle(s.Band).Render(string(s.Band))+Subtle.Render("  "+s.Band.Description())),
			row("max excursion", MetricValue.Render(fmt.Sprintf("%.3f", s.MaxExcursion))),
			row("comfort zone", ProgressBar(s.ComfortFraction, 20, false)+fmt.Sprintf(" %3.0f%%", s.ComfortFraction*100)),
			row("spike zone", ProgressBar(s.SpikeFraction, 20, true)+fmt.Sprintf(" %3.0f%%", s.SpikeFraction*100)),
			row("final energy", fmt.Sprintf("%.3f (mean %.3f)", s.FinalEnergy, s.MeanEnergy)),
		)
	}

	if m := out.Plan.Mapping; m != nil {
		lines = append(lines, Separator(44), row("interpretation", Selected.Render(m.Tag)))
		for _, r := range m.Sensors(vocab) {
			lines = append(lines, row("  "+r.Channel, r.Label))
		}
	}

	return Panel.Render(strings.Join(lines, "\n"))
}

// MappingPanel shows one profile/condition cell without running it.
func MappingPanel(m conditions.Mapping, vocab conditions.Vocabulary) string {
	lines := []string{
		Title.Render(m.Profile.Label() + " / " + m.Condition.Label()),
		Subtle.Render(m.Profile.Note()),
		"",
		row("baseline", m.Baseline.String()),
		row("derived", MetricValue.Render(m.Params.String())),
		row("interpretation", Selected.Render(m.Tag)),
		"",
	}
	for _, r := range m.Sensors(vocab) {
		lines = append(lines, row(r.Channel, r.Label))
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// CompareTable lays outcomes out in a grid with one line per run.
func CompareTable(outs []*experiment.Outcome, sparkWidth int) string {
	header := fmt.Sprintf("%-28s %-28s %7s %7s  %-14s %s", "run", "landscape", "mad", "max", "band", "|x|")
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n")

	for _, out := range outs {
		if out == nil {
			continue
		}
		tag := ""
		if out.Plan.Mapping != nil {
			tag = out.Plan.Mapping.Tag
		}
		band := string(out.Summary.Band)
		style := BandStyle(out.Summary.Band)
		if out.Diverged() {
			band = "diverged"
			style = SparkLow
		}
		spark := ""
		if out.Result != nil {
			spark = Sparkline(out.Result.Trajectory.Deviations(), sparkWidth)
		}
		b.WriteString(fmt.Sprintf("%-28s %-28s %7.3f %7.3f  %s %s\n",
			out.Plan.Source, out.Plan.Params, out.Summary.MeanDeviation, out.Summary.MaxExcursion,
			style.Render(fmt.Sprintf("%-14s", band)), spark))
		if tag != "" {
			b.WriteString(Subtle.Render(fmt.Sprintf("  %s", tag)))
			b.WriteString("\n")
		}
	}
	return b.String()
}
