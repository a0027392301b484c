package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/waddington/internal/experiment"
	"github.com/san-kum/waddington/internal/metrics"
)

type Point struct{ X, Y float64 }

// Points projects an outcome onto the plane: (t, x) for 1-D runs and the
// path itself for planar runs.
func Points(out *experiment.Outcome) []Point {
	if out.Result == nil {
		return nil
	}
	traj := out.Result.Trajectory
	pts := make([]Point, len(traj))
	for i, s := range traj {
		if len(s) >= 2 {
			pts[i] = Point{X: s[0], Y: s[1]}
		} else {
			pts[i] = Point{X: out.Result.Times[i], Y: s[0]}
		}
	}
	return pts
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func (b bounds) sx(x float64, width int) float64 {
	return (x - b.minX) / (b.maxX - b.minX) * float64(width)
}

func (b bounds) sy(y float64, height int) float64 {
	return float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height)
}

func padded(points []Point) bounds {
	b := bounds{points[0].X, points[0].X, points[0].Y, points[0].Y}
	for _, p := range points {
		if p.X < b.minX {
			b.minX = p.X
		}
		if p.X > b.maxX {
			b.maxX = p.X
		}
		if p.Y < b.minY {
			b.minY = p.Y
		}
		if p.Y > b.maxY {
			b.maxY = p.Y
		}
	}

	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

// TrajectoryToSVG draws points as a single path. When zones is set, the
// comfort band is shaded behind the path (1-D runs only).
func TrajectoryToSVG(points []Point, width, height int, strokeColor string, zones bool) string {
	if len(points) < 2 {
		return ""
	}
	b := padded(points)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if zones {
		top := b.sy(metrics.ComfortRadius, height)
		bottom := b.sy(-metrics.ComfortRadius, height)
		sb.WriteString(fmt.Sprintf(`<rect x="0" y="%.1f" width="%d" height="%.1f" fill="#00ff88" fill-opacity="0.12"/>
`, top, width, bottom-top))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, p := range points {
		x, y := b.sx(p.X, width), b.sy(p.Y, height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// OutcomeToSVG renders a finished run.
func OutcomeToSVG(out *experiment.Outcome, width, height int) string {
	return TrajectoryToSVG(Points(out), width, height, "#00ccff", out.Plan.Mode.Dim() == 1)
}
