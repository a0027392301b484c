package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/waddington/internal/experiment"
	"github.com/san-kum/waddington/internal/metrics"
)

// DPI of exported images.
const DPI = 150

var (
	pathColor    = color.RGBA{R: 0, G: 120, B: 200, A: 255}
	comfortColor = color.RGBA{R: 0, G: 160, B: 90, A: 255}
	spikeColor   = color.RGBA{R: 200, G: 50, B: 50, A: 255}
)

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.TextStyle.Font.Size = vg.Points(11)
	p.Y.Label.TextStyle.Font.Size = vg.Points(11)
	p.X.Padding = vg.Points(8)
	p.Y.Padding = vg.Points(8)
	p.Add(plotter.NewGrid())
}

func addLine(p *plot.Plot, pts plotter.XYs, c color.Color, width float64, label string) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(width)
	line.LineStyle.Color = c
	p.Add(line)
	if label != "" {
		p.Legend.Add(label, line)
	}
	return nil
}

func addLevel(p *plot.Plot, y float64, c color.Color, label string) {
	f := plotter.NewFunction(func(float64) float64 { return y })
	f.LineStyle.Color = c
	f.LineStyle.Width = vg.Points(1)
	f.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(f)
	if label != "" {
		p.Legend.Add(label, f)
	}
}

// TrajectoryPlot draws x(t) against the zone thresholds, or the planar path
// for 2-D runs.
func TrajectoryPlot(out *experiment.Outcome) (*plot.Plot, error) {
	if out.Result == nil || len(out.Result.Trajectory) < 2 {
		return nil, fmt.Errorf("export: nothing to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s  (%s)", out.Plan.Source, out.Plan.Params)
	stylePlot(p)

	pts := make(plotter.XYs, 0, len(out.Result.Trajectory))
	for _, pt := range Points(out) {
		pts = append(pts, plotter.XY{X: pt.X, Y: pt.Y})
	}

	if out.Plan.Mode.Dim() == 1 {
		p.X.Label.Text = "time"
		p.Y.Label.Text = "deviation x(t)"
		p.Y.Min, p.Y.Max = -4, 4
		addLevel(p, metrics.ComfortRadius, comfortColor, "comfort zone")
		addLevel(p, -metrics.ComfortRadius, comfortColor, "")
		addLevel(p, metrics.SpikeRadius, spikeColor, "spike zone")
		addLevel(p, -metrics.SpikeRadius, spikeColor, "")
	} else {
		p.X.Label.Text = "x0"
		p.Y.Label.Text = "x1"
	}

	if err := addLine(p, pts, pathColor, 1.2, "trajectory"); err != nil {
		return nil, err
	}
	return p, nil
}

// LandscapePlot draws the sampled potential U(x).
func LandscapePlot(out *experiment.Outcome) (*plot.Plot, error) {
	if len(out.Profile) < 2 {
		return nil, fmt.Errorf("export: landscape not sampled")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("U(x)  %s, c4=%g", out.Regime, out.Plan.Quartic)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "potential U(x)"
	stylePlot(p)

	pts := make(plotter.XYs, len(out.Profile))
	for i, s := range out.Profile {
		pts[i] = plotter.XY{X: s.X, Y: s.U}
	}
	if err := addLine(p, pts, color.Black, 2, ""); err != nil {
		return nil, err
	}
	return p, nil
}

// WritePNG renders p at widthIn x heightIn inches.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(DPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return bw.Flush()
}

// SavePNG writes the trajectory plot to path and the landscape next to it
// with a "-landscape" suffix.
func SavePNG(path string, out *experiment.Outcome) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	traj, err := TrajectoryPlot(out)
	if err != nil {
		return err
	}
	if err := savePlot(path, traj); err != nil {
		return err
	}

	land, err := LandscapePlot(out)
	if err != nil {
		return err
	}
	ext := filepath.Ext(path)
	return savePlot(path[:len(path)-len(ext)]+"-landscape"+ext, land)
}

func savePlot(path string, p *plot.Plot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer f.Close()
	return WritePNG(f, p, 8, 5)
}
