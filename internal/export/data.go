package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/experiment"
	"github.com/san-kum/waddington/internal/metrics"
	"github.com/san-kum/waddington/internal/physics"
)

type Data struct {
	Source         string             `json:"source"`
	Mode           string             `json:"mode"`
	Params         dynamo.Params      `json:"params"`
	Quartic        float64            `json:"quartic"`
	Dt             float64            `json:"dt"`
	Steps          int                `json:"steps"`
	Seed           int64              `json:"seed"`
	Interpretation string             `json:"interpretation,omitempty"`
	Diverged       bool               `json:"diverged"`
	Summary        metrics.Summary    `json:"summary"`
	Metrics        map[string]float64 `json:"metrics"`
	Times          []float64          `json:"times"`
	States         [][]float64        `json:"states"`
}

func NewData(out *experiment.Outcome) Data {
	d := Data{
		Source:   out.Plan.Source,
		Mode:     out.Plan.Mode.String(),
		Params:   out.Plan.Params,
		Quartic:  out.Plan.Quartic,
		Dt:       out.Plan.Run.Dt,
		Steps:    out.Plan.Run.Steps,
		Seed:     out.Plan.Run.Seed,
		Diverged: out.Diverged(),
		Summary:  out.Summary,
	}
	if out.Plan.Mapping != nil {
		d.Interpretation = out.Plan.Mapping.Tag
	}
	if out.Result != nil {
		d.Metrics = out.Result.Metrics
		d.Times = out.Result.Times
		d.States = make([][]float64, len(out.Result.Trajectory))
		for i, s := range out.Result.Trajectory {
			d.States[i] = s
		}
	}
	return d
}

func WriteJSON(w io.Writer, out *experiment.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewData(out))
}

// WriteCSV writes one row per sample: time, then one column per axis.
func WriteCSV(w io.Writer, traj dynamo.Trajectory, times []float64) error {
	if len(traj) == 0 {
		return dynamo.ErrEmptyTrajectory
	}
	if len(times) != len(traj) {
		return fmt.Errorf("export: %d times for %d samples", len(times), len(traj))
	}

	cw := csv.NewWriter(w)
	header := []string{"time"}
	for i := range traj[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, s := range traj {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, v := range s {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProfileCSV writes the sampled potential as x,u rows.
func WriteProfileCSV(w io.Writer, samples []physics.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "u"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.X, 'f', 6, 64),
			strconv.FormatFloat(s.U, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
