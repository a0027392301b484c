package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/waddington/internal/experiment"
	"github.com/san-kum/waddington/internal/export"
	"github.com/san-kum/waddington/internal/storage"
	"github.com/san-kum/waddington/internal/viz"
)

var (
	plotOut bool
	jsonOut bool
	csvOut  bool
	pngPath string
	svgPath string
	saveRun bool
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&plotOut, "plot", false, "ascii plots of landscape and trajectory")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "write the run as json to stdout")
	runCmd.Flags().BoolVar(&csvOut, "csv", false, "write the trajectory as csv to stdout")
	runCmd.Flags().StringVar(&pngPath, "png", "", "write trajectory and landscape plots to this png")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the trajectory to this svg")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "save the summary to the ledger")
	runCmd.MarkFlagsMutuallyExclusive("json", "csv")
	return runCmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	plan, cfg, err := resolvePlan(cmd)
	if err != nil {
		return err
	}
	voc, err := vocabulary(cfg)
	if err != nil {
		return err
	}

	out, runErr := experiment.New(nil).Run(context.Background(), plan)
	if out == nil {
		return runErr
	}

	switch {
	case jsonOut:
		if err := export.WriteJSON(os.Stdout, out); err != nil {
			return err
		}
	case csvOut:
		if err := export.WriteCSV(os.Stdout, out.Result.Trajectory, out.Result.Times); err != nil {
			return err
		}
	default:
		fmt.Println(viz.SummaryPanel(out, voc))
		if plotOut {
			fmt.Println()
			fmt.Println(viz.LandscapeGraph(out.Profile, 70, 12))
			fmt.Println()
			fmt.Println(viz.TrajectoryGraph(out.Result.Trajectory, 70, 12))
			if len(out.Plan.Start) > 1 {
				fmt.Println()
				fmt.Println(viz.DeviationGraph(out.Result.Trajectory, 70, 10))
			}
		}
	}

	if pngPath != "" {
		if err := export.SavePNG(pngPath, out); err != nil {
			return fmt.Errorf("png export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", pngPath)
	}
	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.OutcomeToSVG(out, 800, 400)), 0644); err != nil {
			return fmt.Errorf("svg export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", svgPath)
	}

	if saveRun {
		id, err := saveOutcomes(cfg.DataDir, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", id[0])
	}

	return runErr
}

// saveOutcomes writes each outcome to the ledger in dir and returns the
// new ids in order.
func saveOutcomes(dir string, outs ...*experiment.Outcome) ([]string, error) {
	st, err := storage.Open(dir)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ids := make([]string, 0, len(outs))
	for _, out := range outs {
		if out == nil {
			continue
		}
		id, err := st.Save(out.Record())
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
