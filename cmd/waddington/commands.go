package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/waddington/internal/conditions"
	"github.com/san-kum/waddington/internal/config"
	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/experiment"
	"github.com/san-kum/waddington/internal/export"
	"github.com/san-kum/waddington/internal/optim"
	"github.com/san-kum/waddington/internal/physics"
	"github.com/san-kum/waddington/internal/tui"
	"github.com/san-kum/waddington/internal/viz"
)

var (
	listLimit   int
	showJSON    bool
	presetsYAML bool
	force       bool
	theme       string

	sweepWidth []float64
	sweepDepth []float64
	sweepGrid  int
	sweepSeeds int
	sweepTop   int
)

func newMapCmd() *cobra.Command {
	mapCmd := &cobra.Command{
		Use:   "map [profile] [condition]",
		Short: "show how a profile and condition shape the landscape",
		Args:  cobra.MaximumNArgs(2),
		RunE:  showMapping,
	}
	mapCmd.Flags().StringVar(&vocab, "vocab", config.DefaultVocabulary, "sensor vocabulary: physiological|plain")
	return mapCmd
}

func showMapping(cmd *cobra.Command, args []string) error {
	voc, err := conditions.ParseVocabulary(vocab)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROFILE\tCONDITION\tWIDTH\tDEPTH\tNOISE\tINTERPRETATION")
		for _, m := range conditions.All() {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
				m.Profile, m.Condition, m.Params.Width, m.Params.Depth, m.Params.Noise, m.Tag)
		}
		return w.Flush()
	}

	cond := conditions.Control.String()
	if len(args) == 2 {
		cond = args[1]
	}
	m, err := conditions.MapNames(args[0], cond)
	if err != nil {
		return err
	}
	fmt.Println(viz.MappingPanel(m, voc))
	return nil
}

func newCompareCmd() *cobra.Command {
	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run every profile under every condition",
		Args:  cobra.NoArgs,
		RunE:  compareConditions,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")
	compareCmd.Flags().BoolVar(&saveRun, "save", false, "save every summary to the ledger")
	return compareCmd
}

func compareConditions(cmd *cobra.Command, args []string) error {
	plan, cfg, err := resolvePlan(cmd)
	if err != nil {
		return err
	}
	outs, err := experiment.New(nil).Compare(context.Background(), plan, workers)
	if err != nil {
		return err
	}

	fmt.Println(viz.CompareTable(outs, 24))
	if saveRun {
		ids, err := saveOutcomes(cfg.DataDir, outs...)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %d runs\n", len(ids))
	}
	return nil
}

func newLandscapeCmd() *cobra.Command {
	landscapeCmd := &cobra.Command{
		Use:   "landscape",
		Short: "plot the potential U(x)",
		Args:  cobra.NoArgs,
		RunE:  plotLandscape,
	}
	addLandscapeFlags(landscapeCmd)
	landscapeCmd.Flags().BoolVar(&csvOut, "csv", false, "write samples as csv to stdout")
	return landscapeCmd
}

func plotLandscape(cmd *cobra.Command, args []string) error {
	plan, _, err := resolvePlan(cmd)
	if err != nil {
		return err
	}
	l, err := physics.NewLandscape(plan.Params, plan.Quartic, dynamo.Mode1D)
	if err != nil {
		return err
	}
	samples := l.Profile(experiment.ProfileLo, experiment.ProfileHi, experiment.ProfilePoints)

	if csvOut {
		return export.WriteProfileCSV(os.Stdout, samples)
	}

	fmt.Println(viz.Title.Render(plan.Source) + "  " + viz.Subtle.Render(plan.Params.String()))
	fmt.Printf("regime %s, canalization %.2f, U(0) = %.3f\n\n",
		physics.ClassifyRegime(plan.Params.Width), l.Canalization(), l.Energy(dynamo.State{0}))
	fmt.Println(viz.LandscapeGraph(samples, 70, 15))
	return nil
}

func newSweepCmd() *cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search width and depth for the lowest mean deviation",
		Args:  cobra.NoArgs,
		RunE:  sweepLandscape,
	}
	addRunFlags(sweepCmd)
	f := sweepCmd.Flags()
	f.Float64SliceVar(&sweepWidth, "width-range", []float64{0.5, 3.0}, "width range lo,hi")
	f.Float64SliceVar(&sweepDepth, "depth-range", []float64{0.5, 4.0}, "depth range lo,hi")
	f.IntVar(&sweepGrid, "grid", 6, "points per axis")
	f.IntVar(&sweepSeeds, "seeds", 5, "seeds averaged per point")
	f.IntVar(&sweepTop, "top", 10, "rows to print")
	f.IntVar(&workers, "workers", 0, "parallel runs per point (0 = GOMAXPROCS)")
	return sweepCmd
}

func sweepLandscape(cmd *cobra.Command, args []string) error {
	if len(sweepWidth) != 2 || len(sweepDepth) != 2 {
		return fmt.Errorf("%w: ranges take two values", dynamo.ErrInvalidParameter)
	}
	if sweepGrid < 1 || sweepSeeds < 1 {
		return fmt.Errorf("%w: grid and seeds must be positive", dynamo.ErrInvalidParameter)
	}
	plan, _, err := resolvePlan(cmd)
	if err != nil {
		return err
	}

	gs := optim.NewGridSearch(
		[]string{"width", "depth"},
		[][]float64{
			optim.Linspace(sweepWidth[0], sweepWidth[1], sweepGrid),
			optim.Linspace(sweepDepth[0], sweepDepth[1], sweepGrid),
		},
	)
	res, err := gs.Search(context.Background(), optim.MeanDeviation(experiment.New(nil), plan, sweepSeeds, workers))
	if err != nil {
		return err
	}

	ranked := res.Ranked()
	if len(ranked) == 0 {
		return errors.New("no grid point completed")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tWIDTH\tDEPTH\tMAD\tBAND")
	th := plan.Thresholds
	for i, p := range ranked {
		if i >= sweepTop {
			break
		}
		fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.3f\t%s\n", i+1, p.Params["width"], p.Params["depth"], p.Value, th.Classify(p.Value))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed := len(res.Points) - len(ranked); failed > 0 {
		fmt.Printf("\n%d of %d points failed\n", failed, len(res.Points))
	}
	return nil
}

func newPresetsCmd() *cobra.Command {
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list transient-state presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
	presetsCmd.Flags().BoolVar(&presetsYAML, "yaml", false, "print presets as yaml")
	return presetsCmd
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	if presetsYAML {
		list := make([]config.Preset, 0, len(names))
		for _, name := range names {
			list = append(list, *config.GetPreset(name))
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(list)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tWIDTH\tDEPTH\tNOISE\tDESCRIPTION")
	for _, name := range names {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%s\n", p.Name, p.Params.Width, p.Params.Depth, p.Params.Noise, p.Description)
	}
	return w.Flush()
}

func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum rows (0 = all)")
	addLedgerFlags(listCmd)
	return listCmd
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(listLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSOURCE\tMODE\tWIDTH\tDEPTH\tNOISE\tMAD\tBAND")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.3f\t%s\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Source,
			run.Mode,
			run.Width,
			run.Depth,
			run.Noise,
			run.MeanDeviation,
			run.Band,
		)
	}
	return w.Flush()
}

func newShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show one saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print as json")
	addLedgerFlags(showCmd)
	return showCmd
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Load(args[0])
	if err != nil {
		return err
	}

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", rec.ID)
	fmt.Fprintf(w, "created\t%s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "source\t%s\n", rec.Source)
	fmt.Fprintf(w, "mode\t%s\n", rec.Mode)
	fmt.Fprintf(w, "landscape\twidth=%.2f depth=%.2f noise=%.2f quartic=%g\n", rec.Width, rec.Depth, rec.Noise, rec.Quartic)
	fmt.Fprintf(w, "run\tdt=%g steps=%d seed=%d start=%v\n", rec.Dt, rec.Steps, rec.Seed, rec.Start)
	fmt.Fprintf(w, "mean deviation\t%.4f\n", rec.MeanDeviation)
	fmt.Fprintf(w, "max excursion\t%.4f\n", rec.MaxExcursion)
	fmt.Fprintf(w, "band\t%s\n", rec.Band)
	if rec.Interpretation != "" {
		fmt.Fprintf(w, "interpretation\t%s\n", rec.Interpretation)
	}
	for _, name := range slices.Sorted(maps.Keys(rec.Metrics)) {
		fmt.Fprintf(w, "%s\t%.4f\n", name, rec.Metrics[name])
	}
	return w.Flush()
}

func newDeleteCmd() *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "remove a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Delete(args[0])
		},
	}
	addLedgerFlags(deleteCmd)
	return deleteCmd
}

func newViewCmd() *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "interactive trajectory viewer",
		Args:  cobra.NoArgs,
		RunE:  runViewer,
	}
	addRunFlags(viewCmd)
	viewCmd.Flags().StringVar(&theme, "theme", viz.ThemeNeon.Name, "colour theme: "+strings.Join(viz.ThemeNames(), "|"))
	return viewCmd
}

func runViewer(cmd *cobra.Command, args []string) error {
	if !slices.Contains(viz.ThemeNames(), theme) {
		return fmt.Errorf("%w: unknown theme %q", dynamo.ErrInvalidParameter, theme)
	}
	plan, cfg, err := resolvePlan(cmd)
	if err != nil {
		return err
	}
	voc, err := vocabulary(cfg)
	if err != nil {
		return err
	}
	return tui.Run(experiment.New(nil), plan, voc, viz.GetTheme(theme))
}

func newInitConfigCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return initCmd
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "waddington.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s exists (use --force)", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}
