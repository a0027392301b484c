package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/waddington/internal/conditions"
	"github.com/san-kum/waddington/internal/config"
	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/experiment"
	"github.com/san-kum/waddington/internal/physics"
	"github.com/san-kum/waddington/internal/storage"
)

// addLandscapeFlags registers the flags that choose a landscape.
func addLandscapeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "transient-state preset (see presets)")
	f.StringVar(&profile, "profile", "", "profile: neurotypical|rigid|dispersed")
	f.StringVar(&condition, "condition", "", "condition: control|supported|tool-assisted")
	f.Float64Var(&width, "width", 1.5, "basin width σ")
	f.Float64Var(&depth, "depth", 1.5, "basin depth k")
	f.Float64Var(&noise, "noise", 0.5, "noise amplitude ξ")
	f.Float64Var(&quartic, "quartic", physics.DefaultQuartic, "confining quartic coefficient")
	f.StringVar(&vocab, "vocab", config.DefaultVocabulary, "sensor vocabulary: "+vocabularyNames())
}

// addRunFlags registers the integration settings on top of the landscape.
func addRunFlags(cmd *cobra.Command) {
	addLandscapeFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&mode, "mode", config.DefaultMode, "landscape mode: 1d|radial|per-axis")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator: "+strings.Join(experiment.NewRegistry().ListIntegrators(), "|"))
	f.Float64Var(&dt, "dt", dynamo.DefaultDt, "timestep")
	f.IntVar(&steps, "steps", dynamo.DefaultSteps, "number of steps")
	f.Int64Var(&seed, "seed", dynamo.DefaultSeed, "random seed")
	f.Float64SliceVar(&start, "start", nil, "start position, one value or one per axis")
	f.IntVar(&transient, "transient", config.DefaultTransient, "samples skipped by mean deviation")
}

// addLedgerFlags lets the ledger commands read data_dir from a config file.
func addLedgerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml), read for data_dir")
}

// openLedger opens the run ledger in the directory run --save writes to:
// --data if given, else the config file's data_dir, else the default.
func openLedger(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.Open(cfg.DataDir)
}

// loadConfig builds a config from defaults, then --config, then any flag the
// user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("preset") {
		cfg.Preset = preset
	}
	if flags.Changed("profile") {
		cfg.Profile = profile
	}
	if flags.Changed("condition") {
		cfg.Condition = condition
	}
	if flags.Changed("width") {
		cfg.Landscape.Width = width
	}
	if flags.Changed("depth") {
		cfg.Landscape.Depth = depth
	}
	if flags.Changed("noise") {
		cfg.Landscape.Noise = noise
	}
	if flags.Changed("quartic") {
		cfg.Landscape.Quartic = quartic
	}
	if flags.Changed("vocab") {
		cfg.Vocabulary = vocab
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("start") {
		cfg.Start = start
	}
	if flags.Changed("transient") {
		cfg.Transient = transient
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// resolvePlan turns flags into a run. Landscape flags given explicitly on
// the command line win over whatever a profile or preset chose.
func resolvePlan(cmd *cobra.Command) (experiment.Plan, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return experiment.Plan{}, nil, err
	}
	plan, err := experiment.FromConfig(cfg)
	if err != nil {
		return experiment.Plan{}, nil, err
	}

	flags := cmd.Flags()
	if plan.Source == "custom" {
		return plan, cfg, nil
	}
	overridden := false
	if flags.Changed("width") {
		plan.Params.Width, overridden = width, true
	}
	if flags.Changed("depth") {
		plan.Params.Depth, overridden = depth, true
	}
	if flags.Changed("noise") {
		plan.Params.Noise, overridden = noise, true
	}
	if overridden {
		if err := plan.Params.WithinBounds(dynamo.DefaultBounds()); err != nil {
			return experiment.Plan{}, nil, err
		}
		plan.Source += "*"
	}
	return plan, cfg, nil
}

func vocabularyNames() string {
	var names []string
	for _, v := range conditions.Vocabularies() {
		names = append(names, v.Name)
	}
	return strings.Join(names, "|")
}

func vocabulary(cfg *config.Config) (conditions.Vocabulary, error) {
	return conditions.ParseVocabulary(cfg.Vocabulary)
}
