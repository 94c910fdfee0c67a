package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/softbody/internal/config"
	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	steps      int
	dt         float64
	seed       uint64
	every      int
	params     map[string]string
	cps        []uint
	integrator string
	solver     string
	gravity    float64
	collisions bool
	brute      bool
	// live
	gifPath string
	// plot, analyze
	plotColumn    string
	analyzeColumn string
	height        int
	hann          bool
	// export, snapshot, track
	outFile    string
	svgWidth   int
	svgHeight  int
	trackColor string
	// bench
	runs     int
	parallel int
	// verify
	record bool
	// index-check
	objects   int
	moved     int
	boxSize   float64
	side      float64
	probeSeed uint64
	// sweep, trials
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepN     int
	trials     int
	// tune
	method    string
	bounds    []string
	metric    string
	maximize  bool
	evals     int
	gridSteps int
)

// main registers commands and flags, opens the scene picker when no
// subcommand is given, and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "softbody",
		Short:         "mass spring soft-body simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(scenes.NewRegistry(), slog.Default())
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&every, "sample-every", config.DefaultSampleEvery, "ticks between samples")
	runCmd.Flags().UintSliceVar(&cps, "checkpoint", nil, "tick to hash (repeatable)")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene in the terminal viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&gifPath, "gif", "softbody.gif", "where G writes recordings")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a sample column of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotColumn, "column", "energy", "sample column")
	plotCmd.Flags().IntVar(&height, "height", 15, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a sample column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeColumn, "column", "centroid_x", "sample column")
	analyzeCmd.Flags().BoolVar(&hann, "hann", true, "apply a Hann window")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "step independent copies of a scene concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 4, "number of worlds")
	benchCmd.Flags().IntVar(&parallel, "parallel", 0, "worlds stepping at once (0 = all)")

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list available scenes",
		RunE:  listScenes,
	}

	verifyCmd := &cobra.Command{
		Use:   "verify [scenario.yaml]",
		Short: "replay a scenario and compare checkpoint hashes",
		Args:  cobra.ExactArgs(1),
		RunE:  verifyScenario,
	}
	verifyCmd.Flags().BoolVar(&record, "record", false, "store the produced hashes as expectations")

	indexCmd := &cobra.Command{
		Use:   "index-check",
		Short: "compare the spatial index against brute force",
		RunE:  indexCheck,
	}
	indexCmd.Flags().IntVar(&objects, "objects", 20000, "number of probes")
	indexCmd.Flags().IntVar(&moved, "moved", 5000, "probes moved after insertion")
	indexCmd.Flags().Float64Var(&boxSize, "size", 60, "edge of the probe box")
	indexCmd.Flags().Float64Var(&side, "side", 1.01, "cell side")
	indexCmd.Flags().Uint64Var(&probeSeed, "seed", 12317, "probe seed")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "run a scene over evenly spaced values of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepScene,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param-name", "", "scene parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of values")
	_ = sweepCmd.MarkFlagRequired("param-name")

	trialsCmd := &cobra.Command{
		Use:   "trials [scene]",
		Short: "run a scene with consecutive seeds and report stability",
		Args:  cobra.ExactArgs(1),
		RunE:  seedTrials,
	}
	addSceneFlags(trialsCmd)
	trialsCmd.Flags().IntVar(&trials, "n", 10, "number of seeds")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "search scene parameters that optimise a summary metric",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneScene,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&method, "method", "cmaes", "search method (cmaes, grid)")
	tuneCmd.Flags().StringArrayVar(&bounds, "bound", nil, "name:min:max[:init] (repeatable)")
	tuneCmd.Flags().StringVar(&metric, "metric", "distance_x", "summary metric to optimise")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")
	tuneCmd.Flags().IntVar(&evals, "evals", 40, "evaluation budget (cmaes)")
	tuneCmd.Flags().IntVar(&gridSteps, "grid-steps", 5, "values per bound (grid)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scene]",
		Short: "run a scene headless and draw the final state as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotScene,
	}
	addSceneFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	snapshotCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	snapshotCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	trackCmd := &cobra.Command{
		Use:   "track [run_id]",
		Short: "draw the centroid path of a stored run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  trackRun,
	}
	trackCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	trackCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	trackCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	trackCmd.Flags().StringVar(&trackColor, "stroke", "#00ff00", "path colour")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, analyzeCmd,
		benchCmd, presetsCmd, scenesCmd, verifyCmd, indexCmd, sweepCmd, trialsCmd, tuneCmd,
		snapshotCmd, trackCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "ticks to run")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 = scene default)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "world seed (0 = default)")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "scene parameter key=value")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (euler, verlet)")
	cmd.Flags().StringVar(&solver, "solver", "", "bond solver (position, penalty)")
	cmd.Flags().Float64Var(&gravity, "gravity", 0, "gravity")
	cmd.Flags().BoolVar(&collisions, "collisions", true, "resolve point collisions")
	cmd.Flags().BoolVar(&brute, "brute", false, "test collisions without the spatial index")
}

func setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("log level %q: %w", logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// resolveConfig layers preset, config file and explicit flags, in that
// order, over the defaults.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	scene := cfg.Scene
	if len(args) > 0 {
		scene = args[0]
	}

	if preset != "" {
		p := config.GetPreset(scene, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scene))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Scene = args[0]
	}

	f := cmd.Flags()
	if f.Changed("steps") || cfg.Steps == 0 {
		cfg.Steps = steps
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Lookup("sample-every") != nil && f.Changed("sample-every") {
		cfg.SampleEvery = every
	}
	if f.Lookup("checkpoint") != nil && f.Changed("checkpoint") {
		cfg.Checkpoints = cfg.Checkpoints[:0]
		for _, c := range cps {
			cfg.Checkpoints = append(cfg.Checkpoints, uint64(c))
		}
	}
	if len(params) > 0 {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(params))
		}
		for k, v := range params {
			x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", k, err)
			}
			cfg.Params[k] = x
		}
	}
	if f.Changed("integrator") {
		cfg.World.Integrator = config.Ptr(integrator)
	}
	if f.Changed("solver") {
		cfg.World.BondSolver = config.Ptr(solver)
	}
	if f.Changed("gravity") {
		cfg.World.Gravity = config.Ptr(gravity)
	}
	if f.Changed("collisions") {
		cfg.World.Collisions = config.Ptr(collisions)
	}
	if f.Changed("brute") {
		cfg.World.CollisionIndex = config.Ptr(!brute)
	}
	if cmd.Flags().Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}
