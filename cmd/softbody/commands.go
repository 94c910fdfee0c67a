package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softbody/internal/analysis"
	"github.com/san-kum/softbody/internal/automation"
	"github.com/san-kum/softbody/internal/config"
	"github.com/san-kum/softbody/internal/experiment"
	"github.com/san-kum/softbody/internal/export"
	"github.com/san-kum/softbody/internal/optim"
	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/sim"
	"github.com/san-kum/softbody/internal/spatial"
	"github.com/san-kum/softbody/internal/store"
	"github.com/san-kum/softbody/internal/telemetry"
	"github.com/san-kum/softbody/internal/viz"
	"github.com/san-kum/softbody/internal/vmath"
	"github.com/spf13/cobra"
)

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func sceneOptions(cfg *config.Config, seed uint64) scenes.Options {
	return scenes.Options{
		Params: cfg.Params,
		Seed:   seed,
		Tune:   cfg.World.Apply,
		Logger: slog.Default(),
	}
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	st := store.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg.ExperimentConfig(), scenes.NewRegistry())
	exp.SetLogger(slog.Default())
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()
	fmt.Printf("running %s for %d ticks...\n", cfg.Scene, cfg.Steps)
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	runID, err := st.Save(res, cfg.Params)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", res.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(res.Samples))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nMETRIC\tVALUE")
	for _, name := range telemetry.MetricNames() {
		if v, ok := res.Summary.Metric(name); ok {
			fmt.Fprintf(w, "%s\t%.6g\n", name, v)
		}
	}
	if len(res.Checkpoints) > 0 {
		fmt.Fprintln(w, "\nTICK\tHASH")
		for _, c := range res.Checkpoints {
			fmt.Fprintf(w, "%d\t%s\n", c.Tick, c.Hash)
		}
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := scenes.NewRegistry()
	build := func() (*scenes.Scene, error) {
		return reg.Build(cfg.Scene, sceneOptions(cfg, cfg.Seed))
	}
	m, err := viz.NewModel(build, cfg.Dt)
	if err != nil {
		return err
	}
	m.SetGIFPath(gifPath)
	return viz.Run(m)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tDT\tINTEG\tSOLVER\tENERGY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%s\t%s\t%.3f\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Integrator,
			run.BondSolver,
			run.Summary.FinalEnergy,
		)
	}
	return w.Flush()
}

func loadSeries(runID, column string) ([]telemetry.Sample, []float64, error) {
	st := store.New(dataDir)
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	data, ok := telemetry.Series(samples, column)
	if !ok {
		return nil, nil, fmt.Errorf("unknown column %q (available: %s)", column, strings.Join(telemetry.Columns(), ", "))
	}
	return samples, data, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	_, data, err := loadSeries(args[0], plotColumn)
	if err != nil {
		return err
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("%s (%s)", plotColumn, args[0])),
	)
	fmt.Println(graph)
	return nil
}

func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := store.New(dataDir).ExportCSV(args[0], w); err != nil {
		done()
		return err
	}
	return done()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := store.New(dataDir).ExportJSON(args[0], w); err != nil {
		done()
		return err
	}
	return done()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	samples, data, err := loadSeries(args[0], analyzeColumn)
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("need at least 4 samples, run has %d", len(samples))
	}
	spacing := samples[1].Time - samples[0].Time
	if !(spacing > 0) {
		return fmt.Errorf("run %s has no sample spacing", args[0])
	}

	spec := analysis.PowerSpectrum(data, 1/spacing, hann)
	freq, power := spec.Dominant()
	st := telemetry.Describe(data)

	fmt.Printf("column:        %s\n", analyzeColumn)
	fmt.Printf("samples:       %d (every %.4fs)\n", len(data), spacing)
	fmt.Printf("mean / std:    %.6g / %.6g\n", st.Mean, st.StdDev)
	fmt.Printf("range:         [%.6g, %.6g]\n", st.Min, st.Max)
	fmt.Printf("dominant freq: %.4f Hz (power %.4g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period:        %.4f s\n", 1/freq)
	}

	bins := make([]int, 0, len(spec.Power))
	for i := 1; i < len(spec.Power); i++ {
		bins = append(bins, i)
	}
	sort.Slice(bins, func(a, b int) bool { return spec.Power[bins[a]] > spec.Power[bins[b]] })
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nFREQ\tPOWER")
	for _, i := range bins[:min(5, len(bins))] {
		fmt.Fprintf(w, "%.4f\t%.4g\n", spec.Freqs[i], spec.Power[i])
	}
	return w.Flush()
}

func sceneDt(reg *scenes.Registry, cfg *config.Config) (float64, error) {
	if cfg.Dt > 0 {
		return cfg.Dt, nil
	}
	return reg.DefaultDt(cfg.Scene)
}

func baseSeed(cfg *config.Config) uint64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return sim.DefaultConfig().Seed
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := scenes.NewRegistry()
	step, err := sceneDt(reg, cfg)
	if err != nil {
		return err
	}
	build := func(seed uint64) (*sim.World, error) {
		sc, err := reg.Build(cfg.Scene, sceneOptions(cfg, seed))
		if err != nil {
			return nil, err
		}
		return sc.World, nil
	}

	ens := sim.NewEnsemble(build, runs, baseSeed(cfg))
	ens.SetLimit(parallel)
	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("benchmarking %s: %d worlds x %d ticks\n", cfg.Scene, runs, cfg.Steps)
	start := time.Now()
	results, err := ens.Run(ctx, cfg.Steps, step)
	if err != nil {
		return err
	}
	wall := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tPOINTS\tENERGY\tCOLLISIONS\tELAPSED\tTICKS/S")
	var total int
	for _, r := range results {
		total += r.Steps
		rate := 0.0
		if r.Elapsed > 0 {
			rate = float64(r.Steps) / r.Elapsed.Seconds()
		}
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%d\t%v\t%.0f\n",
			r.Seed, r.Points, r.Energy, r.Collisions, r.Elapsed.Round(time.Millisecond), rate)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nwall time %v, %.0f ticks/s overall\n", wall.Round(time.Millisecond), float64(total)/wall.Seconds())
	return nil
}

func listScenes(cmd *cobra.Command, args []string) error {
	reg := scenes.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tDT\tPRESETS\tDESCRIPTION")
	for _, name := range reg.List() {
		desc, err := reg.Describe(name)
		if err != nil {
			return err
		}
		step, err := reg.DefaultDt(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.3f\t%s\t%s\n", name, step, strings.Join(config.ListPresets(name), ","), desc)
	}
	return w.Flush()
}

func verifyScenario(cmd *cobra.Command, args []string) error {
	path := args[0]
	scenario, err := automation.LoadScenario(path)
	if err != nil {
		return err
	}
	reg := scenes.NewRegistry()
	ctx, stop := interruptible()
	defer stop()

	if record {
		reports, err := automation.RunScenario(ctx, scenario, reg, slog.Default())
		if err != nil {
			return err
		}
		scenario.Record(reports)
		if err := automation.SaveScenario(path, scenario); err != nil {
			return err
		}
		fmt.Printf("recorded %d runs into %s\n", len(reports), path)
		return nil
	}

	reports, verr := automation.Verify(ctx, scenario, reg, slog.Default())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTATUS\tCHECKPOINTS")
	for _, r := range reports {
		status := "PASS"
		switch {
		case r.Unpinned:
			status = "UNPINNED"
		case !r.Passed():
			status = "FAIL"
		}
		n := 0
		if r.Result != nil {
			n = len(r.Result.Checkpoints)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.Name, status, n)
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "\ttick %d\twant %s got %s\n", m.Tick, m.Want, m.Got)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return verr
}

func indexCheck(cmd *cobra.Command, args []string) error {
	res, err := spatial.SelfTest(spatial.SelfTestConfig{
		Objects: objects,
		Moved:   moved,
		Size:    vmath.V(boxSize, boxSize, boxSize),
		Side:    side,
		Seed:    probeSeed,
	})
	if err != nil {
		return err
	}
	fmt.Printf("probe %d of %d objects\n", res.Probe, res.Objects)
	fmt.Printf("brute force: %d within %.3f (%v)\n", len(res.Reference), side, res.Brute)
	fmt.Printf("indexed:     %d within %.3f (%v)\n", len(res.Indexed), side, res.Query)
	fmt.Printf("insert and update: %v\n", res.Insert)
	fmt.Printf("symmetric caches: %v\n", res.Symmetric)
	slog.Info("index stats", "stats", res.Stats)
	if !res.Passed() {
		return errors.New("index check failed")
	}
	fmt.Println("index check passed")
	return nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := interruptible()
	defer stop()
	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Scene:     cfg.Scene,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepN,
		Steps:     cfg.Steps,
		Dt:        cfg.Dt,
		Seed:      cfg.Seed,
		Params:    cfg.Params,
	}, scenes.NewRegistry(), slog.Default())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL_E\tDRIFT\tDISPLACEMENT\tDISTANCE_X\tCOLLISIONS\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.4f\t%.4f\t%d\n",
			r.ParamValue, s.FinalEnergy, s.EnergyDrift, s.Displacement, s.DistanceX, s.Collisions)
	}
	return w.Flush()
}

func seedTrials(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := interruptible()
	defer stop()
	results, err := automation.RunTrials(ctx, &automation.SeedTrials{
		Scene:     cfg.Scene,
		Steps:     cfg.Steps,
		Dt:        cfg.Dt,
		BaseSeed:  baseSeed(cfg),
		NumTrials: trials,
		Params:    cfg.Params,
	}, scenes.NewRegistry(), slog.Default())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTABLE\tFINAL_E\tDISPLACEMENT")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%v\t%.4f\t%.4f\n", r.Seed, r.Stable, r.Summary.FinalEnergy, r.Summary.Displacement)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.TrialStats(results)
	fmt.Printf("\nstable %d, unstable %d\n", stable, unstable)
	return nil
}

// parseBound reads name:min:max[:init].
func parseBound(s string) (optim.Bound, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return optim.Bound{}, fmt.Errorf("bound %q: want name:min:max[:init]", s)
	}
	vals := make([]float64, len(parts)-1)
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return optim.Bound{}, fmt.Errorf("bound %q: %w", s, err)
		}
		vals[i] = v
	}
	b := optim.Bound{Name: parts[0], Min: vals[0], Max: vals[1], Init: (vals[0] + vals[1]) / 2}
	if len(vals) == 3 {
		b.Init = vals[2]
	}
	if b.Max < b.Min {
		return optim.Bound{}, fmt.Errorf("bound %q: max below min", s)
	}
	return b, nil
}

func tuneScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if !slices.Contains(telemetry.MetricNames(), metric) {
		return fmt.Errorf("unknown metric %q (available: %s)", metric, strings.Join(telemetry.MetricNames(), ", "))
	}
	if len(bounds) == 0 {
		return errors.New("at least one --bound is required")
	}
	parsed := make([]optim.Bound, len(bounds))
	for i, s := range bounds {
		if parsed[i], err = parseBound(s); err != nil {
			return err
		}
	}

	obj := &optim.Objective{
		Scene:    cfg.Scene,
		Steps:    cfg.Steps,
		Dt:       cfg.Dt,
		Seed:     cfg.Seed,
		Base:     cfg.Params,
		Metric:   metric,
		Maximize: maximize,
		World:    cfg.World.Apply,
		Registry: scenes.NewRegistry(),
	}
	ctx, stop := interruptible()
	defer stop()

	var best map[string]float64
	var cost float64
	switch method {
	case "grid":
		names := make([]string, len(parsed))
		ranges := make([][]float64, len(parsed))
		for i, b := range parsed {
			names[i] = b.Name
			ranges[i] = linspace(b.Min, b.Max, gridSteps)
		}
		best, cost, err = optim.NewGridSearch(names, ranges).Search(ctx, obj)
	case "cmaes":
		search := &optim.CMAES{
			Bounds:      parsed,
			Evaluations: evals,
			Progress: func(i int, p map[string]float64, c float64) {
				slog.Info("evaluation", "n", i, "params", p, "cost", c)
			},
		}
		var res *optim.Result
		res, err = search.Minimize(ctx, obj)
		if res != nil {
			best, cost = res.Params, res.Cost
		}
	default:
		return fmt.Errorf("unknown method %q (available: cmaes, grid)", method)
	}
	if err != nil {
		return err
	}
	if best == nil {
		return errors.New("no evaluation succeeded")
	}
	if maximize {
		cost = -cost
	}

	names := make([]string, 0, len(best))
	for k := range best {
		names = append(names, k)
	}
	sort.Strings(names)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tVALUE")
	for _, k := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", k, best[k])
	}
	fmt.Fprintf(w, "\n%s\t%.6g\n", metric, cost)
	return w.Flush()
}

func linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func snapshotScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := scenes.NewRegistry()
	sc, err := reg.Build(cfg.Scene, sceneOptions(cfg, cfg.Seed))
	if err != nil {
		return err
	}
	step, err := sceneDt(reg, cfg)
	if err != nil {
		return err
	}
	if err := sc.World.Run(cfg.Steps, step); err != nil {
		return err
	}

	pts := sc.World.AllPoints()
	pos := make([]vmath.Vec3, len(pts))
	for i, p := range pts {
		pos[i] = p.Pos
	}
	cam := viz.NewCamera()
	cam.Fit(pos)

	w, done, err := output()
	if err != nil {
		return err
	}
	if err := export.WorldToSVG(w, sc.World, cam, svgWidth, svgHeight); err != nil {
		done()
		return err
	}
	slog.Info("snapshot written", "scene", cfg.Scene, "tick", sc.World.Timestep(), "points", len(pts))
	return done()
}

func trackRun(cmd *cobra.Command, args []string) error {
	samples, err := store.New(dataDir).LoadSamples(args[0])
	if err != nil {
		return err
	}
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := export.TrackToSVG(w, samples, svgWidth, svgHeight, trackColor); err != nil {
		done()
		return err
	}
	return done()
}
