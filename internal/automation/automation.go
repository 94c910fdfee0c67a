// Package automation runs scripted batches of experiments: regression
// scenarios with expected state hashes, parameter sweeps and seed trials.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/softbody/internal/config"
	"github.com/san-kum/softbody/internal/experiment"
	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/sim"
	"github.com/san-kum/softbody/internal/telemetry"
)

var (
	ErrMismatch = errors.New("automation: checkpoint mismatch")
	// ErrUnpinned means a run has no expected hashes to compare against.
	ErrUnpinned = errors.New("automation: run has no expected hashes (record them first)")
)

// Scenario is a list of runs, each optionally pinned to known hashes.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Runs        []ScenarioRun `yaml:"runs"`
}

type ScenarioRun struct {
	Name   string                `yaml:"name"`
	Scene  string                `yaml:"scene"`
	Steps  int                   `yaml:"steps"`
	Dt     float64               `yaml:"dt,omitempty"`
	Seed   uint64                `yaml:"seed,omitempty"`
	Params map[string]float64    `yaml:"params,omitempty"`
	World  config.WorldOverrides `yaml:"world,omitempty"`
	// Checkpoints to hash when Expect is empty.
	Checkpoints []uint64               `yaml:"checkpoints,omitempty"`
	Expect      []telemetry.Checkpoint `yaml:"expect,omitempty"`
}

func (r ScenarioRun) experimentConfig() experiment.Config {
	cps := r.Checkpoints
	if len(r.Expect) > 0 {
		cps = make([]uint64, len(r.Expect))
		for i, e := range r.Expect {
			cps[i] = e.Tick
		}
	}
	return experiment.Config{
		Scene:       r.Scene,
		Steps:       r.Steps,
		Dt:          r.Dt,
		Seed:        r.Seed,
		Params:      r.Params,
		SampleEvery: max(1, r.Steps),
		Checkpoints: cps,
		World:       r.World.Apply,
	}
}

type Mismatch struct {
	Tick uint64
	Want string
	Got  string // empty when the tick was never reached
}

type RunReport struct {
	Name       string
	Result     *experiment.Result
	Mismatches []Mismatch
	Unpinned   bool
}

// Passed reports whether the run matched every expected hash. A run
// without expectations has nothing to match and never passes.
func (r RunReport) Passed() bool { return !r.Unpinned && len(r.Mismatches) == 0 }

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func SaveScenario(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunScenario executes every run and compares recorded hashes against
// Expect. A failing comparison is reported, not returned as an error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *scenes.Registry, logger *slog.Logger) ([]RunReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reports := make([]RunReport, 0, len(scenario.Runs))
	for i, run := range scenario.Runs {
		logger.Info("scenario run", "index", i+1, "of", len(scenario.Runs), "name", run.Name, "scene", run.Scene)

		exp := experiment.New(run.experimentConfig(), registry)
		exp.SetLogger(logger)
		if err := exp.Setup(); err != nil {
			return reports, fmt.Errorf("run %d (%s) setup: %w", i+1, run.Name, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return reports, fmt.Errorf("run %d (%s): %w", i+1, run.Name, err)
		}
		reports = append(reports, RunReport{
			Name:       run.Name,
			Result:     res,
			Mismatches: compare(run.Expect, res.Checkpoints),
			Unpinned:   len(run.Expect) == 0,
		})
	}
	return reports, nil
}

func compare(want, got []telemetry.Checkpoint) []Mismatch {
	seen := make(map[uint64]string, len(got))
	for _, c := range got {
		seen[c.Tick] = c.Hash
	}
	var out []Mismatch
	for _, w := range want {
		if h := seen[w.Tick]; h != w.Hash {
			out = append(out, Mismatch{Tick: w.Tick, Want: w.Hash, Got: h})
		}
	}
	return out
}

// Verify wraps RunScenario and fails with ErrMismatch if any run drifted.
func Verify(ctx context.Context, scenario *Scenario, registry *scenes.Registry, logger *slog.Logger) ([]RunReport, error) {
	reports, err := RunScenario(ctx, scenario, registry, logger)
	if err != nil {
		return reports, err
	}
	failed, unpinned := 0, 0
	for _, r := range reports {
		switch {
		case r.Unpinned:
			unpinned++
		case !r.Passed():
			failed++
		}
	}
	if failed > 0 {
		return reports, fmt.Errorf("%w: %d of %d runs", ErrMismatch, failed, len(reports))
	}
	if unpinned > 0 {
		return reports, fmt.Errorf("%w: %d of %d runs", ErrUnpinned, unpinned, len(reports))
	}
	return reports, nil
}

// Record stores the hashes each report produced as the run's expectation.
func (s *Scenario) Record(reports []RunReport) {
	for i := range s.Runs {
		if i >= len(reports) || reports[i].Result == nil {
			return
		}
		s.Runs[i].Expect = append([]telemetry.Checkpoint(nil), reports[i].Result.Checkpoints...)
	}
}

// ParameterSweep runs a scene for evenly spaced values of one parameter.
type ParameterSweep struct {
	Scene     string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Steps     int
	Dt        float64
	Seed      uint64
	Params    map[string]float64
}

type SweepResult struct {
	ParamValue float64
	Summary    telemetry.Summary
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *scenes.Registry, logger *slog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("automation: sweep needs at least one value")
	}
	if logger == nil {
		logger = slog.Default()
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		val := sweep.ParamMin + float64(i)*paramStep
		params := make(map[string]float64, len(sweep.Params)+1)
		for k, v := range sweep.Params {
			params[k] = v
		}
		params[sweep.ParamName] = val

		exp := experiment.New(experiment.Config{
			Scene:  sweep.Scene,
			Steps:  sweep.Steps,
			Dt:     sweep.Dt,
			Seed:   sweep.Seed,
			Params: params,
		}, registry)
		exp.SetLogger(logger)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, SweepResult{ParamValue: val, Summary: res.Summary})
		logger.Info("sweep", "index", i+1, "of", sweep.NumSteps, "param", sweep.ParamName, "value", val)
	}
	return results, nil
}

// SeedTrials runs the same scene with NumTrials consecutive seeds.
type SeedTrials struct {
	Scene     string
	Steps     int
	Dt        float64
	BaseSeed  uint64
	NumTrials int
	Params    map[string]float64
}

type TrialResult struct {
	Seed    uint64
	Stable  bool // no point left the finite range
	Summary telemetry.Summary
}

func RunTrials(ctx context.Context, trials *SeedTrials, registry *scenes.Registry, logger *slog.Logger) ([]TrialResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]TrialResult, 0, trials.NumTrials)
	for i := 0; i < trials.NumTrials; i++ {
		seed := trials.BaseSeed + uint64(i)
		exp := experiment.New(experiment.Config{
			Scene:  trials.Scene,
			Steps:  trials.Steps,
			Dt:     trials.Dt,
			Seed:   seed,
			Params: trials.Params,
		}, registry)
		exp.SetLogger(logger)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		res, err := exp.Run(ctx)
		switch {
		case errors.Is(err, sim.ErrInvalidState):
			results = append(results, TrialResult{Seed: seed})
		case err != nil:
			return nil, err
		default:
			results = append(results, TrialResult{Seed: seed, Stable: true, Summary: res.Summary})
		}
	}
	return results, nil
}

func TrialStats(results []TrialResult) (stable, unstable int) {
	for _, r := range results {
		if r.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}
