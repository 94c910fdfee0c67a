package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func sceneCmd(t *testing.T, flags ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addSceneFlags(cmd)
	if err := cmd.ParseFlags(flags); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestResolveConfigFlags(t *testing.T) {
	cmd := sceneCmd(t, "--steps", "10", "-p", "n=2", "--gravity", "0.5", "--brute")
	cfg, err := resolveConfig(cmd, []string{"cube"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != "cube" || cfg.Steps != 10 || cfg.Dt != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Params["n"] != 2 {
		t.Errorf("params = %v", cfg.Params)
	}
	if cfg.World.Gravity == nil || *cfg.World.Gravity != 0.5 {
		t.Error("gravity override missing")
	}
	if cfg.World.CollisionIndex == nil || *cfg.World.CollisionIndex {
		t.Error("brute flag should disable the index")
	}
	if cfg.World.Integrator != nil {
		t.Error("unset flag produced an override")
	}
}

func TestResolveConfigPreset(t *testing.T) {
	cmd := sceneCmd(t, "--preset", "drop")
	cfg, err := resolveConfig(cmd, []string{"cube"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Steps != 500 {
		t.Errorf("preset steps = %d", cfg.Steps)
	}

	cmd = sceneCmd(t, "--preset", "drop", "--steps", "7")
	cfg, err = resolveConfig(cmd, []string{"cube"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Steps != 7 {
		t.Errorf("flag should win over preset, steps = %d", cfg.Steps)
	}

	cmd = sceneCmd(t, "--preset", "nope")
	if _, err := resolveConfig(cmd, []string{"cube"}); err == nil {
		t.Error("unknown preset accepted")
	}
	preset = ""
}

func TestResolveConfigBadParam(t *testing.T) {
	cmd := sceneCmd(t, "-p", "n=abc")
	if _, err := resolveConfig(cmd, nil); err == nil {
		t.Error("non-numeric param accepted")
	}
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float64
		wantErr bool
	}{
		{"freq:1:4", [3]float64{1, 4, 2.5}, false},
		{"k:10:60:30", [3]float64{10, 60, 30}, false},
		{"k:10", [3]float64{}, true},
		{"k:a:b", [3]float64{}, true},
		{"k:5:1", [3]float64{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, err := parseBound(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if tt.wantErr {
				return
			}
			if got := [3]float64{b.Min, b.Max, b.Init}; got != tt.want {
				t.Errorf("bound = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinspace(t *testing.T) {
	got := linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("linspace = %v", got)
		}
	}
	if len(linspace(3, 4, 1)) != 1 {
		t.Error("single value expected")
	}
}
