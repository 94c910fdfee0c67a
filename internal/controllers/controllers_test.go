package controllers

import (
	"math"
	"testing"

	"github.com/san-kum/softbody/internal/shapes"
)

func TestPID(t *testing.T) {
	ctrl := NewPID(10.0, 0.1, 5.0, 0.0)
	if u := ctrl.Update(1.0, 0.0); u >= 0 {
		t.Error("PID should output negative control for positive error")
	}
	if u := ctrl.Update(1.0, 0.0); u != -10 {
		t.Errorf("zero dt: u = %g, want proportional only", u)
	}
}

func TestPIDConvergesOnIntegrator(t *testing.T) {
	ctrl := NewPID(2, 0, 0, 1.5)
	x, dt := 0.0, 0.01
	for i := range 1000 {
		x += ctrl.Update(x, float64(i)*dt) * dt
	}
	if math.Abs(x-1.5) > 1e-6 {
		t.Errorf("x = %g, want 1.5", x)
	}
	ctrl.Reset()
	if !ctrl.first || ctrl.integral != 0 {
		t.Error("reset left state behind")
	}
}

func TestScalarColor(t *testing.T) {
	tests := []struct {
		s    float64
		want string
	}{
		{0, "#0000ff"},
		{1, "#ff0000"},
		{0.5, "#7f0080"},
		{-3, "#0000ff"},
		{7, "#ff0000"},
	}
	for _, tt := range tests {
		if got := ScalarColor(tt.s); string(got) != tt.want {
			t.Errorf("ScalarColor(%g) = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestWormGait(t *testing.T) {
	worm, err := shapes.NewWorm(shapes.DefaultWormConfig())
	if err != nil {
		t.Fatal(err)
	}
	g := NewWormGait(worm)

	g.Control(nil, 0.01, g.Start)
	for _, line := range append(g.Left, g.Right...) {
		for _, m := range line {
			if m.Spring.RestLength != worm.Config.Spacing {
				t.Fatalf("muscle moved before start: %g", m.Spring.RestLength)
			}
		}
	}

	g.Control(nil, 0.01, g.Start+1)
	changed := 0
	for _, line := range append(g.Left, g.Right...) {
		for _, m := range line {
			r := m.Spring.RestLength
			if r < g.Limit-1e-12 || r > g.Spacing+1e-12 {
				t.Fatalf("rest length %g outside [%g, %g]", r, g.Limit, g.Spacing)
			}
			if r != worm.Config.Spacing {
				changed++
			}
			if m.Spring.Color == "" || m.Spring.A.Color != m.Spring.Color {
				t.Fatal("muscle not colored")
			}
		}
	}
	if changed == 0 {
		t.Error("no muscle contracted")
	}
}

func TestContractClamps(t *testing.T) {
	worm, _ := shapes.NewWorm(shapes.DefaultWormConfig())
	g := NewWormGait(worm)
	m := &g.Left[0][0]
	g.Contract(m, 2)
	if math.Abs(m.Spring.RestLength-g.Limit) > 1e-12 {
		t.Errorf("rest = %g, want %g", m.Spring.RestLength, g.Limit)
	}
	g.Contract(m, -1)
	if m.Spring.RestLength != g.Spacing {
		t.Errorf("rest = %g, want %g", m.Spring.RestLength, g.Spacing)
	}
}
