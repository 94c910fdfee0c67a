package viz

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/vmath"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	if c.SubWidth() != 8 || c.SubHeight() != 8 {
		t.Fatalf("sub size %dx%d", c.SubWidth(), c.SubHeight())
	}
	c.Pen("#ff0000")
	c.Set(1, 3)
	if !c.IsSet(1, 3) || c.Lit() != 1 {
		t.Fatal("dot not lit")
	}
	if c.Grid[0][0] != brailleBase+0x80 {
		t.Errorf("cell = %U", c.Grid[0][0])
	}
	if c.Colors[0][0] != "#ff0000" {
		t.Errorf("color = %q", c.Colors[0][0])
	}
	c.Unset(1, 3)
	if c.Lit() != 0 || c.Colors[0][0] != "" {
		t.Error("unset left residue")
	}

	c.Set(-1, 0)
	c.Set(8, 0)
	c.Set(0, 8)
	if c.Lit() != 0 {
		t.Error("out of bounds dots were drawn")
	}
}

func TestCanvasShapes(t *testing.T) {
	tests := []struct {
		name string
		draw func(c *Canvas)
		want int
	}{
		{"diagonal", func(c *Canvas) { c.DrawLine(0, 0, 7, 7) }, 8},
		{"horizontal", func(c *Canvas) { c.DrawLine(7, 2, 0, 2) }, 8},
		{"dot", func(c *Canvas) { c.DrawCircle(3, 3, 0, true) }, 1},
		{"disc", func(c *Canvas) { c.DrawCircle(4, 4, 2, true) }, 13},
		{"ring", func(c *Canvas) { c.DrawCircle(4, 4, 2, false) }, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(4, 2)
			tt.draw(c)
			if got := c.Lit(); got != tt.want {
				t.Errorf("lit = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCanvasRender(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Set(0, 0)
	plain := c.Plain()
	if lines := strings.Count(plain, "\n"); lines != 2 {
		t.Errorf("lines = %d", lines)
	}
	if !strings.ContainsRune(plain, '⠁') {
		t.Errorf("plain = %q", plain)
	}
	if !strings.ContainsRune(c.String(), '⠁') {
		t.Error("styled output lost the dot")
	}
	c.Clear()
	if c.Lit() != 0 {
		t.Error("clear left dots")
	}
}

func TestCameraProjection(t *testing.T) {
	cam := NewCamera()
	x, y, d := cam.Project(cam.Target, 100, 80)
	if x != 50 || y != 40 || d != 0 {
		t.Errorf("target at (%d,%d,%v)", x, y, d)
	}

	p := cam.Unproject(30, 20, 100, 80)
	if x, y, _ := cam.Project(p, 100, 80); x != 30 || y != 20 {
		t.Errorf("round trip = (%d,%d)", x, y)
	}

	near := cam.Target.Sub(cam.Forward())
	if _, _, d := cam.Project(near, 100, 80); math.Abs(d-1) > 1e-9 {
		t.Errorf("depth towards viewer = %v", d)
	}

	if _, y, _ := cam.Project(vmath.V(0, 0, 1), 100, 80); y >= 40 {
		t.Errorf("up projected to row %d", y)
	}
}

func TestCameraControls(t *testing.T) {
	cam := NewCamera()
	cam.Zoom(-2)
	if cam.Scale != minScale {
		t.Errorf("scale = %v", cam.Scale)
	}

	cam = NewCamera()
	cam.Pan(1, 0)
	if math.Abs(cam.Target.Len()-1) > 1e-9 || cam.Target[2] != 0 {
		t.Errorf("pan target = %v", cam.Target)
	}

	cam.Fit([]vmath.Vec3{vmath.V(0, 0, 0), vmath.V(2, 0, 0)})
	if cam.Target != vmath.V(1, 0, 0) || math.Abs(cam.Scale-0.4) > 1e-12 {
		t.Errorf("fit = %v scale %v", cam.Target, cam.Scale)
	}

	a := cam.Alpha
	cam.Orbit(0.1, 0)
	if cam.Alpha != a+0.1 {
		t.Errorf("alpha = %v", cam.Alpha)
	}
}

func buildCube() (*scenes.Scene, error) {
	return scenes.NewRegistry().Build("cube", scenes.Options{})
}

func TestRenderLayers(t *testing.T) {
	sc, err := buildCube()
	if err != nil {
		t.Fatal(err)
	}
	w := sc.World
	cam := NewCamera()
	var pos []vmath.Vec3
	for _, p := range w.AllPoints() {
		pos = append(pos, p.Pos)
	}
	cam.Fit(pos)

	c := NewCanvas(40, 20)
	Render(c, cam, w, Layers{}, false)
	if c.Lit() != 0 {
		t.Error("no layers should draw nothing")
	}

	Render(c, cam, w, DefaultLayers(), false)
	if c.Lit() == 0 {
		t.Error("scene not drawn")
	}

	w.SelectRadius(cam.Target, 100)
	Render(c, cam, w, Layers{Points: true}, true)
	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.Grid[i][j] != brailleBase && c.Colors[i][j] != movingColor {
				t.Fatalf("cell %d,%d coloured %q", i, j, c.Colors[i][j])
			}
		}
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	if err := r.Encode(&bytes.Buffer{}); err == nil {
		t.Error("empty recording encoded")
	}
	c := NewCanvas(4, 2)
	c.Pen("#00ff00")
	c.DrawLine(0, 0, 7, 7)
	r.Capture(c)
	r.Capture(c)
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 2 || buf.Len() == 0 {
		t.Errorf("frames %d bytes %d", r.Len(), buf.Len())
	}
}

func TestStyles(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := hexColor(300, -1, 16); got != "#ff0010" {
		t.Errorf("hexColor = %q", got)
	}
	if r, g, b := parseHex("#7f0080"); r != 127 || g != 0 || b != 128 {
		t.Errorf("parseHex = %d %d %d", r, g, b)
	}
	if NextTheme(ThemeMinimal).Name != ThemeCyberpunk.Name {
		t.Error("theme cycle does not wrap")
	}
	if GetTheme("nope").Name != ThemeCyberpunk.Name {
		t.Error("unknown theme should fall back")
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelStepping(t *testing.T) {
	m, err := NewModel(buildCube, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.dt <= 0 {
		t.Fatalf("dt = %v", m.dt)
	}

	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if got := m.scene.World.Timestep(); got != 1 {
		t.Fatalf("timestep = %d", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)
	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if got := m.scene.World.Timestep(); got != 1 {
		t.Errorf("paused model stepped to %d", got)
	}

	next, _ = m.Update(runes("."))
	m = next.(Model)
	if got := m.scene.World.Timestep(); got != 2 {
		t.Errorf("single step reached %d", got)
	}

	if v := m.View(); !strings.Contains(v, "Tick") {
		t.Error("stats panel missing")
	}

	next, _ = m.Update(runes("r"))
	m = next.(Model)
	if got := m.scene.World.Timestep(); got != 0 {
		t.Errorf("reset timestep = %d", got)
	}
}

func TestModelEditing(t *testing.T) {
	m, err := NewModel(buildCube, 0)
	if err != nil {
		t.Fatal(err)
	}
	m.selRadius = 100
	next, _ := m.Update(runes("c"))
	m = next.(Model)
	w := m.scene.World
	if len(w.Selection()) != w.NumPoints() {
		t.Fatalf("selected %d of %d", len(w.Selection()), w.NumPoints())
	}

	next, _ = m.Update(runes("f"))
	m = next.(Model)
	for _, p := range w.AllPoints() {
		if !p.Fixed {
			t.Fatal("selection not fixed")
		}
	}

	before := w.AllPoints()[0].Pos
	next, _ = m.Update(runes("u"))
	m = next.(Model)
	after := w.AllPoints()[0].Pos
	if math.Abs(after[2]-before[2]-dragStep) > 1e-12 {
		t.Errorf("drag moved z by %v", after[2]-before[2])
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDelete})
	m = next.(Model)
	if m.scene.World.NumPoints() != 0 {
		t.Errorf("%d points survived delete", m.scene.World.NumPoints())
	}
}

func TestMenuStartsScene(t *testing.T) {
	mm := NewMenu(scenes.NewRegistry(), nil).(*menu)
	if mm.scenes[0] != "cube" {
		t.Fatalf("first scene = %s", mm.scenes[0])
	}
	mm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if mm.state != stateConfig {
		t.Fatalf("state = %d", mm.state)
	}
	g := mm.world.Gravity
	mm.Update(runes("l"))
	mm.Update(runes("s"))
	if mm.state != stateSim {
		t.Fatalf("state = %d, err %v", mm.state, mm.err)
	}
	if got := mm.live.scene.World.Config().Gravity; math.Abs(got-(g+0.05)) > 1e-12 {
		t.Errorf("gravity = %v, want %v", got, g+0.05)
	}
}
