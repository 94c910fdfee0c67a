package viz

import (
	"math"
	"slices"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/sim"
	"github.com/san-kum/softbody/internal/vmath"
)

const (
	selectedColor = "#aa1111"
	movingColor   = "#ffff00"
	gridColor     = "#3a3a3a"
	gridLines     = 10
	gridStep      = 1.0
)

var axisColors = [3]string{"#ff0000", "#00ff00", "#0000ff"}

// Layers toggles what Render draws.
type Layers struct {
	Points  bool
	Springs bool
	Grid    bool
	Axes    bool
}

func DefaultLayers() Layers {
	return Layers{Points: true, Springs: true, Grid: true, Axes: true}
}

type projected struct {
	p     *body.Point
	x, y  int
	depth float64
}

// Render draws w onto c through cam. The world is only read.
func Render(c *Canvas, cam *Camera, w *sim.World, layers Layers, moving bool) {
	c.Clear()
	sw, sh := c.SubWidth(), c.SubHeight()
	if layers.Grid {
		drawGrid(c, cam)
	}

	pts := w.AllPoints()
	proj := make([]projected, len(pts))
	screen := make(map[body.ID]int, len(pts))
	for i, p := range pts {
		x, y, d := cam.Project(p.Pos, sw, sh)
		proj[i] = projected{p: p, x: x, y: y, depth: d}
		screen[p.ID] = i
	}

	if layers.Springs {
		for _, s := range w.AllSprings() {
			a, okA := screen[s.A.ID]
			b, okB := screen[s.B.ID]
			if !okA || !okB {
				continue
			}
			c.Pen(string(s.Color))
			c.DrawLine(proj[a].x, proj[a].y, proj[b].x, proj[b].y)
		}
	}

	if layers.Points {
		order := proj
		if w.Config().SortForRender {
			order = slices.Clone(proj)
			slices.SortStableFunc(order, func(a, b projected) int {
				switch {
				case a.depth < b.depth:
					return -1
				case a.depth > b.depth:
					return 1
				}
				return 0
			})
		}
		scale := cam.Pixels(sw, sh)
		for _, pp := range order {
			col := string(pp.p.Color)
			fill := true
			if w.IsSelected(pp.p.ID) {
				fill = false
				col = selectedColor
				if moving {
					col = movingColor
				}
			}
			c.Pen(col)
			c.DrawCircle(pp.x, pp.y, int(math.Round(pp.p.Radius*scale)), fill)
		}
	}

	if layers.Axes {
		ox, oy, _ := cam.Project(vmath.Vec3{}, sw, sh)
		for i, col := range axisColors {
			var e vmath.Vec3
			e[i] = 1
			x, y, _ := cam.Project(e, sw, sh)
			c.Pen(col)
			c.DrawLine(ox, oy, x, y)
		}
	}
	c.Pen("")
}

// drawGrid draws the ground plane as a square lattice centred at the
// origin.
func drawGrid(c *Canvas, cam *Camera) {
	sw, sh := c.SubWidth(), c.SubHeight()
	half := gridLines * gridStep / 2
	c.Pen(gridColor)
	for i := 0; i <= gridLines; i++ {
		t := -half + float64(i)*gridStep
		x0, y0, _ := cam.Project(vmath.V(t, -half, 0), sw, sh)
		x1, y1, _ := cam.Project(vmath.V(t, half, 0), sw, sh)
		c.DrawLine(x0, y0, x1, y1)
		x0, y0, _ = cam.Project(vmath.V(-half, t, 0), sw, sh)
		x1, y1, _ = cam.Project(vmath.V(half, t, 0), sw, sh)
		c.DrawLine(x0, y0, x1, y1)
	}
}
