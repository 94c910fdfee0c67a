package viz

import (
	"math"

	"github.com/san-kum/softbody/internal/vmath"
)

const minScale = 0.001

var (
	refForward = vmath.V(0, 0, -1)
	refRight   = vmath.V(1, 0, 0)
)

// Camera is an orthographic view orbiting Target. Alpha spins about the
// vertical axis, Beta tilts towards the ground plane. Scale is the share
// of the shorter screen side covered by one world unit.
type Camera struct {
	Target vmath.Vec3
	Alpha  float64
	Beta   float64
	Scale  float64

	rot  vmath.Quat
	irot vmath.Quat
}

func NewCamera() *Camera {
	c := &Camera{Alpha: math.Pi / 4, Beta: math.Pi / 3, Scale: 0.04}
	c.update()
	return c
}

func (c *Camera) update() {
	fwd := vmath.Rotation(refForward, -c.Alpha)
	right := vmath.Rotation(refRight, -c.Beta)
	c.rot = vmath.Compose(right, fwd)
	c.irot = vmath.Inverse(c.rot)
}

// Orbit changes both angles by the given deltas.
func (c *Camera) Orbit(dAlpha, dBeta float64) {
	c.Alpha += dAlpha
	c.Beta -= dBeta
	c.update()
}

// Zoom multiplies the scale by (1+s).
func (c *Camera) Zoom(s float64) {
	c.Scale *= 1 + s
	if c.Scale < minScale {
		c.Scale = minScale
	}
}

// Forward is the view direction in world space.
func (c *Camera) Forward() vmath.Vec3 { return vmath.Apply(c.irot, refForward) }

// Right is the screen x axis in world space.
func (c *Camera) Right() vmath.Vec3 { return vmath.Apply(c.irot, refRight) }

// Pan moves the target along the ground plane, forward then right.
func (c *Camera) Pan(forward, right float64) {
	pf := c.Forward()
	pf[2] = 0
	pr := c.Right()
	pr[2] = 0
	c.Target = c.Target.Add(vmath.Normalize(pf).Mul(forward)).Add(vmath.Normalize(pr).Mul(right))
}

// Pixels is the number of dots per world unit on a w x h dot raster.
func (c *Camera) Pixels(w, h int) float64 {
	return float64(min(w, h)) * c.Scale
}

// Project maps p to dot coordinates on a w x h raster. Larger depth is
// closer to the viewer.
func (c *Camera) Project(p vmath.Vec3, w, h int) (x, y int, depth float64) {
	v := vmath.Apply(c.rot, p.Sub(c.Target))
	s := c.Pixels(w, h)
	fx := float64(w)/2 + v[0]*s
	fy := float64(h)/2 - v[1]*s
	return int(math.Round(fx)), int(math.Round(fy)), v[2]
}

// Unproject returns the world point on the view plane through Target
// that lands on dot (x, y).
func (c *Camera) Unproject(x, y, w, h int) vmath.Vec3 {
	s := c.Pixels(w, h)
	v := vmath.V((float64(x)-float64(w)/2)/s, (float64(h)/2-float64(y))/s, 0)
	return vmath.Apply(c.irot, v).Add(c.Target)
}

// Fit centres the camera on pts and picks a scale that shows all of them.
func (c *Camera) Fit(pts []vmath.Vec3) {
	if len(pts) == 0 {
		return
	}
	c.Target = vmath.Centroid(pts)
	var r float64
	for _, p := range pts {
		r = max(r, vmath.Dist(p, c.Target))
	}
	if r > 0 {
		c.Scale = max(0.4/r, minScale)
	}
}
