// Package vmath holds the 3D vector and rotation helpers shared by the
// simulation, the body builders and the terminal viewer.
//
// Vectors are value types ([mgl64.Vec3]), so arithmetic in the step loop
// stays on the stack.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 0.0001

type Vec3 = mgl64.Vec3

var (
	XAxis = Vec3{1, 0, 0}
	YAxis = Vec3{0, 1, 0}
	ZAxis = Vec3{0, 0, 1}
)

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func LenSq(v Vec3) float64 { return v.Dot(v) }

func Dist(a, b Vec3) float64 { return b.Sub(a).Len() }

func DistSq(a, b Vec3) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}

// Normalize returns the unit vector along v, or the zero vector when
// |v| < Epsilon.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// Lerp interpolates between a and b, t in [0,1].
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Acos clamps its argument into [-1,1] so rounding never yields NaN.
func Acos(x float64) float64 {
	return math.Acos(math.Max(-1, math.Min(1, x)))
}

// Angle returns the angle between a and b in radians.
func Angle(a, b Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la < Epsilon || lb < Epsilon {
		return 0
	}
	return Acos(a.Dot(b) / (la * lb))
}

// RotateAxisAngle rotates v around the unit axis k by phi radians
// (Rodrigues' formula).
func RotateAxisAngle(v, k Vec3, phi float64) Vec3 {
	c, s := math.Cos(phi), math.Sin(phi)
	return v.Mul(c).
		Add(k.Cross(v).Mul(s)).
		Add(k.Mul(k.Dot(v) * (1 - c)))
}

// Centroid returns the mean of pts, zero for an empty slice.
func Centroid(pts []Vec3) Vec3 {
	var sum Vec3
	if len(pts) == 0 {
		return sum
	}
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(pts)))
}

func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
