package vmath

import "github.com/go-gl/mathgl/mgl64"

type Quat = mgl64.Quat

func QuatIdent() Quat { return mgl64.QuatIdent() }

// Rotation builds the quaternion rotating by phi around axis. A degenerate
// axis yields the identity.
func Rotation(axis Vec3, phi float64) Quat {
	n := Normalize(axis)
	if n == (Vec3{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(phi, n)
}

// RotationBetween returns the rotation taking direction from onto
// direction to. Antiparallel inputs rotate by pi around any axis
// perpendicular to from.
func RotationBetween(from, to Vec3) Quat {
	a, b := Normalize(from), Normalize(to)
	if a == (Vec3{}) || b == (Vec3{}) {
		return mgl64.QuatIdent()
	}
	axis := a.Cross(b)
	angle := Acos(a.Dot(b))
	if axis.Len() < Epsilon {
		if a.Dot(b) > 0 {
			return mgl64.QuatIdent()
		}
		axis = a.Cross(XAxis)
		if axis.Len() < Epsilon {
			axis = a.Cross(YAxis)
		}
	}
	return Rotation(axis, angle)
}

func Apply(q Quat, v Vec3) Vec3 { return q.Rotate(v) }

func Compose(a, b Quat) Quat { return a.Mul(b) }

func Conjugate(q Quat) Quat { return q.Conjugate() }

func Inverse(q Quat) Quat { return q.Inverse() }

// Matrix returns the 4x4 column-major rotation matrix of q.
func Matrix(q Quat) mgl64.Mat4 { return q.Normalize().Mat4() }
