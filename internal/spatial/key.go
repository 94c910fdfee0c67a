package spatial

import (
	"math"

	"github.com/san-kum/softbody/internal/vmath"
)

// Cell coordinates are packed 21 bits per axis. Coordinates beyond the
// representable range are clamped into the boundary cell, which then acts
// as an overflow bucket for everything further out.
const (
	axisBits   = 21
	axisOffset = 1 << (axisBits - 1)
	axisMask   = 1<<axisBits - 1
	minCoord   = -axisOffset
	maxCoord   = axisOffset - 1
)

// Key identifies one grid cell.
type Key int64

type Cell struct {
	X, Y, Z int
}

func clampCoord(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	if f <= minCoord {
		return minCoord
	}
	if f >= maxCoord {
		return maxCoord
	}
	return int(f)
}

// CellOf returns the clamped cell containing pos for the given inverse
// cell side.
func CellOf(pos vmath.Vec3, invSide float64) Cell {
	return Cell{
		X: clampCoord(math.Floor(pos[0] * invSide)),
		Y: clampCoord(math.Floor(pos[1] * invSide)),
		Z: clampCoord(math.Floor(pos[2] * invSide)),
	}
}

func inRange(c int) bool { return c >= minCoord && c <= maxCoord }

func (c Cell) Key() Key {
	x := int64(c.X+axisOffset) & axisMask
	y := int64(c.Y+axisOffset) & axisMask
	z := int64(c.Z+axisOffset) & axisMask
	return Key(x | y<<axisBits | z<<(2*axisBits))
}

// Cell decodes k back into cell coordinates.
func (k Key) Cell() Cell {
	v := int64(k)
	return Cell{
		X: int(v&axisMask) - axisOffset,
		Y: int((v>>axisBits)&axisMask) - axisOffset,
		Z: int((v>>(2*axisBits))&axisMask) - axisOffset,
	}
}

// moore calls fn for every in-range cell of the 3x3x3 block around c.
func (c Cell) moore(fn func(Key)) {
	for dz := -1; dz <= 1; dz++ {
		z := c.Z + dz
		if !inRange(z) {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			y := c.Y + dy
			if !inRange(y) {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				x := c.X + dx
				if !inRange(x) {
					continue
				}
				fn(Cell{x, y, z}.Key())
			}
		}
	}
}
