package shapes

import (
	"math"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/vmath"
)

var (
	cubeCorners = [8]vmath.Vec3{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5},
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5},
	}
	cubeEdges = [12][2]int{
		{0, 1}, {0, 2}, {3, 1}, {3, 2},
		{4, 5}, {4, 6}, {7, 5}, {7, 6},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	cubeDiagonals = [4][2]int{{0, 7}, {1, 6}, {2, 5}, {3, 4}}
)

// Cube is an axis aligned box of eight points with edge and body diagonal
// springs.
func Cube(center vmath.Vec3, side, mass, k float64) (*body.Body, error) {
	if !(side > 0) {
		return nil, ErrRadius
	}
	pts := make([]*body.Point, len(cubeCorners))
	for i, c := range cubeCorners {
		p, err := body.NewPoint(center.Add(c.Mul(side)), mass)
		if err != nil {
			return nil, err
		}
		pts[i] = p
	}

	springs := make([]*body.Spring, 0, len(cubeEdges)+len(cubeDiagonals))
	for _, e := range cubeEdges {
		s, err := body.NewSpring(pts[e[0]], pts[e[1]], side, k)
		if err != nil {
			return nil, err
		}
		springs = append(springs, s)
	}
	for _, d := range cubeDiagonals {
		s, err := body.NewSpring(pts[d[0]], pts[d[1]], math.Sqrt(3)*side, k)
		if err != nil {
			return nil, err
		}
		springs = append(springs, s)
	}
	return body.New(pts, springs)
}
