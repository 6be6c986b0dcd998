package transform

import (
	"math"

	"github.com/golang/geo/r2"
)

// collinearTolerance is relative to the product of the two edge lengths forming the triangle.
const collinearTolerance = 1e-9

// Quad is an ordered set of four points: top-left, top-right, bottom-right, bottom-left. When
// derived from a body the order is left shoulder, right shoulder, right hip, left hip.
type Quad [4]r2.Point

// RectQuad returns the corners of a w x h rectangle anchored at the origin.
func RectQuad(w, h float64) Quad {
	return Quad{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// Center is the mean of the four corners.
func (q Quad) Center() r2.Point {
	var sum r2.Point
	for _, p := range q {
		sum = sum.Add(p)
	}
	return sum.Mul(0.25)
}

// Apply maps every corner through h.
func (q Quad) Apply(h Homography) Quad {
	var out Quad
	for i, p := range q {
		out[i] = h.Apply(p)
	}
	return out
}

// Degenerate reports whether any three of the corners are collinear (including coincident
// corners) or any coordinate is not finite. No perspective transform exists for such a quad.
func (q Quad) Degenerate() bool {
	for _, p := range q {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return true
		}
	}
	for skip := 0; skip < 4; skip++ {
		var tri [3]r2.Point
		n := 0
		for i, p := range q {
			if i == skip {
				continue
			}
			tri[n] = p
			n++
		}
		ab := tri[1].Sub(tri[0])
		ac := tri[2].Sub(tri[0])
		scale := ab.Norm() * ac.Norm()
		if scale == 0 || math.Abs(ab.Cross(ac)) <= collinearTolerance*scale {
			return true
		}
	}
	return false
}
